//go:build cgo
// +build cgo

package crisis

import (
	"context"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier runs a local BERT-style sentiment model via ONNX Runtime.
// The model takes (input_ids, attention_mask, token_type_ids) and produces two
// logits: [positive, negative]. Requires CGO and the onnxruntime shared library.
type ONNXClassifier struct {
	session   *ort.AdvancedSession
	maxTokens int
	tokenizer Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	logitsTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXClassifier creates a classifier session for the model at modelPath.
// InitializeEnvironment is called if not already done.
func NewONNXClassifier(modelPath string, maxTokens int) (*ONNXClassifier, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 128
	}

	tokenizer := &SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.Tokenize("", maxTokens)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	logitsTensor, err := ort.NewTensor(ort.NewShape(1, 2), make([]float32, 2))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create logits tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{logitsTensor},
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		logitsTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:             session,
		maxTokens:           maxTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		logitsTensor:        logitsTensor,
	}, nil
}

// ClassifyNegativity returns softmax probability of the negative class.
func (c *ONNXClassifier) ClassifyNegativity(ctx context.Context, text string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inputIDs, attentionMask, tokenTypeIDs := c.tokenizer.Tokenize(text, c.maxTokens)
	copy(c.inputIDsTensor.GetData(), inputIDs)
	copy(c.attentionMaskTensor.GetData(), attentionMask)
	copy(c.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := c.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}

	logits := c.logitsTensor.GetData()
	return softmaxNegative(float64(logits[0]), float64(logits[1])), nil
}

// Close destroys the session and tensors.
func (c *ONNXClassifier) Close() error {
	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.inputIDsTensor != nil {
		_ = c.inputIDsTensor.Destroy()
		c.inputIDsTensor = nil
	}
	if c.attentionMaskTensor != nil {
		_ = c.attentionMaskTensor.Destroy()
		c.attentionMaskTensor = nil
	}
	if c.tokenTypeIDsTensor != nil {
		_ = c.tokenTypeIDsTensor.Destroy()
		c.tokenTypeIDsTensor = nil
	}
	if c.logitsTensor != nil {
		_ = c.logitsTensor.Destroy()
		c.logitsTensor = nil
	}
	return err
}

// softmaxNegative computes softmax over (positive, negative) logits and
// returns the negative-class probability. Shifted by the max for stability.
func softmaxNegative(positive, negative float64) float64 {
	m := math.Max(positive, negative)
	ep := math.Exp(positive - m)
	en := math.Exp(negative - m)
	return en / (ep + en)
}
