//go:build !cgo
// +build !cgo

package crisis

import (
	"context"
	"errors"
)

// ONNXClassifier stub type when built without CGO (see onnx.go for real implementation).
type ONNXClassifier struct{}

// NewONNXClassifier returns an error when built without CGO (ONNX not available).
func NewONNXClassifier(_ string, _ int) (*ONNXClassifier, error) {
	return nil, errors.New("ONNX classifier requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// ClassifyNegativity is unreachable on the stub.
func (c *ONNXClassifier) ClassifyNegativity(_ context.Context, _ string) (float64, error) {
	return 0, errors.New("ONNX classifier not available")
}

// Close is a no-op on the stub.
func (c *ONNXClassifier) Close() error {
	return nil
}
