package chat

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/destek-ai/destek/internal/crisis"
	"github.com/destek-ai/destek/internal/llm"
	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/retrieve"
	"github.com/destek-ai/destek/internal/vector"
)

type fixedEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *fixedEmbedder) Dimensions() int { return len(e.vec) }
func (e *fixedEmbedder) Close() error    { return nil }

type staticSource struct {
	retriever *retrieve.Retriever
	err       error
}

func (s *staticSource) Retriever() (*retrieve.Retriever, error) {
	return s.retriever, s.err
}

func testRetriever(t *testing.T) *retrieve.Retriever {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bdt.json")
	chunks := []models.Chunk{
		{Text: "otomatik düşünceleri sorgulamak", Source: "bdt.pdf", ChunkID: "bdt_0"},
		{Text: "davranış deneyleri kurmak", Source: "bdt.pdf", ChunkID: "bdt_1"},
	}
	data, _ := json.Marshal(chunks)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	index, _ := vector.NewFlatIndex(3)
	if err := index.Add([][]float32{{1, 0, 0}, {0, 1, 0}}); err != nil {
		t.Fatal(err)
	}
	store, err := vector.NewStore(index, vector.ChunkMap{path, path})
	if err != nil {
		t.Fatal(err)
	}
	return retrieve.New(store)
}

func testGate(score float64) (*crisis.Gate, *crisis.MockClassifier) {
	mock := &crisis.MockClassifier{Score: score}
	gate := crisis.NewGate(
		[]string{"ölmek", "intihar", "dayanamıyorum"},
		[]string{"intihar", "ölmek"},
		0.70, mock)
	return gate, mock
}

func TestRespond_crisisShortCircuits(t *testing.T) {
	gate, _ := testGate(0.99)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	gen := &llm.MockGenerator{Reply: "normal cevap"}
	r := NewResponder(gate, embedder, &staticSource{retriever: testRetriever(t)}, gen, 3)

	resp, err := r.Respond(context.Background(), models.ChatRequest{Query: "İntihar etmeyi düşünüyorum"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsCrisis {
		t.Error("expected crisis response")
	}
	if resp.Reply != EmergencyMessage {
		t.Errorf("crisis must return the fixed emergency message, got %q", resp.Reply)
	}
	if gen.CallCount != 0 {
		t.Error("generation must not run on crisis")
	}
	if embedder.calls != 0 {
		t.Error("retrieval must not run on crisis")
	}
}

func TestRespond_normalFlow(t *testing.T) {
	gate, _ := testGate(0.1)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	gen := &llm.MockGenerator{Reply: "Bunu biraz açar mısın?"}
	r := NewResponder(gate, embedder, &staticSource{retriever: testRetriever(t)}, gen, 2)

	profile := &models.Profile{Name: "Ayşe", Age: 28}
	history := []models.Message{{Role: models.RoleUser, Content: "merhaba"}}
	resp, err := r.Respond(context.Background(), models.ChatRequest{
		Query:   "Sürekli kaygılıyım",
		History: history,
		Profile: profile,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsCrisis {
		t.Error("benign query flagged as crisis")
	}
	if resp.Reply != "Bunu biraz açar mısın?" {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "bdt.pdf" {
		t.Errorf("sources should be deduplicated, got %v", resp.Sources)
	}
	if !strings.Contains(gen.LastSystemPrompt, "otomatik düşünceleri sorgulamak") {
		t.Error("system prompt missing retrieved context")
	}
	if !strings.Contains(gen.LastSystemPrompt, "Ayşe") {
		t.Error("system prompt missing profile")
	}
	if gen.LastUserMessage != "Sürekli kaygılıyım" {
		t.Errorf("user message not forwarded: %q", gen.LastUserMessage)
	}
	if len(gen.LastHistory) != 1 {
		t.Errorf("history not forwarded: %v", gen.LastHistory)
	}
}

func TestRespond_generationFailureDegrades(t *testing.T) {
	gate, _ := testGate(0.1)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	gen := &llm.MockGenerator{Err: errors.New("ollama down")}
	r := NewResponder(gate, embedder, &staticSource{retriever: testRetriever(t)}, gen, 2)

	resp, err := r.Respond(context.Background(), models.ChatRequest{Query: "Uyuyamıyorum"})
	if err != nil {
		t.Fatalf("generation failure must degrade, not error: %v", err)
	}
	if resp.Reply != degradedReply {
		t.Errorf("expected degraded reply, got %q", resp.Reply)
	}
	if len(resp.Sources) == 0 {
		t.Error("sources from successful retrieval should survive generation failure")
	}
}

func TestRespond_embeddingFailureAnswersWithoutContext(t *testing.T) {
	gate, _ := testGate(0.1)
	embedder := &fixedEmbedder{err: errors.New("embedder down")}
	gen := &llm.MockGenerator{Reply: "tamam"}
	r := NewResponder(gate, embedder, &staticSource{retriever: testRetriever(t)}, gen, 2)

	resp, err := r.Respond(context.Background(), models.ChatRequest{Query: "Kendimi yalnız hissediyorum"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Reply != "tamam" {
		t.Errorf("generation should still run, got %q", resp.Reply)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("no sources without retrieval, got %v", resp.Sources)
	}
	if strings.Contains(gen.LastSystemPrompt, "otomatik düşünceleri") {
		t.Error("context block should be empty when embedding fails")
	}
}

func TestRespond_retrieverUnavailable(t *testing.T) {
	gate, _ := testGate(0.1)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	gen := &llm.MockGenerator{Reply: "x"}
	r := NewResponder(gate, embedder, &staticSource{err: errors.New("store not loaded")}, gen, 2)

	if _, err := r.Respond(context.Background(), models.ChatRequest{Query: "Merhaba nasılsın"}); err == nil {
		t.Error("expected error when the vector store has not loaded")
	}
}

func TestRespond_crisisRunsEvenWhenStoreUnavailable(t *testing.T) {
	gate, _ := testGate(0.99)
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	gen := &llm.MockGenerator{Reply: "x"}
	r := NewResponder(gate, embedder, &staticSource{err: errors.New("store not loaded")}, gen, 2)

	resp, err := r.Respond(context.Background(), models.ChatRequest{Query: "Artık ölmek istiyorum"})
	if err != nil {
		t.Fatalf("crisis path must not depend on the vector store: %v", err)
	}
	if !resp.IsCrisis || resp.Reply != EmergencyMessage {
		t.Errorf("expected emergency response, got %+v", resp)
	}
}
