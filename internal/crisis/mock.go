package crisis

import (
	"context"
	"sync/atomic"
)

// MockClassifier returns a fixed score and counts invocations. For tests.
type MockClassifier struct {
	Score float64
	Err   error
	calls atomic.Int64
}

// ClassifyNegativity returns the fixed score or error.
func (m *MockClassifier) ClassifyNegativity(ctx context.Context, text string) (float64, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Score, nil
}

// Calls returns how many times the classifier was invoked.
func (m *MockClassifier) Calls() int64 {
	return m.calls.Load()
}

// Close is a no-op.
func (m *MockClassifier) Close() error {
	return nil
}
