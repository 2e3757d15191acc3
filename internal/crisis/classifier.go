// Package crisis implements the two-stage crisis gate: a keyword pre-filter
// followed by a sentiment classifier with a severity override.
package crisis

import "context"

// Classifier scores how negative a message is, in [0, 1]. Higher means more
// negative. Implementations must be safe for concurrent use.
type Classifier interface {
	ClassifyNegativity(ctx context.Context, text string) (float64, error)
	Close() error
}

// UnavailableClassifier stands in when no classifier could be loaded. Every
// call fails with the load error, which the gate turns into its documented
// severity-terms-only fallback.
type UnavailableClassifier struct {
	Reason error
}

// ClassifyNegativity always fails with the load error.
func (u UnavailableClassifier) ClassifyNegativity(ctx context.Context, text string) (float64, error) {
	return 0, u.Reason
}

// Close is a no-op.
func (u UnavailableClassifier) Close() error {
	return nil
}
