package crisis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/models"
)

// Gate decides whether a message signals an acute crisis. Stage one is a
// cheap keyword pre-filter; only messages containing a keyword reach the
// classifier. A severity term forces a crisis verdict regardless of the
// classifier score, so a model outage can never mute the most explicit
// messages.
type Gate struct {
	keywords      []string
	severityTerms []string
	threshold     float64
	classifier    Classifier
	logger        *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate builds a gate. Keywords and severity terms are matched as lowercase
// substrings of the lowercased message.
func NewGate(keywords, severityTerms []string, threshold float64, classifier Classifier, opts ...Option) *Gate {
	g := &Gate{
		keywords:      lowerAll(keywords),
		severityTerms: lowerAll(severityTerms),
		threshold:     threshold,
		classifier:    classifier,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs the two-stage check on message. Messages with no keyword are
// non-crisis without touching the classifier. Keyword hits are crisis when
// the classifier score strictly exceeds the threshold, or unconditionally
// when a severity term is present.
func (g *Gate) Evaluate(ctx context.Context, message string) models.CrisisDecision {
	lowered := strings.ToLower(message)

	if !containsAny(lowered, g.keywords) {
		return models.CrisisDecision{IsCrisis: false, Score: 0}
	}

	severe := containsAny(lowered, g.severityTerms)

	score, err := g.classifier.ClassifyNegativity(ctx, message)
	if err != nil {
		// A failed classifier narrows the gate to severity terms only.
		// That risks missing crises, so make it loud.
		g.logger.Error("crisis classifier unavailable, falling back to severity terms only",
			zap.Error(err),
			zap.Bool("severity_match", severe))
		return models.CrisisDecision{IsCrisis: severe, Score: 0}
	}

	return models.CrisisDecision{
		IsCrisis: score > g.threshold || severe,
		Score:    score,
	}
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = strings.ToLower(term)
	}
	return out
}
