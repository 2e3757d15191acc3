package crisis

import (
	"context"
	"errors"
	"testing"
)

var testKeywords = []string{"ölmek", "intihar", "canıma", "dayanamıyorum", "bıktım", "hap", "kesmek"}
var testSeverity = []string{"intihar", "ölmek"}

func newTestGate(c Classifier) *Gate {
	return NewGate(testKeywords, testSeverity, 0.70, c)
}

func TestEvaluate_noKeywordSkipsClassifier(t *testing.T) {
	mock := &MockClassifier{Score: 0.99}
	g := newTestGate(mock)

	d := g.Evaluate(context.Background(), "Bugün hava çok güzel")
	if d.IsCrisis {
		t.Error("benign message flagged as crisis")
	}
	if d.Score != 0 {
		t.Errorf("expected score 0 without classification, got %v", d.Score)
	}
	if mock.Calls() != 0 {
		t.Errorf("classifier invoked %d times for keyword-free message", mock.Calls())
	}
}

func TestEvaluate_thresholdIsStrict(t *testing.T) {
	cases := []struct {
		score float64
		want  bool
	}{
		{0.69, false},
		{0.70, false}, // exactly at threshold stays closed
		{0.71, true},
	}
	for _, c := range cases {
		mock := &MockClassifier{Score: c.score}
		g := newTestGate(mock)
		d := g.Evaluate(context.Background(), "Her şeyden bıktım artık")
		if d.IsCrisis != c.want {
			t.Errorf("score %v: IsCrisis = %v, want %v", c.score, d.IsCrisis, c.want)
		}
		if d.Score != c.score {
			t.Errorf("score %v not propagated, got %v", c.score, d.Score)
		}
		if mock.Calls() != 1 {
			t.Errorf("score %v: classifier calls = %d", c.score, mock.Calls())
		}
	}
}

func TestEvaluate_severityOverridesLowScore(t *testing.T) {
	mock := &MockClassifier{Score: 0.05}
	g := newTestGate(mock)

	d := g.Evaluate(context.Background(), "İntihar etmeyi düşünüyorum")
	if !d.IsCrisis {
		t.Error("severity term must force a crisis verdict")
	}
	if d.Score != 0.05 {
		t.Errorf("classifier score should still be reported, got %v", d.Score)
	}
}

func TestEvaluate_caseInsensitive(t *testing.T) {
	g := newTestGate(&MockClassifier{Score: 0.95})
	d := g.Evaluate(context.Background(), "ÖLMEK istiyorum")
	if !d.IsCrisis {
		t.Error("uppercase keyword must still match")
	}
}

func TestEvaluate_classifierErrorFallsBackToSeverity(t *testing.T) {
	failing := &MockClassifier{Err: errors.New("model not loaded")}

	g := newTestGate(failing)
	d := g.Evaluate(context.Background(), "Artık dayanamıyorum")
	if d.IsCrisis {
		t.Error("classifier failure without severity term should stay non-crisis")
	}

	d = g.Evaluate(context.Background(), "İntihar etmek istiyorum")
	if !d.IsCrisis {
		t.Error("severity override must survive classifier failure")
	}
}

func TestEvaluate_keywordInsideLongerWord(t *testing.T) {
	g := newTestGate(&MockClassifier{Score: 0.95})
	// Substring semantics: "hap" matches inside other words too.
	d := g.Evaluate(context.Background(), "çok fazla hap aldım")
	if !d.IsCrisis {
		t.Error("expected crisis for keyword hit with high score")
	}
}
