package crisis

import "testing"

func TestSimpleTokenizer_shape(t *testing.T) {
	tok := &SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tok.Tokenize("kendimi çok kötü hissediyorum", 16)
	if len(inputIDs) != 16 || len(attentionMask) != 16 || len(tokenTypeIDs) != 16 {
		t.Fatalf("expected length 16, got %d/%d/%d", len(inputIDs), len(attentionMask), len(tokenTypeIDs))
	}
	if inputIDs[0] != 101 {
		t.Errorf("expected [CLS] at position 0, got %d", inputIDs[0])
	}
	// 4 words then [SEP].
	if inputIDs[5] != 102 {
		t.Errorf("expected [SEP] at position 5, got %d", inputIDs[5])
	}
	if attentionMask[5] != 1 || attentionMask[6] != 0 {
		t.Error("attention mask should cover CLS..SEP only")
	}
}

func TestSimpleTokenizer_truncation(t *testing.T) {
	tok := &SimpleTokenizer{}
	long := ""
	for i := 0; i < 100; i++ {
		long += "kelime "
	}
	inputIDs, attentionMask, _ := tok.Tokenize(long, 8)
	if len(inputIDs) != 8 {
		t.Fatalf("expected 8 tokens, got %d", len(inputIDs))
	}
	for i, m := range attentionMask[:7] {
		if m != 1 {
			t.Errorf("position %d unmasked in full window", i)
		}
	}
}

func TestSimpleTokenizer_deterministic(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("aynı metin aynı kimlikler", 8)
	b, _, _ := tok.Tokenize("aynı metin aynı kimlikler", 8)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("tokenization must be deterministic")
		}
	}
}
