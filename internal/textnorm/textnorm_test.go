package textnorm

import (
	"math"
	"testing"
)

func set(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func TestNormalizeBasic(t *testing.T) {
	got := Normalize("Investing in Distressed Debt: A Beginner's Guide!", GeneralStopwords(), 3)

	for _, want := range []string{"investing", "distressed", "debt", "beginner", "guide"} {
		if _, ok := got[want]; !ok {
			t.Errorf("expected %q in normalized set, got %v", want, got)
		}
	}
	if _, ok := got["in"]; ok {
		t.Error("stop word 'in' should have been removed")
	}
	if _, ok := got["a"]; ok {
		t.Error("short token 'a' should have been removed")
	}
}

func TestNormalizeSplitsHyphens(t *testing.T) {
	got := Normalize("chapter-11 debtor-in-possession financing", GeneralStopwords(), 3)
	for _, want := range []string{"chapter", "debtor", "possession", "financing"} {
		if _, ok := got[want]; !ok {
			t.Errorf("expected %q after hyphen split, got %v", want, got)
		}
	}
}

func TestNormalizeMinLength(t *testing.T) {
	got := Normalize("ai ml llm data", Stopwords{}, 3)
	if _, ok := got["ai"]; ok {
		t.Error("2-char token should be dropped at minLength 3")
	}
	if _, ok := got["llm"]; !ok {
		t.Error("3-char token should be kept at minLength 3")
	}
}

func TestOverlapStopwordsSupersetOfGeneral(t *testing.T) {
	overlap := OverlapStopwords()
	for w := range GeneralStopwords() {
		if !overlap[w] {
			t.Errorf("overlap list missing general stop word %q", w)
		}
	}
	if !overlap["guide"] {
		t.Error("overlap list should drop domain-saturated word 'guide'")
	}
	if GeneralStopwords()["guide"] {
		t.Error("general list must not drop 'guide'; the lists are deliberately separate")
	}
}

func TestJaccardIdentity(t *testing.T) {
	a := set("bankruptcy", "asset", "auction")
	if got := Jaccard(a, a); got != 1.0 {
		t.Errorf("Jaccard(A,A) = %v, want 1.0", got)
	}
}

func TestJaccardEmpty(t *testing.T) {
	a := set("bankruptcy")
	if got := Jaccard(a, nil); got != 0 {
		t.Errorf("Jaccard(A,∅) = %v, want 0", got)
	}
	if got := Jaccard(nil, nil); got != 0 {
		t.Errorf("Jaccard(∅,∅) = %v, want 0", got)
	}
}

func TestJaccardPartial(t *testing.T) {
	a := set("distressed", "debt", "investing")
	b := set("distressed", "debt", "funds")
	want := 2.0 / 4.0
	if got := Jaccard(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("Jaccard = %v, want %v", got, want)
	}
}

func TestIsSubset(t *testing.T) {
	small := set("chapter", "restructuring")
	big := set("chapter", "restructuring", "process")
	if !IsSubset(small, big) {
		t.Error("expected subset")
	}
	if IsSubset(big, small) {
		t.Error("superset is not a subset")
	}
	if !IsSubset(nil, small) {
		t.Error("empty set is a subset of anything")
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("bankruptcy asset auction"); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount("  liquidation  "); got != 1 {
		t.Errorf("WordCount = %d, want 1", got)
	}
}
