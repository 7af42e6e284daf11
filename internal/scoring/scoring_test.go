package scoring

import (
	"testing"

	"copydesk/internal/core"
)

func TestScoreBankruptcyAssetAuction(t *testing.T) {
	sig := core.KeywordSignal{
		Keyword:              "bankruptcy asset auction",
		SearchVolume:         500,
		KeywordDifficulty:    30,
		SERPFeatures:         []string{"people_also_ask", "featured_snippet", "images"},
		RelatedQuestionCount: 6,
	}

	score, b := Score(sig, 8, core.VolumeMeasured)

	if b.SearchVolume != 27 {
		t.Errorf("volume sub-score = %d, want 27", b.SearchVolume)
	}
	if b.KeywordDifficulty != 14 {
		t.Errorf("difficulty sub-score = %d, want 14", b.KeywordDifficulty)
	}
	if b.SERPFeatures != 15 {
		t.Errorf("serp sub-score = %d, want 15", b.SERPFeatures)
	}
	if b.RelatedQuestions != 12 {
		t.Errorf("questions sub-score = %d, want 12", b.RelatedQuestions)
	}
	if b.KeywordQuality != 10 {
		t.Errorf("shape sub-score = %d, want 10", b.KeywordQuality)
	}
	if b.RelevanceBonus != 8 {
		t.Errorf("relevance bonus = %d, want 8", b.RelevanceBonus)
	}
	if score != 86 {
		t.Errorf("total = %d, want 86", score)
	}
}

func TestScoreWithinBounds(t *testing.T) {
	signals := []core.KeywordSignal{
		{},
		{Keyword: "x", SearchVolume: -5, KeywordDifficulty: -1, RelatedQuestionCount: -3},
		{
			Keyword:              "huge keyword with very many words in it indeed",
			SearchVolume:         10_000_000,
			KeywordDifficulty:    0,
			SERPFeatures:         []string{"a", "b", "c", "d", "e", "f", "g"},
			RelatedQuestionCount: 500,
		},
	}
	for _, sig := range signals {
		for _, src := range []core.VolumeSource{core.VolumeMeasured, core.VolumeEstimated, core.VolumeNone} {
			score, b := Score(sig, 10, src)
			if score < 0 || score > 100 {
				t.Errorf("score %d out of range for %+v (%s)", score, sig, src)
			}
			if b.SearchVolume > 30 || b.KeywordDifficulty > 20 || b.SERPFeatures > 20 ||
				b.RelatedQuestions > 20 || b.KeywordQuality > 10 || b.RelevanceBonus > 10 {
				t.Errorf("sub-score over cap: %+v", b)
			}
		}
	}
}

func TestEstimatedVolumeDiscount(t *testing.T) {
	sig := core.KeywordSignal{Keyword: "debt settlement companies", SearchVolume: 50_000}

	_, measured := Score(sig, 0, core.VolumeMeasured)
	_, estimated := Score(sig, 0, core.VolumeEstimated)

	if measured.SearchVolume != 30 {
		t.Errorf("measured volume sub-score = %d, want 30", measured.SearchVolume)
	}
	if estimated.SearchVolume != 18 {
		t.Errorf("estimated volume sub-score = %d, want cap of 18", estimated.SearchVolume)
	}
}

func TestZeroDifficultyDependsOnSource(t *testing.T) {
	sig := core.KeywordSignal{Keyword: "liquidation sale process", KeywordDifficulty: 0}

	_, measured := Score(sig, 0, core.VolumeMeasured)
	if measured.KeywordDifficulty != 20 {
		t.Errorf("measured zero difficulty = %d, want full credit 20", measured.KeywordDifficulty)
	}

	_, estimated := Score(sig, 0, core.VolumeEstimated)
	if estimated.KeywordDifficulty != 10 {
		t.Errorf("estimated zero difficulty = %d, want half credit 10", estimated.KeywordDifficulty)
	}
}

func TestSingleWordShapeNeverFullCredit(t *testing.T) {
	sig := core.KeywordSignal{Keyword: "bankruptcy", SearchVolume: 100_000}
	_, b := Score(sig, 10, core.VolumeMeasured)
	if b.KeywordQuality != 5 {
		t.Errorf("1-word shape sub-score = %d, want 5", b.KeywordQuality)
	}

	sig.Keyword = "how to buy foreclosed homes before auction starts tomorrow"
	_, b = Score(sig, 10, core.VolumeMeasured)
	if b.KeywordQuality != 5 {
		t.Errorf("overlong shape sub-score = %d, want 5", b.KeywordQuality)
	}
}

func TestTotalCappedAt100(t *testing.T) {
	sig := core.KeywordSignal{
		Keyword:              "chapter 7 bankruptcy filing",
		SearchVolume:         5_000_000,
		KeywordDifficulty:    1,
		SERPFeatures:         []string{"a", "b", "c", "d", "e"},
		RelatedQuestionCount: 100,
	}
	score, b := Score(sig, 10, core.VolumeMeasured)
	if b.Sum() <= 100 {
		t.Fatalf("test signal should overflow the cap, sum = %d", b.Sum())
	}
	if score != 100 {
		t.Errorf("score = %d, want capped 100", score)
	}
}
