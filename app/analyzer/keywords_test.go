package analyzer

import (
	"testing"
)

func TestUnavailableTagger(t *testing.T) {
	tagger := UnavailableTagger{}

	if tagger.Available() {
		t.Error("UnavailableTagger must report unavailable")
	}
	if tagger.Tag("some text", 10) != nil {
		t.Error("UnavailableTagger must return nil, never fail")
	}
}

func TestFrequencyTagger_RanksByFrequency(t *testing.T) {
	tagger := NewFrequencyTagger()

	result := tagger.Tag("compiler compiler runtime runtime runtime linker", 10)

	if len(result) != 3 {
		t.Fatalf("Expected 3 keywords, got %d: %v", len(result), result)
	}
	if result[0] != "runtime" {
		t.Errorf("Expected 'runtime' first, got %v", result)
	}
	if result[1] != "compiler" {
		t.Errorf("Expected 'compiler' second, got %v", result)
	}
}

func TestFrequencyTagger_FiltersStopwordsAndShortTokens(t *testing.T) {
	tagger := NewFrequencyTagger()

	result := tagger.Tag("the and for это что из db go", 10)

	if len(result) != 0 {
		t.Errorf("Stop-words and short tokens should be filtered, got %v", result)
	}
}

func TestFrequencyTagger_MaxLimit(t *testing.T) {
	tagger := NewFrequencyTagger()

	result := tagger.Tag("alpha beta gamma delta epsilon", 3)

	if len(result) != 3 {
		t.Errorf("Expected at most 3 keywords, got %d: %v", len(result), result)
	}
}

func TestFrequencyTagger_EmptyText(t *testing.T) {
	tagger := NewFrequencyTagger()

	if tagger.Tag("", 10) != nil {
		t.Error("Empty text should yield no keywords")
	}
}
