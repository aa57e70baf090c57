package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// KeywordTagger is an optional capability: a backend that extracts ranked
// keywords from text. When no backend is available the pipeline degrades
// to an empty keyword set, never an error.
type KeywordTagger interface {
	Available() bool
	Tag(text string, max int) []string
}

// UnavailableTagger is the degraded fallback used when no tagger is
// configured.
type UnavailableTagger struct{}

func (UnavailableTagger) Available() bool { return false }

func (UnavailableTagger) Tag(string, int) []string { return nil }

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Shared English and Russian stop-words, enough to keep counters and
// function words out of the ranking.
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "her", "his", "how", "in", "is", "it", "its", "of",
	"on", "or", "our", "she", "that", "the", "their", "they", "this", "to",
	"was", "we", "were", "what", "when", "where", "which", "who", "will",
	"with", "you", "your",
	"без", "был", "была", "были", "было", "быть", "в", "вас", "все", "всех",
	"вы", "да", "для", "до", "его", "ее", "если", "есть", "еще", "же", "за",
	"и", "из", "или", "их", "к", "как", "кто", "мы", "на", "не", "него",
	"нет", "них", "но", "о", "об", "он", "она", "они", "от", "по", "под",
	"при", "с", "со", "так", "также", "там", "то", "только", "у", "уже",
	"что", "чтобы", "это", "этот", "я",
}

// FrequencyTagger ranks stop-word-filtered tokens by frequency. It is the
// default deterministic backend; a smarter NLP-based tagger can replace it
// behind the same interface.
type FrequencyTagger struct {
	stopwords map[string]struct{}
}

func NewFrequencyTagger() *FrequencyTagger {
	stopwords := make(map[string]struct{}, len(defaultStopwords))
	for _, word := range defaultStopwords {
		stopwords[word] = struct{}{}
	}
	return &FrequencyTagger{stopwords: stopwords}
}

func (t *FrequencyTagger) Available() bool { return true }

// Tag returns up to max keywords ranked by frequency descending, ties
// broken alphabetically so the result is deterministic.
func (t *FrequencyTagger) Tag(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, token := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(token)) < 3 {
			continue
		}
		if _, ok := t.stopwords[token]; ok {
			continue
		}
		counts[token]++
	}

	if len(counts) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(counts))
	for keyword := range counts {
		keywords = append(keywords, keyword)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}
