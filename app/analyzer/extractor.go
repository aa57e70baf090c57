package analyzer

import (
	_ "embed"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"']+`)
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
var videoExtensions = []string{".mp4", ".avi", ".mov", ".webm"}

//go:embed categories.yml
var categoriesYAML []byte

type topicCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

var topicCategories []topicCategory

func init() {
	var parsed struct {
		Categories []topicCategory `yaml:"categories"`
	}
	if err := yaml.Unmarshal(categoriesYAML, &parsed); err != nil {
		panic(fmt.Sprintf("failed to parse embedded category config: %v", err))
	}
	topicCategories = parsed.Categories
}

// ExtractHashtags returns the deduplicated set of #tags found in text,
// sorted for determinism. Empty text yields nil.
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	return dedupSorted(hashtagPattern.FindAllString(text, -1))
}

// ExtractMentions returns the deduplicated set of @mentions found in text.
func ExtractMentions(text string) []string {
	if text == "" {
		return nil
	}
	return dedupSorted(mentionPattern.FindAllString(text, -1))
}

// ExtractLinks returns the deduplicated set of URLs in text. Candidates
// missing a scheme or a host are rejected.
func ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}

	var valid []string
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		parsed, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		valid = append(valid, candidate)
	}

	return dedupSorted(valid)
}

// EngagementRate is likes/views rounded to 6 decimal digits, or nil when
// views is zero. Out-of-range values are a validator concern, not clamped
// here.
func EngagementRate(views, likes int) *float64 {
	if views == 0 {
		return nil
	}
	rate := math.Round(float64(likes)/float64(views)*1e6) / 1e6
	return &rate
}

// EstimateReadingTime estimates reading time in seconds at the given
// words-per-minute speed. Words are whitespace-delimited runs.
func EstimateReadingTime(text string, wordsPerMinute int) int {
	if text == "" || wordsPerMinute <= 0 {
		return 0
	}
	wordCount := len(strings.Fields(text))
	return int(math.Round(float64(wordCount) / float64(wordsPerMinute) * 60))
}

// RefineContentType refines the base content type reported by the source.
// Rules are checked in fixed order and the first match wins:
//  1. "mixed" stays "mixed"
//  2. media present: both image-like and video-like refs -> "mixed";
//     more than one image and no video -> "photo_gallery"; any video -> "video"
//  3. text contains an extractable link -> "link"
//  4. base "text" with no text -> "media_only"
//  5. base type unchanged
//
// A single image with no video deliberately falls through to the later
// rules (gallery threshold is two).
func RefineContentType(baseType, text string, mediaURLs []string) string {
	if baseType == ContentTypeMixed {
		return ContentTypeMixed
	}

	if len(mediaURLs) > 0 {
		imageCount := 0
		videoCount := 0
		for _, mediaURL := range mediaURLs {
			lowered := strings.ToLower(mediaURL)
			if containsAny(lowered, imageExtensions) {
				imageCount++
			}
			if containsAny(lowered, videoExtensions) {
				videoCount++
			}
		}

		if imageCount > 0 && videoCount > 0 {
			return ContentTypeMixed
		}
		if imageCount > 1 {
			return ContentTypePhotoGallery
		}
		if videoCount > 0 {
			return ContentTypeVideo
		}
	}

	if text != "" && len(ExtractLinks(text)) > 0 {
		return ContentTypeLink
	}

	if baseType == ContentTypeText && text == "" {
		return ContentTypeMediaOnly
	}

	return baseType
}

// CategorizeTopic assigns a topic category by keyword lookup. Categories
// are tried in their configured order; the first one with any matching
// keyword wins. No match yields nil.
func CategorizeTopic(text string) *string {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	for _, category := range topicCategories {
		if containsAny(lowered, category.Keywords) {
			name := category.Name
			return &name
		}
	}

	return nil
}

// Analysis is the enrichment produced from a single post's text and
// counters.
type Analysis struct {
	Hashtags       []string
	Mentions       []string
	Links          []string
	EngagementRate *float64
	ReadingTime    int
	ContentType    string
	Category       *string
	Keywords       []string
}

type Extractor struct {
	tagger KeywordTagger
}

func NewExtractor(tagger KeywordTagger) *Extractor {
	if tagger == nil {
		tagger = UnavailableTagger{}
	}
	return &Extractor{tagger: tagger}
}

// Run applies every extraction to one post. It is pure and safe to call
// concurrently across posts.
func (e *Extractor) Run(text string, views, likes int, baseType string, mediaURLs []string) Analysis {
	analysis := Analysis{
		Hashtags:       ExtractHashtags(text),
		Mentions:       ExtractMentions(text),
		Links:          ExtractLinks(text),
		EngagementRate: EngagementRate(views, likes),
		ReadingTime:    EstimateReadingTime(text, DefaultWordsPerMinute),
		ContentType:    RefineContentType(baseType, text, mediaURLs),
		Category:       CategorizeTopic(text),
	}

	if e.tagger.Available() {
		analysis.Keywords = e.tagger.Tag(text, DefaultMaxKeywords)
	}

	return analysis
}

func dedupSorted(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}
	sort.Strings(unique)
	return unique
}

func containsAny(text string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
