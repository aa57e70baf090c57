package analyzer

import (
	"time"

	"github.com/tgpulse/tgpulse/app/database"
)

const maxAuthorLength = 255

// Assembler composes normalization, extraction and validation into the
// per-post pipeline producing a persistence-ready record or a structured
// rejection.
type Assembler struct {
	extractor *Extractor
}

func NewAssembler(extractor *Extractor) *Assembler {
	return &Assembler{extractor: extractor}
}

// Run processes one raw post. Presence of the identifying raw fields is
// checked before normalization: the normalizer is total and would
// otherwise mask an absent timestamp with the current instant.
func (a *Assembler) Run(raw RawPost, channelID int64) (*database.Post, *Rejection) {
	if raw.PostID == "" {
		return nil, &Rejection{PostID: raw.PostID, Reason: "missing required field: post_id"}
	}
	if raw.Date.IsAbsent() {
		return nil, &Rejection{PostID: raw.PostID, Reason: "missing required field: date"}
	}

	text := NormalizeText(raw.Text, 0)
	textValue := ""
	if text != nil {
		textValue = *text
	}

	views := 0
	if raw.Views != nil {
		views = *raw.Views
	}
	likes := 0
	if raw.Likes != nil {
		likes = *raw.Likes
	}

	baseType := raw.ContentType
	if baseType == "" {
		baseType = ContentTypeText
	}

	analysis := a.extractor.Run(textValue, views, likes, baseType, raw.MediaURLs)

	post := &database.Post{
		PostID:         raw.PostID,
		ChannelID:      channelID,
		Text:           text,
		Date:           NormalizeTimestamp(raw.Date),
		Author:         NormalizeText(raw.Author, maxAuthorLength),
		Views:          views,
		Likes:          likes,
		EngagementRate: analysis.EngagementRate,
		ReadingTime:    analysis.ReadingTime,
		ContentType:    analysis.ContentType,
		Category:       analysis.Category,
		MediaURLs:      raw.MediaURLs,
		Hashtags:       analysis.Hashtags,
		Mentions:       analysis.Mentions,
		Links:          analysis.Links,
		Keywords:       analysis.Keywords,
		ParsedAt:       time.Now().UTC(),
	}

	if err := ValidatePost(post); err != nil {
		return nil, &Rejection{PostID: raw.PostID, Reason: err.Error()}
	}

	return post, nil
}

// RunBatch processes raw posts one by one: order-preserving for accepted
// records, rejections accumulated separately. One bad post never aborts
// the batch.
func (a *Assembler) RunBatch(raws []RawPost, channelID int64) ([]database.Post, []Rejection) {
	accepted := make([]database.Post, 0, len(raws))
	var rejections []Rejection

	for _, raw := range raws {
		post, rejection := a.Run(raw, channelID)
		if rejection != nil {
			rejections = append(rejections, *rejection)
			continue
		}
		accepted = append(accepted, *post)
	}

	return accepted, rejections
}
