package analyzer

// Content classification is a closed enumeration: refinement never
// produces a value outside this set.
const (
	ContentTypeText         = "text"
	ContentTypePhoto        = "photo"
	ContentTypeVideo        = "video"
	ContentTypeDocument     = "document"
	ContentTypeLink         = "link"
	ContentTypePoll         = "poll"
	ContentTypeMixed        = "mixed"
	ContentTypePhotoGallery = "photo_gallery"
	ContentTypeMediaOnly    = "media_only"
)

const (
	ParseModeNewOnly     = "new_only"
	ParseModeFullHistory = "full_history"
)

const (
	DefaultWordsPerMinute = 200
	DefaultMaxKeywords    = 10
)

// RawPost is the ephemeral input of the pipeline: one post as reported by
// the source, consumed exactly once.
type RawPost struct {
	PostID      string
	Date        TimestampInput
	Text        string
	Author      string
	ContentType string // base type from the source client
	MediaURLs   []string
	Views       *int
	Likes       *int
}

// Rejection identifies a post that failed validation and why.
type Rejection struct {
	PostID string `json:"post_id"`
	Reason string `json:"reason"`
}
