package database

import (
	"time"
)

type Channel struct {
	ID           int64
	Handle       string // Telegram username without @
	Name         string
	AvatarURL    *string
	Subscribers  int
	Description  *string
	IsActive     bool
	ParseMode    string // "new_only" or "full_history"
	LastParsedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Post struct {
	ID        int64
	PostID    string // Telegram message ID, unique within a channel
	ChannelID int64

	// Content
	Text   *string
	Date   time.Time
	Author *string

	// Metrics
	Views          int
	Likes          int
	EngagementRate *float64
	ReadingTime    int // seconds

	// Classification
	ContentType string
	Category    *string

	// Extracted data, stored as JSON arrays
	MediaURLs []string
	Hashtags  []string
	Mentions  []string
	Links     []string
	Keywords  []string

	// Metadata
	ParsedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QueryResult is one page of posts together with the total match count
// computed before pagination.
type QueryResult struct {
	Posts      []Post
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
