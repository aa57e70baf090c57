package api

import (
	"time"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/database"
	"github.com/tgpulse/tgpulse/app/tasks"
	"github.com/tgpulse/tgpulse/app/telegram"
)

type Handler struct {
	channelRepo   database.ChannelRepository
	postRepo      database.PostRepository
	client        telegram.Client
	scheduler     tasks.TaskSchedulerInterface
	assembler     *analyzer.Assembler
	postsPerParse int
	maxExportRows int
}

// PostResponse is the wire shape of a post. Absent optional fields
// serialize as null.
type PostResponse struct {
	ID             int64     `json:"id"`
	PostID         string    `json:"post_id"`
	ChannelID      int64     `json:"channel_id"`
	Text           *string   `json:"text"`
	Date           time.Time `json:"date"`
	Author         *string   `json:"author"`
	Views          int       `json:"views"`
	Likes          int       `json:"likes"`
	EngagementRate *float64  `json:"engagement_rate"`
	ReadingTime    int       `json:"reading_time"`
	ContentType    string    `json:"content_type"`
	Category       *string   `json:"category"`
	MediaURLs      []string  `json:"media_urls"`
	Hashtags       []string  `json:"hashtags"`
	Mentions       []string  `json:"mentions"`
	Links          []string  `json:"links"`
	Keywords       []string  `json:"keywords"`
	ParsedAt       time.Time `json:"parsed_at"`
}

type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type ChannelResponse struct {
	ID           int64      `json:"id"`
	Handle       string     `json:"handle"`
	Name         string     `json:"name"`
	AvatarURL    *string    `json:"avatar_url"`
	Subscribers  int        `json:"subscribers"`
	Description  *string    `json:"description"`
	IsActive     bool       `json:"is_active"`
	ParseMode    string     `json:"parse_mode"`
	LastParsedAt *time.Time `json:"last_parsed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateChannelRequest struct {
	Handle    string `json:"handle" binding:"required"`
	ParseMode string `json:"parse_mode"`
}

type UpdateChannelRequest struct {
	IsActive  *bool   `json:"is_active"`
	ParseMode *string `json:"parse_mode"`
}

func toPostResponse(post database.Post) PostResponse {
	return PostResponse{
		ID:             post.ID,
		PostID:         post.PostID,
		ChannelID:      post.ChannelID,
		Text:           post.Text,
		Date:           post.Date,
		Author:         post.Author,
		Views:          post.Views,
		Likes:          post.Likes,
		EngagementRate: post.EngagementRate,
		ReadingTime:    post.ReadingTime,
		ContentType:    post.ContentType,
		Category:       post.Category,
		MediaURLs:      post.MediaURLs,
		Hashtags:       post.Hashtags,
		Mentions:       post.Mentions,
		Links:          post.Links,
		Keywords:       post.Keywords,
		ParsedAt:       post.ParsedAt,
	}
}

func toChannelResponse(channel database.Channel) ChannelResponse {
	return ChannelResponse{
		ID:           channel.ID,
		Handle:       channel.Handle,
		Name:         channel.Name,
		AvatarURL:    channel.AvatarURL,
		Subscribers:  channel.Subscribers,
		Description:  channel.Description,
		IsActive:     channel.IsActive,
		ParseMode:    channel.ParseMode,
		LastParsedAt: channel.LastParsedAt,
		CreatedAt:    channel.CreatedAt,
		UpdatedAt:    channel.UpdatedAt,
	}
}
