package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/tgpulse/tgpulse/app/database"
)

func validPost() *database.Post {
	return &database.Post{
		PostID:      "12345",
		ChannelID:   1,
		Date:        time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		ContentType: "text",
		Views:       100,
		Likes:       10,
	}
}

func TestValidatePost_Valid(t *testing.T) {
	if err := ValidatePost(validPost()); err != nil {
		t.Errorf("Expected valid post, got: %v", err)
	}
}

func TestValidatePost_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*database.Post)
		reason string
	}{
		{"missing post_id", func(p *database.Post) { p.PostID = "" }, "post_id"},
		{"missing channel_id", func(p *database.Post) { p.ChannelID = 0 }, "channel_id"},
		{"missing date", func(p *database.Post) { p.Date = time.Time{} }, "date"},
		{"missing content_type", func(p *database.Post) { p.ContentType = "" }, "content_type"},
	}

	for _, tt := range tests {
		post := validPost()
		tt.mutate(post)
		err := ValidatePost(post)
		if err == nil {
			t.Errorf("%s: expected rejection", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.reason) {
			t.Errorf("%s: expected reason mentioning %q, got %q", tt.name, tt.reason, err.Error())
		}
	}
}

func TestValidatePost_ContentTypeEnumeration(t *testing.T) {
	post := validPost()
	post.ContentType = "hologram"

	err := ValidatePost(post)
	if err == nil {
		t.Fatal("Expected rejection for unlisted content type")
	}
	if !strings.Contains(err.Error(), "content_type") {
		t.Errorf("Unexpected reason: %v", err)
	}

	// Refined values are members of the closed enumeration
	for _, ct := range []string{"photo_gallery", "media_only", "mixed", "poll"} {
		post := validPost()
		post.ContentType = ct
		if err := ValidatePost(post); err != nil {
			t.Errorf("Content type %q should be valid: %v", ct, err)
		}
	}
}

func TestValidatePost_NegativeCounters(t *testing.T) {
	post := validPost()
	post.Views = -1
	if err := ValidatePost(post); err == nil {
		t.Error("Expected rejection for negative views")
	}

	post = validPost()
	post.Likes = -5
	if err := ValidatePost(post); err == nil {
		t.Error("Expected rejection for negative likes")
	}
}

func TestValidatePost_EngagementRateRange(t *testing.T) {
	for _, rate := range []float64{-0.1, 1.5} {
		post := validPost()
		r := rate
		post.EngagementRate = &r
		if err := ValidatePost(post); err == nil {
			t.Errorf("Expected rejection for engagement rate %f", rate)
		}
	}

	for _, rate := range []float64{0, 0.5, 1} {
		post := validPost()
		r := rate
		post.EngagementRate = &r
		if err := ValidatePost(post); err != nil {
			t.Errorf("Engagement rate %f should be valid: %v", rate, err)
		}
	}
}

func TestValidatePost_FirstViolationWins(t *testing.T) {
	post := validPost()
	post.PostID = ""
	post.ContentType = "hologram"
	post.Views = -1

	err := ValidatePost(post)
	if err == nil {
		t.Fatal("Expected rejection")
	}
	// Required-field check comes before the enum and range checks
	if !strings.Contains(err.Error(), "post_id") {
		t.Errorf("Expected the first violated rule to win, got: %v", err)
	}
}

func TestValidateChannel(t *testing.T) {
	channel := &database.Channel{
		Handle:      "technews",
		Name:        "Tech News",
		ParseMode:   "new_only",
		Subscribers: 1000,
	}
	if err := ValidateChannel(channel); err != nil {
		t.Errorf("Expected valid channel, got: %v", err)
	}

	channel.Handle = ""
	if err := ValidateChannel(channel); err == nil {
		t.Error("Expected rejection for missing handle")
	}

	channel.Handle = "technews"
	channel.ParseMode = "sometimes"
	if err := ValidateChannel(channel); err == nil {
		t.Error("Expected rejection for invalid parse mode")
	}

	channel.ParseMode = "full_history"
	channel.Subscribers = -1
	if err := ValidateChannel(channel); err == nil {
		t.Error("Expected rejection for negative subscriber count")
	}
}
