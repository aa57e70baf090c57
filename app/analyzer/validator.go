package analyzer

import (
	"fmt"

	"github.com/tgpulse/tgpulse/app/database"
)

var validContentTypes = map[string]struct{}{
	ContentTypeText:         {},
	ContentTypePhoto:        {},
	ContentTypeVideo:        {},
	ContentTypeDocument:     {},
	ContentTypeLink:         {},
	ContentTypePoll:         {},
	ContentTypeMixed:        {},
	ContentTypePhotoGallery: {},
	ContentTypeMediaOnly:    {},
}

var validParseModes = map[string]struct{}{
	ParseModeNewOnly:     {},
	ParseModeFullHistory: {},
}

// ValidatePost gates a shaped post record before persistence. Rules are
// checked in order and the first violation wins. List-valued fields need
// no type check here: the schema guarantees them.
func ValidatePost(post *database.Post) error {
	if post.PostID == "" {
		return fmt.Errorf("missing required field: post_id")
	}
	if post.ChannelID == 0 {
		return fmt.Errorf("missing required field: channel_id")
	}
	if post.Date.IsZero() {
		return fmt.Errorf("missing required field: date")
	}
	if post.ContentType == "" {
		return fmt.Errorf("missing required field: content_type")
	}

	if _, ok := validContentTypes[post.ContentType]; !ok {
		return fmt.Errorf("invalid content_type: %s", post.ContentType)
	}

	if post.Views < 0 {
		return fmt.Errorf("invalid views: must be non-negative integer")
	}
	if post.Likes < 0 {
		return fmt.Errorf("invalid likes: must be non-negative integer")
	}

	if post.EngagementRate != nil {
		rate := *post.EngagementRate
		if rate < 0 || rate > 1 {
			return fmt.Errorf("invalid engagement_rate: must be between 0 and 1")
		}
	}

	return nil
}

// ValidateChannel gates a channel record before persistence.
func ValidateChannel(channel *database.Channel) error {
	if channel.Handle == "" {
		return fmt.Errorf("missing required field: handle")
	}
	if channel.Name == "" {
		return fmt.Errorf("missing required field: name")
	}

	if channel.ParseMode != "" {
		if _, ok := validParseModes[channel.ParseMode]; !ok {
			return fmt.Errorf("invalid parse_mode: %s", channel.ParseMode)
		}
	}

	if channel.Subscribers < 0 {
		return fmt.Errorf("invalid subscribers_count: must be non-negative integer")
	}

	return nil
}
