package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgpulse/tgpulse/app/analyzer"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrChannelPrivate  = errors.New("channel is private")
)

// FloodWaitError reports a rate limit imposed by Telegram; the caller is
// expected to wait the given duration before retrying.
type FloodWaitError struct {
	Duration time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: retry after %s", e.Duration)
}

// ChannelInfo is the public profile of a channel.
type ChannelInfo struct {
	Handle      string
	Title       string
	Description *string
	Subscribers int
	AvatarURL   *string
}

// FetchOptions narrows a history fetch. Limit caps the number of posts;
// After, when set, stops the fetch at the first post at or before that
// instant.
type FetchOptions struct {
	Limit int
	After *time.Time
}

type Client interface {
	GetChannelInfo(ctx context.Context, handle string) (*ChannelInfo, error)
	FetchPosts(ctx context.Context, handle string, opts FetchOptions) ([]analyzer.RawPost, error)
}

// NormalizeHandle reduces the accepted channel spellings (t.me links,
// @-prefixed, bare) to the bare lowercase username.
func NormalizeHandle(raw string) string {
	handle := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/", "@"} {
		handle = strings.TrimPrefix(handle, prefix)
	}
	handle = strings.TrimSuffix(handle, "/")
	return strings.ToLower(handle)
}
