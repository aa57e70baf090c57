package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/cfg"
)

var _ Client = (*MTProtoClient)(nil)

const (
	historyBatchSize     = 100
	maxDescriptionLength = 500
)

// MTProtoClient talks to Telegram through the MTProto API with a
// file-backed session. Each operation runs its own client lifecycle.
type MTProtoClient struct {
	apiID       int
	apiHash     string
	sessionFile string
}

func NewMTProtoClient() *MTProtoClient {
	c := cfg.Get()
	return &MTProtoClient{
		apiID:       c.TelegramAPIID,
		apiHash:     c.TelegramAPIHash,
		sessionFile: c.SessionFile,
	}
}

func (c *MTProtoClient) run(ctx context.Context, fn func(ctx context.Context, api *tg.Client) error) error {
	client := telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{Path: c.sessionFile},
	})

	return client.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, tg.NewClient(client))
	})
}

func (c *MTProtoClient) GetChannelInfo(ctx context.Context, handle string) (*ChannelInfo, error) {
	handle = NormalizeHandle(handle)

	var info *ChannelInfo
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		channel, err := resolveChannel(ctx, api, handle)
		if err != nil {
			return err
		}

		full, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		})
		if err != nil {
			return translateError(err)
		}

		info = &ChannelInfo{
			Handle:      handle,
			Title:       channel.Title,
			Subscribers: channel.ParticipantsCount,
		}

		if fullChat, ok := full.GetFullChat().(*tg.ChannelFull); ok {
			info.Subscribers = fullChat.ParticipantsCount
			info.Description = normalizeDescription(fullChat.About)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// FetchPosts pages through the channel history from newest to oldest.
// Flood waits are absorbed in place so already collected posts are never
// discarded.
func (c *MTProtoClient) FetchPosts(ctx context.Context, handle string, opts FetchOptions) ([]analyzer.RawPost, error) {
	handle = NormalizeHandle(handle)

	var posts []analyzer.RawPost
	err := c.run(ctx, func(ctx context.Context, api *tg.Client) error {
		channel, err := resolveChannel(ctx, api, handle)
		if err != nil {
			return err
		}

		peer := &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
		offsetID := 0

	paging:
		for opts.Limit <= 0 || len(posts) < opts.Limit {
			batch := historyBatchSize
			if opts.Limit > 0 && opts.Limit-len(posts) < batch {
				batch = opts.Limit - len(posts)
			}

			messages, err := getHistory(ctx, api, peer, offsetID, batch)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				break
			}

			for _, msg := range messages {
				date := time.Unix(int64(msg.Date), 0).UTC()
				if opts.After != nil && !date.After(*opts.After) {
					break paging
				}
				posts = append(posts, buildRawPost(msg, handle))
				if opts.Limit > 0 && len(posts) >= opts.Limit {
					break paging
				}
				offsetID = msg.ID
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func getHistory(ctx context.Context, api *tg.Client, peer *tg.InputPeerChannel, offsetID, limit int) ([]*tg.Message, error) {
	var history tg.MessagesMessagesClass

	for {
		var err error
		history, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			Limit:    limit,
		})
		if err == nil {
			break
		}

		if wait, ok := tgerr.AsFloodWait(err); ok {
			slog.Warn("Flood wait during history fetch", "channel_id", peer.ChannelID, "wait", wait.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait + time.Second):
				continue
			}
		}

		return nil, translateError(err)
	}

	channelMessages, ok := history.(*tg.MessagesChannelMessages)
	if !ok {
		return nil, fmt.Errorf("unexpected messages type %T", history)
	}

	var messages []*tg.Message
	for _, msg := range channelMessages.Messages {
		if m, ok := msg.(*tg.Message); ok {
			messages = append(messages, m)
		}
	}

	return messages, nil
}

func resolveChannel(ctx context.Context, api *tg.Client, handle string) (*tg.Channel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: handle})
	if err != nil {
		return nil, translateError(err)
	}

	for _, chat := range resolved.GetChats() {
		if channel, ok := chat.(*tg.Channel); ok && channel.Broadcast {
			return channel, nil
		}
	}

	return nil, ErrChannelNotFound
}

// buildRawPost converts an MTProto message into the analyzer's input
// shape. Reaction counts are aggregated into a single likes counter;
// media messages carry their t.me reference, and a photo with text is a
// mixed post.
func buildRawPost(msg *tg.Message, handle string) analyzer.RawPost {
	raw := analyzer.RawPost{
		PostID: strconv.Itoa(msg.ID),
		Date:   analyzer.TimestampOf(time.Unix(int64(msg.Date), 0).UTC()),
		Text:   msg.Message,
	}

	if author, ok := msg.GetPostAuthor(); ok && author != "" {
		raw.Author = author
	}
	if views, ok := msg.GetViews(); ok {
		raw.Views = &views
	}
	if reactions, ok := msg.GetReactions(); ok {
		likes := 0
		for _, result := range reactions.Results {
			likes += result.Count
		}
		raw.Likes = &likes
	}

	raw.ContentType = classifyMedia(msg.Media)

	switch raw.ContentType {
	case analyzer.ContentTypePhoto, analyzer.ContentTypeVideo, analyzer.ContentTypeDocument:
		raw.MediaURLs = []string{fmt.Sprintf("https://t.me/%s/%d", handle, msg.ID)}
	}
	if raw.ContentType == analyzer.ContentTypePhoto && raw.Text != "" {
		raw.ContentType = analyzer.ContentTypeMixed
	}

	return raw
}

func classifyMedia(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return analyzer.ContentTypePhoto
	case *tg.MessageMediaDocument:
		if doc, ok := m.Document.(*tg.Document); ok {
			for _, attr := range doc.Attributes {
				if _, ok := attr.(*tg.DocumentAttributeVideo); ok {
					return analyzer.ContentTypeVideo
				}
			}
		}
		return analyzer.ContentTypeDocument
	case *tg.MessageMediaWebPage:
		return analyzer.ContentTypeLink
	case *tg.MessageMediaPoll:
		return analyzer.ContentTypePoll
	}
	return analyzer.ContentTypeText
}

// normalizeDescription bounds and cleans the channel's about text before
// it reaches storage; an empty description stays absent.
func normalizeDescription(about string) *string {
	return analyzer.NormalizeText(about, maxDescriptionLength)
}

// translateError maps MTProto error codes to the package's sentinel
// errors so callers can branch without knowing RPC details.
func translateError(err error) error {
	switch {
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED"), tgerr.Is(err, "USERNAME_INVALID"):
		return ErrChannelNotFound
	case tgerr.Is(err, "CHANNEL_PRIVATE"), tgerr.Is(err, "CHANNEL_INVALID"):
		return ErrChannelPrivate
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &FloodWaitError{Duration: wait}
	}

	return err
}
