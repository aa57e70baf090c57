package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/database"
	"github.com/tgpulse/tgpulse/app/telegram"
)

type ParseChannelTask struct {
	Task
	Channel       database.Channel
	client        telegram.Client
	assembler     *analyzer.Assembler
	channelRepo   database.ChannelRepository
	postRepo      database.PostRepository
	postsPerParse int
}

func NewParseChannelTask(channel database.Channel, client telegram.Client, assembler *analyzer.Assembler,
	channelRepo database.ChannelRepository, postRepo database.PostRepository, postsPerParse int) *ParseChannelTask {
	return &ParseChannelTask{
		Task:          NewTask(TaskTypeParseChannel, channel.Handle),
		Channel:       channel,
		client:        client,
		assembler:     assembler,
		channelRepo:   channelRepo,
		postRepo:      postRepo,
		postsPerParse: postsPerParse,
	}
}

func (t *ParseChannelTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Channel.IsActive {
		slog.Debug("Channel inactive, skipping", "channel", t.ChannelHandle)
		return nil
	}

	info, err := t.client.GetChannelInfo(ctx, t.Channel.Handle)
	if err != nil {
		if permanent(err) {
			slog.Error("Channel unreachable, skipping", "channel", t.ChannelHandle, "error", err)
			return nil
		}
		return fmt.Errorf("failed to get channel info: %w", err)
	}

	err = t.channelRepo.UpdateChannelMetadata(t.Channel.Handle, info.Title, info.AvatarURL, info.Subscribers, info.Description)
	if err != nil {
		return fmt.Errorf("failed to update channel metadata: %w", err)
	}

	opts := telegram.FetchOptions{Limit: t.postsPerParse}
	if t.Channel.ParseMode == analyzer.ParseModeNewOnly && t.Channel.LastParsedAt != nil {
		opts.After = t.Channel.LastParsedAt
	}

	rawPosts, err := t.client.FetchPosts(ctx, t.Channel.Handle, opts)
	if err != nil {
		if permanent(err) {
			slog.Error("Channel history unreachable, skipping", "channel", t.ChannelHandle, "error", err)
			return nil
		}
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	accepted, rejections := t.assembler.RunBatch(rawPosts, t.Channel.ID)

	for _, post := range accepted {
		if err := t.postRepo.UpsertPost(post); err != nil {
			return fmt.Errorf("failed to store post: %w", err)
		}
	}

	for _, rejection := range rejections {
		slog.Warn("Post rejected", "channel", t.ChannelHandle, "post_id", rejection.PostID, "reason", rejection.Reason)
	}

	if err := t.channelRepo.UpdateLastParsedAt(t.Channel.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last parsed time: %w", err)
	}

	slog.Info("Task completed",
		"type", "ParseChannel",
		"channel", t.ChannelHandle,
		"duration", t.GetDuration(),
		"fetched", len(rawPosts),
		"stored", len(accepted),
		"rejected", len(rejections))

	return nil
}

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, telegram.ErrChannelNotFound) || errors.Is(err, telegram.ErrChannelPrivate)
}
