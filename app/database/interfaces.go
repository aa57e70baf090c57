package database

import (
	"time"

	"github.com/tgpulse/tgpulse/app/query"
)

type ChannelRepository interface {
	GetChannel(id int64) (*Channel, error)
	GetChannelByHandle(handle string) (*Channel, error)
	ListChannels(plan query.Plan) ([]Channel, error)
	GetChannelCount() (int, error)

	UpsertChannel(channel Channel) (int64, error)
	UpdateChannelMetadata(handle string, name string, avatarURL *string, subscribers int, description *string) error
	SetChannelActive(id int64, active bool) error
	SetParseMode(id int64, parseMode string) error
	UpdateLastParsedAt(id int64, parsedAt time.Time) error
	DeleteChannel(id int64) error
}

type PostRepository interface {
	GetPost(id int64) (*Post, error)
	GetFilteredPosts(plan query.Plan) (*QueryResult, error)
	GetPostCount(channelID int64) (int, error)

	UpsertPost(post Post) error
}
