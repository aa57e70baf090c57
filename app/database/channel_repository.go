package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tgpulse/tgpulse/app/query"
)

var _ ChannelRepository = (*ChannelRepositoryImpl)(nil)

// ChannelRepositoryImpl handles database operations for channels
type ChannelRepositoryImpl struct {
	db *DB
}

func NewChannelRepository(db *DB) *ChannelRepositoryImpl {
	return &ChannelRepositoryImpl{db: db}
}

const channelColumns = `id, handle, name, avatar_url, subscribers, description,
	       is_active, parse_mode, last_parsed_at, created_at, updated_at`

func (r *ChannelRepositoryImpl) scanChannel(row interface{ Scan(...any) error }) (*Channel, error) {
	var channel Channel
	err := row.Scan(
		&channel.ID, &channel.Handle, &channel.Name, &channel.AvatarURL,
		&channel.Subscribers, &channel.Description, &channel.IsActive,
		&channel.ParseMode, &channel.LastParsedAt,
		&channel.CreatedAt, &channel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepositoryImpl) GetChannel(id int64) (*Channel, error) {
	channel, err := r.scanChannel(r.db.QueryRow(`
		SELECT `+channelColumns+`
		FROM channels
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return channel, nil
}

func (r *ChannelRepositoryImpl) GetChannelByHandle(handle string) (*Channel, error) {
	channel, err := r.scanChannel(r.db.QueryRow(`
		SELECT `+channelColumns+`
		FROM channels
		WHERE handle = ?
	`, handle))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel by handle: %w", err)
	}

	return channel, nil
}

// ListChannels returns channels matching the plan's conditions, in the
// plan's order.
func (r *ChannelRepositoryImpl) ListChannels(plan query.Plan) ([]Channel, error) {
	sqlText := `SELECT ` + channelColumns + ` FROM channels` + plan.WhereSQL()
	if plan.OrderBy != "" {
		sqlText += " ORDER BY " + plan.OrderBy
	}

	rows, err := r.db.Query(sqlText, plan.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		channel, err := r.scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, *channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *ChannelRepositoryImpl) GetChannelCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM channels").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get channel count: %w", err)
	}
	return count, nil
}

// UpsertChannel inserts a channel or updates an existing one keyed by
// handle, and returns the database id.
func (r *ChannelRepositoryImpl) UpsertChannel(channel Channel) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO channels (handle, name, avatar_url, subscribers, description, is_active, parse_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (handle) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			subscribers = excluded.subscribers,
			description = excluded.description,
			parse_mode = excluded.parse_mode,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, channel.Handle, channel.Name, channel.AvatarURL, channel.Subscribers,
		channel.Description, channel.IsActive, channel.ParseMode).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert channel: %w", err)
	}

	return id, nil
}

// UpdateChannelMetadata refreshes the fields that come from the channel's
// remote profile.
func (r *ChannelRepositoryImpl) UpdateChannelMetadata(handle string, name string, avatarURL *string, subscribers int, description *string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET name = ?, avatar_url = ?, subscribers = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE handle = ?
	`, name, avatarURL, subscribers, description, handle)

	if err != nil {
		return fmt.Errorf("failed to update channel metadata: %w", err)
	}

	return nil
}

func (r *ChannelRepositoryImpl) SetChannelActive(id int64, active bool) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, active, id)

	if err != nil {
		return fmt.Errorf("failed to set channel active status: %w", err)
	}

	return nil
}

func (r *ChannelRepositoryImpl) SetParseMode(id int64, parseMode string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET parse_mode = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, parseMode, id)

	if err != nil {
		return fmt.Errorf("failed to set parse mode: %w", err)
	}

	return nil
}

func (r *ChannelRepositoryImpl) UpdateLastParsedAt(id int64, parsedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET last_parsed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, parsedAt, id)

	if err != nil {
		return fmt.Errorf("failed to update last parsed time: %w", err)
	}

	return nil
}

// DeleteChannel removes a channel; its posts go with it via cascade.
func (r *ChannelRepositoryImpl) DeleteChannel(id int64) error {
	_, err := r.db.Exec("DELETE FROM channels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}
