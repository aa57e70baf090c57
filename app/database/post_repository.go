package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tgpulse/tgpulse/app/query"
)

var _ PostRepository = (*PostRepositoryImpl)(nil)

// PostRepositoryImpl handles database operations for posts
type PostRepositoryImpl struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

const postColumns = `posts.id, posts.post_id, posts.channel_id, posts.text, posts.date, posts.author,
	       posts.views, posts.likes, posts.engagement_rate, posts.reading_time,
	       posts.content_type, posts.category,
	       posts.media_urls, posts.hashtags, posts.mentions, posts.links, posts.keywords,
	       posts.parsed_at, posts.created_at, posts.updated_at`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var post Post
	var mediaURLs, hashtags, mentions, links, keywords sql.NullString

	err := row.Scan(
		&post.ID, &post.PostID, &post.ChannelID, &post.Text, &post.Date, &post.Author,
		&post.Views, &post.Likes, &post.EngagementRate, &post.ReadingTime,
		&post.ContentType, &post.Category,
		&mediaURLs, &hashtags, &mentions, &links, &keywords,
		&post.ParsedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.MediaURLs = decodeList(mediaURLs)
	post.Hashtags = decodeList(hashtags)
	post.Mentions = decodeList(mentions)
	post.Links = decodeList(links)
	post.Keywords = decodeList(keywords)

	return &post, nil
}

func (r *PostRepositoryImpl) GetPost(id int64) (*Post, error) {
	post, err := scanPost(r.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts
		WHERE posts.id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// GetFilteredPosts executes the plan: the total is counted with the
// plan's conditions before the page window is applied, so pagination
// never distorts the match count.
func (r *PostRepositoryImpl) GetFilteredPosts(plan query.Plan) (*QueryResult, error) {
	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts"+plan.WhereSQL(), plan.Args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	sqlText := `SELECT ` + postColumns + ` FROM posts` + plan.WhereSQL()
	if plan.OrderBy != "" {
		sqlText += " ORDER BY " + plan.OrderBy
	}
	sqlText += " LIMIT ? OFFSET ?"
	args := append(append([]any{}, plan.Args...), plan.Limit, plan.Offset)

	rows, err := r.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get filtered posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return &QueryResult{
		Posts:      posts,
		Total:      total,
		Page:       plan.Page,
		PageSize:   plan.PageSize,
		TotalPages: query.TotalPages(total, plan.PageSize),
	}, nil
}

func (r *PostRepositoryImpl) GetPostCount(channelID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts WHERE channel_id = ?", channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

// UpsertPost stores an analyzed post, updating content and metrics when
// the same message is seen again.
func (r *PostRepositoryImpl) UpsertPost(post Post) error {
	_, err := r.db.Exec(`
		INSERT INTO posts (
			post_id, channel_id, text, date, author,
			views, likes, engagement_rate, reading_time,
			content_type, category,
			media_urls, hashtags, mentions, links, keywords,
			parsed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (post_id, channel_id) DO UPDATE SET
			text = excluded.text,
			author = excluded.author,
			views = excluded.views,
			likes = excluded.likes,
			engagement_rate = excluded.engagement_rate,
			reading_time = excluded.reading_time,
			content_type = excluded.content_type,
			category = excluded.category,
			media_urls = excluded.media_urls,
			hashtags = excluded.hashtags,
			mentions = excluded.mentions,
			links = excluded.links,
			keywords = excluded.keywords,
			parsed_at = excluded.parsed_at,
			updated_at = CURRENT_TIMESTAMP
	`, post.PostID, post.ChannelID, post.Text, post.Date, post.Author,
		post.Views, post.Likes, post.EngagementRate, post.ReadingTime,
		post.ContentType, post.Category,
		encodeList(post.MediaURLs), encodeList(post.Hashtags), encodeList(post.Mentions),
		encodeList(post.Links), encodeList(post.Keywords),
		post.ParsedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

// encodeList stores list fields as JSON text; an empty list stays NULL so
// LIKE-based membership filters can rely on coalesce.
func encodeList(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func decodeList(column sql.NullString) []string {
	if !column.Valid || column.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(column.String), &values); err != nil {
		return nil
	}
	return values
}
