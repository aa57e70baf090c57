package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/cfg"
	"github.com/tgpulse/tgpulse/app/database"
	"github.com/tgpulse/tgpulse/app/export"
	"github.com/tgpulse/tgpulse/app/query"
	"github.com/tgpulse/tgpulse/app/tasks"
	"github.com/tgpulse/tgpulse/app/telegram"
)

func NewHandler(channelRepo database.ChannelRepository, postRepo database.PostRepository,
	client telegram.Client, scheduler tasks.TaskSchedulerInterface, assembler *analyzer.Assembler) *Handler {
	c := cfg.Get()
	return &Handler{
		channelRepo:   channelRepo,
		postRepo:      postRepo,
		client:        client,
		scheduler:     scheduler,
		assembler:     assembler,
		postsPerParse: c.PostsPerParse,
		maxExportRows: c.MaxExportRows,
	}
}

func (h *Handler) ListPosts(c *gin.Context) {
	req, err := buildRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.postRepo.GetFilteredPosts(query.Build(req))
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	posts := make([]PostResponse, 0, len(result.Posts))
	for _, post := range result.Posts {
		posts = append(posts, toPostResponse(post))
	}

	c.JSON(http.StatusOK, PostListResponse{
		Posts:      posts,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	post, err := h.postRepo.GetPost(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, toPostResponse(*post))
}

func (h *Handler) ListChannels(c *gin.Context) {
	filter := query.ChannelFilter{Search: c.Query("search")}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active value"})
			return
		}
		filter.IsActive = &active
	}

	channels, err := h.channelRepo.ListChannels(query.BuildChannelList(filter))
	if err != nil {
		slog.Error("Database error", "operation", "list_channels", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]ChannelResponse, 0, len(channels))
	for _, channel := range channels {
		responses = append(responses, toChannelResponse(channel))
	}

	c.JSON(http.StatusOK, gin.H{"channels": responses, "total": len(responses)})
}

func (h *Handler) GetChannel(c *gin.Context) {
	channel, ok := h.lookupChannel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toChannelResponse(*channel))
}

// CreateChannel registers a channel for tracking. The handle is resolved
// against Telegram first so dead or private channels are rejected up
// front, and an initial parse is queued on success.
func (h *Handler) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	handle := telegram.NormalizeHandle(req.Handle)
	if req.ParseMode == "" {
		req.ParseMode = analyzer.ParseModeNewOnly
	}

	info, err := h.client.GetChannelInfo(c.Request.Context(), handle)
	if err != nil {
		switch {
		case errors.Is(err, telegram.ErrChannelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		case errors.Is(err, telegram.ErrChannelPrivate):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Channel is private"})
		default:
			slog.Error("Telegram error", "operation", "get_channel_info", "channel", handle, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve channel"})
		}
		return
	}

	channel := database.Channel{
		Handle:      handle,
		Name:        info.Title,
		AvatarURL:   info.AvatarURL,
		Subscribers: info.Subscribers,
		Description: info.Description,
		IsActive:    true,
		ParseMode:   req.ParseMode,
	}

	if err := analyzer.ValidateChannel(&channel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.channelRepo.UpsertChannel(channel)
	if err != nil {
		slog.Error("Database error", "operation", "upsert_channel", "channel", handle, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	channel.ID = id

	task := tasks.NewParseChannelTask(channel, h.client, h.assembler,
		h.channelRepo, h.postRepo, h.postsPerParse)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue initial parse", "channel", handle, "error", err)
	}

	c.JSON(http.StatusCreated, toChannelResponse(channel))
}

func (h *Handler) UpdateChannel(c *gin.Context) {
	channel, ok := h.lookupChannel(c)
	if !ok {
		return
	}

	var req UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.ParseMode != nil {
		if *req.ParseMode != analyzer.ParseModeNewOnly && *req.ParseMode != analyzer.ParseModeFullHistory {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parse_mode: " + *req.ParseMode})
			return
		}
		if err := h.channelRepo.SetParseMode(channel.ID, *req.ParseMode); err != nil {
			slog.Error("Database error", "operation", "set_parse_mode", "id", channel.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		channel.ParseMode = *req.ParseMode
	}

	if req.IsActive != nil {
		if err := h.channelRepo.SetChannelActive(channel.ID, *req.IsActive); err != nil {
			slog.Error("Database error", "operation", "set_channel_active", "id", channel.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		channel.IsActive = *req.IsActive
	}

	c.JSON(http.StatusOK, toChannelResponse(*channel))
}

func (h *Handler) DeleteChannel(c *gin.Context) {
	channel, ok := h.lookupChannel(c)
	if !ok {
		return
	}

	if err := h.channelRepo.DeleteChannel(channel.ID); err != nil {
		slog.Error("Database error", "operation", "delete_channel", "id", channel.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ParseChannel(c *gin.Context) {
	channel, ok := h.lookupChannel(c)
	if !ok {
		return
	}

	task := tasks.NewParseChannelTask(*channel, h.client, h.assembler,
		h.channelRepo, h.postRepo, h.postsPerParse)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue parse task", "channel", channel.Handle, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue parse task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"channel": channel.Handle,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// ExportPosts renders matching posts as a downloadable file. The row cap
// is checked against the total match count before any rendering work.
func (h *Handler) ExportPosts(c *gin.Context) {
	req, err := buildRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := c.DefaultQuery("format", export.FormatCSV)
	if format != export.FormatCSV && format != export.FormatXLSX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format: " + format})
		return
	}

	req.Page = query.PageSpec{Page: 1, PageSize: h.maxExportRows}
	result, err := h.postRepo.GetFilteredPosts(query.Build(req))
	if err != nil {
		slog.Error("Database error", "operation", "export_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if result.Total > h.maxExportRows {
		limitErr := &export.ErrLimitExceeded{Requested: result.Total, Limit: h.maxExportRows}
		c.JSON(http.StatusBadRequest, gin.H{"error": limitErr.Error()})
		return
	}

	handles, err := h.channelHandles()
	if err != nil {
		slog.Error("Database error", "operation", "export_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	records := make([]export.Record, 0, len(result.Posts))
	for _, post := range result.Posts {
		records = append(records, export.Record{Post: post, Channel: handles[post.ChannelID]})
	}

	columns := splitParam(c.Query("columns"))

	var data []byte
	var contentType string
	switch format {
	case export.FormatCSV:
		data, err = export.ToCSV(records, columns)
		contentType = "text/csv; charset=utf-8"
	case export.FormatXLSX:
		data, err = export.ToXLSX(records, columns)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		slog.Error("Export rendering failed", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(format, time.Now().UTC())+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if channelCount, err := h.channelRepo.GetChannelCount(); err == nil {
		health["channels"] = channelCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) lookupChannel(c *gin.Context) (*database.Channel, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel id"})
		return nil, false
	}

	channel, err := h.channelRepo.GetChannel(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_channel", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return nil, false
	}

	return channel, true
}

func (h *Handler) channelHandles() (map[int64]string, error) {
	channels, err := h.channelRepo.ListChannels(query.BuildChannelList(query.ChannelFilter{}))
	if err != nil {
		return nil, err
	}

	handles := make(map[int64]string, len(channels))
	for _, channel := range channels {
		handles[channel.ID] = channel.Handle
	}
	return handles, nil
}

// buildRequest translates query parameters into the declarative request
// consumed by the plan builder.
func buildRequest(c *gin.Context) (query.Request, error) {
	var req query.Request

	dateFrom, err := parseTimeParam(c.Query("date_from"))
	if err != nil {
		return req, err
	}
	dateTo, err := parseTimeParam(c.Query("date_to"))
	if err != nil {
		return req, err
	}
	req.Filter.DateFrom = dateFrom
	req.Filter.DateTo = dateTo

	for _, raw := range splitParam(c.Query("channel_ids")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, errors.New("invalid channel_ids value: " + raw)
		}
		req.Filter.ChannelIDs = append(req.Filter.ChannelIDs, id)
	}

	req.Filter.ContentTypes = splitParam(c.Query("content_types"))
	req.Filter.Keywords = splitParam(c.Query("keywords"))
	req.Filter.Hashtags = splitParam(c.Query("hashtags"))

	if req.Filter.ViewsMin, err = parseIntParam(c.Query("views_min")); err != nil {
		return req, err
	}
	if req.Filter.ViewsMax, err = parseIntParam(c.Query("views_max")); err != nil {
		return req, err
	}
	if req.Filter.LikesMin, err = parseIntParam(c.Query("likes_min")); err != nil {
		return req, err
	}
	if req.Filter.LikesMax, err = parseIntParam(c.Query("likes_max")); err != nil {
		return req, err
	}
	if req.Filter.EngagementMin, err = parseFloatParam(c.Query("engagement_min")); err != nil {
		return req, err
	}
	if req.Filter.EngagementMax, err = parseFloatParam(c.Query("engagement_max")); err != nil {
		return req, err
	}

	req.Search = c.Query("search")
	req.Sort = query.SortSpec{Key: c.Query("sort_by"), Direction: c.Query("sort_order")}

	if page, err := parseIntParam(c.Query("page")); err != nil {
		return req, err
	} else if page != nil {
		req.Page.Page = *page
	}
	if pageSize, err := parseIntParam(c.Query("page_size")); err != nil {
		return req, err
	} else if pageSize != nil {
		req.Page.PageSize = *pageSize
	}

	return req, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func parseIntParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid integer value: " + raw)
	}
	return &value, nil
}

func parseFloatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid number value: " + raw)
	}
	return &value, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if value, err := time.Parse(layout, raw); err == nil {
			utc := value.UTC()
			return &utc, nil
		}
	}
	return nil, errors.New("invalid date value: " + raw)
}
