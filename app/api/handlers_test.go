package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgpulse/tgpulse/app/analyzer"
	"github.com/tgpulse/tgpulse/app/database"
	"github.com/tgpulse/tgpulse/app/query"
	"github.com/tgpulse/tgpulse/app/tasks"
)

type stubChannelRepo struct {
	database.ChannelRepository
	channel *database.Channel
}

func (s *stubChannelRepo) GetChannel(id int64) (*database.Channel, error) {
	return s.channel, nil
}

type captureScheduler struct {
	enqueued []tasks.TaskInterface
}

func (s *captureScheduler) Start() {}
func (s *captureScheduler) Stop()  {}

func (s *captureScheduler) EnqueueTask(task tasks.TaskInterface) error {
	s.enqueued = append(s.enqueued, task)
	return nil
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestParseChannel_EnqueuesTask(t *testing.T) {
	scheduler := &captureScheduler{}
	handler := &Handler{
		channelRepo:   &stubChannelRepo{channel: &database.Channel{ID: 7, Handle: "technews"}},
		scheduler:     scheduler,
		assembler:     analyzer.NewAssembler(analyzer.NewExtractor(analyzer.NewFrequencyTagger())),
		postsPerParse: 100,
	}

	c, w := testContext("/channels/7/parse")
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ParseChannel(c)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(scheduler.enqueued))
	}

	task, ok := scheduler.enqueued[0].(*tasks.ParseChannelTask)
	if !ok {
		t.Fatalf("Expected a parse channel task, got %T", scheduler.enqueued[0])
	}
	if task.Channel.Handle != "technews" {
		t.Errorf("Unexpected task channel: %q", task.Channel.Handle)
	}
}

func TestBuildRequest_Defaults(t *testing.T) {
	c, _ := testContext("/posts")

	req, err := buildRequest(c)
	if err != nil {
		t.Fatalf("buildRequest failed: %v", err)
	}

	if req.Filter.DateFrom != nil || len(req.Filter.ChannelIDs) != 0 || req.Search != "" {
		t.Errorf("Empty query should produce an empty request: %+v", req)
	}
}

func TestBuildRequest_Filters(t *testing.T) {
	c, _ := testContext("/posts?date_from=2024-05-01&date_to=2024-05-31T23:59:59Z" +
		"&channel_ids=1,2&content_types=photo,video&hashtags=%23go" +
		"&views_min=100&engagement_max=0.5&search=breaking+news" +
		"&sort_by=views&sort_order=asc&page=2&page_size=25")

	req, err := buildRequest(c)
	if err != nil {
		t.Fatalf("buildRequest failed: %v", err)
	}

	if req.Filter.DateFrom == nil || !req.Filter.DateFrom.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date_from: %v", req.Filter.DateFrom)
	}
	if req.Filter.DateTo == nil || req.Filter.DateTo.Day() != 31 {
		t.Errorf("Unexpected date_to: %v", req.Filter.DateTo)
	}
	if len(req.Filter.ChannelIDs) != 2 || req.Filter.ChannelIDs[1] != 2 {
		t.Errorf("Unexpected channel ids: %v", req.Filter.ChannelIDs)
	}
	if len(req.Filter.ContentTypes) != 2 {
		t.Errorf("Unexpected content types: %v", req.Filter.ContentTypes)
	}
	if len(req.Filter.Hashtags) != 1 || req.Filter.Hashtags[0] != "#go" {
		t.Errorf("Unexpected hashtags: %v", req.Filter.Hashtags)
	}
	if req.Filter.ViewsMin == nil || *req.Filter.ViewsMin != 100 {
		t.Errorf("Unexpected views_min: %v", req.Filter.ViewsMin)
	}
	if req.Filter.EngagementMax == nil || *req.Filter.EngagementMax != 0.5 {
		t.Errorf("Unexpected engagement_max: %v", req.Filter.EngagementMax)
	}
	if req.Search != "breaking news" {
		t.Errorf("Unexpected search: %q", req.Search)
	}
	if req.Sort != (query.SortSpec{Key: "views", Direction: "asc"}) {
		t.Errorf("Unexpected sort: %+v", req.Sort)
	}
	if req.Page.Page != 2 || req.Page.PageSize != 25 {
		t.Errorf("Unexpected pagination: %+v", req.Page)
	}
}

func TestBuildRequest_InvalidValues(t *testing.T) {
	for _, target := range []string{
		"/posts?date_from=yesterday",
		"/posts?channel_ids=abc",
		"/posts?views_min=many",
		"/posts?engagement_min=high",
		"/posts?page=first",
	} {
		c, _ := testContext(target)
		if _, err := buildRequest(c); err == nil {
			t.Errorf("Expected error for %q", target)
		}
	}
}

func TestSplitParam(t *testing.T) {
	values := splitParam(" a, b ,,c ")
	if len(values) != 3 || values[0] != "a" || values[2] != "c" {
		t.Errorf("Unexpected values: %v", values)
	}
	if splitParam("") != nil {
		t.Error("Empty input should yield nil")
	}
}

func TestParseTimeParam(t *testing.T) {
	value, err := parseTimeParam("2024-05-10T15:30:00+03:00")
	if err != nil {
		t.Fatalf("parseTimeParam failed: %v", err)
	}
	if value.Location() != time.UTC {
		t.Errorf("Parsed times should convert to UTC, got %v", value.Location())
	}
	if value.Hour() != 12 {
		t.Errorf("Expected 12:30 UTC, got %v", value)
	}
}
