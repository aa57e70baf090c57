package query

import (
	"strings"
	"testing"
	"time"
)

func TestBuild_EmptyRequest(t *testing.T) {
	plan := Build(Request{})

	if len(plan.Conditions) != 0 {
		t.Errorf("Expected no conditions for empty request, got %d", len(plan.Conditions))
	}
	if plan.WhereSQL() != "" {
		t.Errorf("Expected empty WHERE clause, got '%s'", plan.WhereSQL())
	}
	if plan.OrderBy != "posts.date DESC" {
		t.Errorf("Expected default sort 'posts.date DESC', got '%s'", plan.OrderBy)
	}
	if plan.Page != 1 {
		t.Errorf("Expected default page 1, got %d", plan.Page)
	}
	if plan.PageSize != DefaultPageSize {
		t.Errorf("Expected default page size %d, got %d", DefaultPageSize, plan.PageSize)
	}
	if plan.Offset != 0 {
		t.Errorf("Expected offset 0, got %d", plan.Offset)
	}
}

func TestBuild_ContentTypeFilter(t *testing.T) {
	plan := Build(Request{
		Filter: FilterSpec{ContentTypes: []string{"text", "photo"}},
	})

	if len(plan.Conditions) != 1 {
		t.Fatalf("Expected 1 condition, got %d", len(plan.Conditions))
	}
	if plan.Conditions[0] != "posts.content_type IN (?,?)" {
		t.Errorf("Unexpected condition: %s", plan.Conditions[0])
	}
	if len(plan.Args) != 2 {
		t.Fatalf("Expected 2 args, got %d", len(plan.Args))
	}
	if plan.Args[0] != "text" || plan.Args[1] != "photo" {
		t.Errorf("Unexpected args: %v", plan.Args)
	}
}

func TestBuild_DateRangeFilter(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	plan := Build(Request{
		Filter: FilterSpec{DateFrom: &from, DateTo: &to},
	})

	if len(plan.Conditions) != 2 {
		t.Fatalf("Expected 2 conditions, got %d", len(plan.Conditions))
	}
	if plan.Conditions[0] != "posts.date >= ?" {
		t.Errorf("Unexpected first condition: %s", plan.Conditions[0])
	}
	if plan.Conditions[1] != "posts.date <= ?" {
		t.Errorf("Unexpected second condition: %s", plan.Conditions[1])
	}
}

func TestBuild_KeywordFilterIsDisjunction(t *testing.T) {
	plan := Build(Request{
		Filter: FilterSpec{Keywords: []string{"Go", "rust"}},
	})

	if len(plan.Conditions) != 1 {
		t.Fatalf("Expected 1 condition, got %d", len(plan.Conditions))
	}
	if !strings.Contains(plan.Conditions[0], " OR ") {
		t.Errorf("Keyword filter should be a disjunction, got: %s", plan.Conditions[0])
	}
	// Patterns must be lowercased for case-insensitive matching
	if plan.Args[0] != "%go%" {
		t.Errorf("Expected lowercased pattern '%%go%%', got '%v'", plan.Args[0])
	}
}

func TestBuild_HashtagFilterMatchesQuotedElement(t *testing.T) {
	plan := Build(Request{
		Filter: FilterSpec{Hashtags: []string{"#golang"}},
	})

	if len(plan.Args) != 1 {
		t.Fatalf("Expected 1 arg, got %d", len(plan.Args))
	}
	if plan.Args[0] != `%"#golang"%` {
		t.Errorf("Expected quoted-element pattern, got '%v'", plan.Args[0])
	}
}

func TestBuild_NumericRangeFilters(t *testing.T) {
	viewsMin := 100
	likesMax := 50
	engMin := 0.01

	plan := Build(Request{
		Filter: FilterSpec{ViewsMin: &viewsMin, LikesMax: &likesMax, EngagementMin: &engMin},
	})

	if len(plan.Conditions) != 3 {
		t.Fatalf("Expected 3 conditions, got %d", len(plan.Conditions))
	}
	joined := strings.Join(plan.Conditions, " AND ")
	if !strings.Contains(joined, "posts.views >= ?") {
		t.Error("Missing views lower bound condition")
	}
	if !strings.Contains(joined, "posts.likes <= ?") {
		t.Error("Missing likes upper bound condition")
	}
	if !strings.Contains(joined, "posts.engagement_rate >= ?") {
		t.Error("Missing engagement rate lower bound condition")
	}
}

func TestBuild_SearchAndAcrossTermsOrAcrossFields(t *testing.T) {
	plan := Build(Request{Search: "alpha beta"})

	// One condition per term: AND across terms
	if len(plan.Conditions) != 2 {
		t.Fatalf("Expected 2 conditions for 2 terms, got %d", len(plan.Conditions))
	}

	// Each term matches text, hashtags or mentions: OR across fields
	for i, cond := range plan.Conditions {
		if !strings.Contains(cond, "posts.text") ||
			!strings.Contains(cond, "posts.hashtags") ||
			!strings.Contains(cond, "posts.mentions") {
			t.Errorf("Condition %d should cover text, hashtags and mentions: %s", i, cond)
		}
		if strings.Count(cond, " OR ") != 2 {
			t.Errorf("Condition %d should be a 3-way disjunction: %s", i, cond)
		}
	}

	// 3 args (one per field) per term
	if len(plan.Args) != 6 {
		t.Errorf("Expected 6 args, got %d", len(plan.Args))
	}
	if plan.Args[0] != "%alpha%" || plan.Args[3] != "%beta%" {
		t.Errorf("Unexpected search args: %v", plan.Args)
	}
}

func TestBuild_SearchBlankIsNoOp(t *testing.T) {
	plan := Build(Request{Search: "   "})

	if len(plan.Conditions) != 0 {
		t.Errorf("Blank search should add no conditions, got %d", len(plan.Conditions))
	}
}

func TestBuild_SortKeys(t *testing.T) {
	tests := []struct {
		key       string
		direction string
		expected  string
	}{
		{"date", "desc", "posts.date DESC"},
		{"date", "asc", "posts.date ASC"},
		{"views", "desc", "posts.views DESC, posts.date DESC"},
		{"likes", "asc", "posts.likes ASC, posts.date DESC"},
		{"engagement_rate", "desc", "posts.engagement_rate DESC, posts.date DESC"},
		// Unknown sort key falls back to date
		{"bogus", "desc", "posts.date DESC"},
		// Unknown direction falls back to desc
		{"views", "sideways", "posts.views DESC, posts.date DESC"},
	}

	for _, tt := range tests {
		plan := Build(Request{Sort: SortSpec{Key: tt.key, Direction: tt.direction}})
		if plan.OrderBy != tt.expected {
			t.Errorf("Sort %s/%s: expected '%s', got '%s'", tt.key, tt.direction, tt.expected, plan.OrderBy)
		}
	}
}

func TestBuild_Pagination(t *testing.T) {
	plan := Build(Request{Page: PageSpec{Page: 3, PageSize: 20}})

	if plan.Limit != 20 {
		t.Errorf("Expected limit 20, got %d", plan.Limit)
	}
	if plan.Offset != 40 {
		t.Errorf("Expected offset 40, got %d", plan.Offset)
	}
	if plan.Page != 3 {
		t.Errorf("Expected page 3, got %d", plan.Page)
	}
}

func TestBuild_PaginationDefaults(t *testing.T) {
	plan := Build(Request{Page: PageSpec{Page: 0, PageSize: -5}})

	if plan.Page != 1 {
		t.Errorf("Expected page clamped to 1, got %d", plan.Page)
	}
	if plan.PageSize != DefaultPageSize {
		t.Errorf("Expected default page size, got %d", plan.PageSize)
	}
}

func TestBuild_CombinedStagesCompose(t *testing.T) {
	viewsMin := 10
	plan := Build(Request{
		Filter: FilterSpec{ContentTypes: []string{"text"}, ViewsMin: &viewsMin},
		Search: "golang",
		Sort:   SortSpec{Key: "views", Direction: "asc"},
		Page:   PageSpec{Page: 2, PageSize: 5},
	})

	if len(plan.Conditions) != 3 {
		t.Errorf("Expected 3 conditions (2 filters + 1 search term), got %d", len(plan.Conditions))
	}
	if !strings.HasPrefix(plan.WhereSQL(), " WHERE ") {
		t.Errorf("WhereSQL should start with ' WHERE ', got '%s'", plan.WhereSQL())
	}
	if plan.OrderBy != "posts.views ASC, posts.date DESC" {
		t.Errorf("Unexpected order by: %s", plan.OrderBy)
	}
	if plan.Offset != 5 {
		t.Errorf("Expected offset 5, got %d", plan.Offset)
	}
}

func TestBuildChannelList(t *testing.T) {
	active := true
	plan := BuildChannelList(ChannelFilter{IsActive: &active, Search: "Tech"})

	if len(plan.Conditions) != 2 {
		t.Fatalf("Expected 2 conditions, got %d", len(plan.Conditions))
	}
	if plan.OrderBy != "channels.name ASC" {
		t.Errorf("Channel listing must sort by name ascending, got '%s'", plan.OrderBy)
	}
	if plan.Args[1] != "%tech%" {
		t.Errorf("Expected lowercased search pattern, got '%v'", plan.Args[1])
	}
}

func TestBuildChannelList_NoFilter(t *testing.T) {
	plan := BuildChannelList(ChannelFilter{})

	if len(plan.Conditions) != 0 {
		t.Errorf("Expected no conditions, got %d", len(plan.Conditions))
	}
	if plan.OrderBy != "channels.name ASC" {
		t.Errorf("Expected name ascending sort, got '%s'", plan.OrderBy)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int
		pageSize int
		expected int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{100, 50, 2},
		{101, 50, 3},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.expected {
			t.Errorf("TotalPages(%d, %d) = %d, expected %d", tt.total, tt.pageSize, got, tt.expected)
		}
	}
}
