package query

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 50
	DefaultSortKey  = "date"
)

var sortColumns = map[string]string{
	"date":            "posts.date",
	"views":           "posts.views",
	"likes":           "posts.likes",
	"engagement_rate": "posts.engagement_rate",
}

// Build turns a declarative request into an executable plan. It is a pure
// function: filter, search, sort and pagination stages are each applied
// only when the corresponding field is present, and an omitted stage is
// a no-op.
func Build(req Request) Plan {
	plan := Plan{}

	applyFilters(&plan, req.Filter)
	applySearch(&plan, req.Search)
	applySort(&plan, req.Sort)
	applyPagination(&plan, req.Page)

	return plan
}

func applyFilters(plan *Plan, f FilterSpec) {
	if f.DateFrom != nil {
		plan.Conditions = append(plan.Conditions, "posts.date >= ?")
		plan.Args = append(plan.Args, f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		plan.Conditions = append(plan.Conditions, "posts.date <= ?")
		plan.Args = append(plan.Args, f.DateTo.UTC())
	}

	if len(f.ChannelIDs) > 0 {
		plan.Conditions = append(plan.Conditions, "posts.channel_id IN ("+placeholders(len(f.ChannelIDs))+")")
		for _, id := range f.ChannelIDs {
			plan.Args = append(plan.Args, id)
		}
	}

	if len(f.ContentTypes) > 0 {
		plan.Conditions = append(plan.Conditions, "posts.content_type IN ("+placeholders(len(f.ContentTypes))+")")
		for _, ct := range f.ContentTypes {
			plan.Args = append(plan.Args, ct)
		}
	}

	// Each keyword is a case-insensitive substring match against the post
	// text; multiple keywords form a disjunction.
	if len(f.Keywords) > 0 {
		conditions := make([]string, 0, len(f.Keywords))
		for _, keyword := range f.Keywords {
			conditions = append(conditions, "lower(coalesce(posts.text, '')) LIKE ?")
			plan.Args = append(plan.Args, pattern(keyword))
		}
		plan.Conditions = append(plan.Conditions, "("+strings.Join(conditions, " OR ")+")")
	}

	// Hashtags are stored as a JSON array; membership is matched against
	// the quoted element to avoid partial-tag hits.
	if len(f.Hashtags) > 0 {
		conditions := make([]string, 0, len(f.Hashtags))
		for _, hashtag := range f.Hashtags {
			conditions = append(conditions, "coalesce(posts.hashtags, '') LIKE ?")
			plan.Args = append(plan.Args, `%"`+hashtag+`"%`)
		}
		plan.Conditions = append(plan.Conditions, "("+strings.Join(conditions, " OR ")+")")
	}

	if f.ViewsMin != nil {
		plan.Conditions = append(plan.Conditions, "posts.views >= ?")
		plan.Args = append(plan.Args, *f.ViewsMin)
	}
	if f.ViewsMax != nil {
		plan.Conditions = append(plan.Conditions, "posts.views <= ?")
		plan.Args = append(plan.Args, *f.ViewsMax)
	}
	if f.LikesMin != nil {
		plan.Conditions = append(plan.Conditions, "posts.likes >= ?")
		plan.Args = append(plan.Args, *f.LikesMin)
	}
	if f.LikesMax != nil {
		plan.Conditions = append(plan.Conditions, "posts.likes <= ?")
		plan.Args = append(plan.Args, *f.LikesMax)
	}
	if f.EngagementMin != nil {
		plan.Conditions = append(plan.Conditions, "posts.engagement_rate >= ?")
		plan.Args = append(plan.Args, *f.EngagementMin)
	}
	if f.EngagementMax != nil {
		plan.Conditions = append(plan.Conditions, "posts.engagement_rate <= ?")
		plan.Args = append(plan.Args, *f.EngagementMax)
	}
}

// applySearch splits the free-text query into whitespace-delimited terms.
// Every term must match (AND across terms), but each term may match in the
// post text, the hashtag set or the mention set (OR across fields).
func applySearch(plan *Plan, search string) {
	terms := strings.Fields(search)
	if len(terms) == 0 {
		return
	}

	for _, term := range terms {
		plan.Conditions = append(plan.Conditions,
			"(lower(coalesce(posts.text, '')) LIKE ?"+
				" OR lower(coalesce(posts.hashtags, '')) LIKE ?"+
				" OR lower(coalesce(posts.mentions, '')) LIKE ?)")
		p := pattern(term)
		plan.Args = append(plan.Args, p, p, p)
	}
}

func applySort(plan *Plan, sort SortSpec) {
	key := sort.Key
	column, ok := sortColumns[key]
	if !ok {
		key = DefaultSortKey
		column = sortColumns[key]
	}

	direction := "DESC"
	if strings.EqualFold(sort.Direction, "asc") {
		direction = "ASC"
	}

	plan.OrderBy = column + " " + direction

	// Secondary sort by date keeps the order deterministic on ties.
	if key != "date" {
		plan.OrderBy += ", posts.date DESC"
	}
}

func applyPagination(plan *Plan, page PageSpec) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = DefaultPageSize
	}

	plan.Page = page.Page
	plan.PageSize = page.PageSize
	plan.Limit = page.PageSize
	plan.Offset = (page.Page - 1) * page.PageSize
}

// BuildChannelList composes the plan for the channel listing: optional
// active-flag filter, optional substring search over name and handle,
// always sorted by name ascending.
func BuildChannelList(f ChannelFilter) Plan {
	plan := Plan{OrderBy: "channels.name ASC"}

	if f.IsActive != nil {
		plan.Conditions = append(plan.Conditions, "channels.is_active = ?")
		plan.Args = append(plan.Args, *f.IsActive)
	}

	if f.Search != "" {
		plan.Conditions = append(plan.Conditions,
			"(lower(channels.name) LIKE ? OR lower(channels.handle) LIKE ?)")
		p := pattern(f.Search)
		plan.Args = append(plan.Args, p, p)
	}

	return plan
}

// TotalPages computes ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func pattern(term string) string {
	return fmt.Sprintf("%%%s%%", strings.ToLower(term))
}
