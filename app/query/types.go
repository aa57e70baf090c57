package query

import (
	"time"
)

// FilterSpec is a conjunction of optional predicates. A nil/empty field
// means "no constraint" for that predicate.
type FilterSpec struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	ChannelIDs    []int64
	ContentTypes  []string
	Keywords      []string
	Hashtags      []string
	ViewsMin      *int
	ViewsMax      *int
	LikesMin      *int
	LikesMax      *int
	EngagementMin *float64
	EngagementMax *float64
}

type SortSpec struct {
	Key       string // date, views, likes, engagement_rate
	Direction string // asc, desc
}

type PageSpec struct {
	Page     int // 1-based
	PageSize int
}

// Request is the declarative input of the plan builder. It is composed
// once as a value and never mutated afterwards.
type Request struct {
	Filter FilterSpec
	Search string
	Sort   SortSpec
	Page   PageSpec
}

// ChannelFilter narrows the channel listing.
type ChannelFilter struct {
	IsActive *bool
	Search   string
}

// Plan is an executable query descriptor: conditions, ordering and
// pagination ready to be handed to a repository.
type Plan struct {
	Conditions []string
	Args       []any
	OrderBy    string
	Limit      int
	Offset     int
	Page       int
	PageSize   int
}

// WhereSQL renders the conditions as a WHERE clause, or an empty string
// when the plan has no conditions.
func (p Plan) WhereSQL() string {
	if len(p.Conditions) == 0 {
		return ""
	}
	sql := " WHERE " + p.Conditions[0]
	for _, cond := range p.Conditions[1:] {
		sql += " AND " + cond
	}
	return sql
}
