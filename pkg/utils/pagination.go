package utils

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a normalized 1-based page window.
type PageRequest struct {
	Page  int
	Limit int
}

// PageMeta is returned alongside every paginated list.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
}

// NewPageRequest clamps page to at least 1 and limit to (0, MaxPageSize],
// using DefaultPageSize when limit is not positive.
func NewPageRequest(page, limit int) PageRequest {
	page = max(page, 1)
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return PageRequest{Page: page, Limit: min(limit, MaxPageSize)}
}

func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes where this page sits within total rows.
func (p PageRequest) Meta(total int64) PageMeta {
	meta := PageMeta{Page: max(p.Page, 1), Limit: p.Limit, TotalCount: total}
	if p.Limit <= 0 {
		meta.Limit = int(total)
		meta.TotalPages = 1
		return meta
	}
	meta.TotalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	meta.HasNext = meta.Page < meta.TotalPages
	return meta
}
