package types

// Pagination describes one page of a listing.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// NewPagination clamps page and limit and derives the page counts.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	pages := (total + limit - 1) / limit
	return Pagination{
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
