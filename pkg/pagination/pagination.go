// Package pagination parses page/limit query parameters and computes page
// counts and page-button windows for listings.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPageButtons is the number of page buttons a listing shows at once.
	MaxPageButtons = 5
)

// Params holds 1-indexed pagination input.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// NewParams normalises page and limit: page < 1 becomes 1, limit outside
// [1, MaxLimit] becomes DefaultLimit.
func NewParams(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest reads ?page= and ?limit=. Unparseable values fall back to the
// defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return NewParams(page, limit)
}

// TotalPages returns ceil(total/limit), 0 for an empty listing.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Window returns the inclusive range of page numbers to render as buttons,
// at most size wide and starting up to size/2 pages before current. It
// returns (0, -1) when there are no pages.
func Window(current, totalPages, size int) (start, end int) {
	if totalPages <= 0 || size <= 0 {
		return 0, -1
	}
	start = max(1, current-size/2)
	end = min(totalPages, start+size-1)
	return start, end
}

// Pages expands Window into the list of page numbers.
func Pages(current, totalPages int) []int {
	start, end := Window(current, totalPages, MaxPageButtons)
	pages := make([]int, 0, MaxPageButtons)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Result is the paginated envelope used by back-office listings.
type Result[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int   `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	PageWindow []int `json:"page_window"`
}

// NewResult builds a Result. A nil data slice is rendered as [].
func NewResult[T any](data []T, totalCount int, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := TotalPages(totalCount, p.Limit)
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
		PageWindow: Pages(p.Page, totalPages),
	}
}
