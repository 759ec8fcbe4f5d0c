// Package listutil parses list-view query parameters (paging, sorting,
// filtering, date ranges) and computes pagination metadata for templates.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"time"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // empty means the store default
	Dir  string // "asc" or "desc"
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string
	Filters map[string]string // exact-match filters, e.g. plan=premium
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// DateRange is a half-open [From, To) interval of whole days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// DateLayout is the query-string format of from/to parameters.
const DateLayout = "2006-01-02"

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir from URL query values.
// Columns outside allowed are dropped so they never reach SQL.
// POST: Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowed []string) SortParams {
	sort := q.Get("sort")
	if !slices.Contains(allowed, sort) {
		sort = ""
	}
	dir := q.Get("dir")
	if dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseFilterParams extracts the q search term and the named filters.
// PRE: keys lists the allowed filter parameter names
// POST: Filters holds only recognised, non-empty keys
func ParseFilterParams(q url.Values, keys []string) FilterParams {
	fp := FilterParams{Search: q.Get("q"), Filters: make(map[string]string)}
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, sortCols, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q),
		SortParams:   ParseSortParams(q, sortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// ParseDateRange reads from and to (inclusive days) from q. Missing or
// malformed values default to the months months before today's month
// through the end of today.
// POST: From < To; both at midnight UTC
func ParseDateRange(q url.Values, today time.Time, months int) DateRange {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	r := DateRange{
		From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0),
		To:   today.AddDate(0, 0, 1),
	}
	if from, err := time.Parse(DateLayout, q.Get("from")); err == nil {
		r.From = from
	}
	if to, err := time.Parse(DateLayout, q.Get("to")); err == nil {
		r.To = to.AddDate(0, 0, 1)
	}
	if !r.From.Before(r.To) {
		r.From = r.To.AddDate(0, 0, -1)
	}
	return r
}

// LastDay returns the inclusive end date for display in a form field.
func (r DateRange) LastDay() time.Time {
	return r.To.AddDate(0, 0, -1)
}

// NewPageInfo computes pagination metadata.
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the page, or 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers returns at most 5 page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// NextDir returns the direction a column header link should request:
// clicking the active column flips it, any other column starts ascending.
func (s SortParams) NextDir(col string) string {
	if s.Sort == col && s.Dir == "asc" {
		return "desc"
	}
	return "asc"
}
