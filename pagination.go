package microblog

// DefaultPerPage is the page size the directory and follow listings use
const DefaultPerPage = 30

// Page is one window of a paginated result set. It carries enough
// metadata to render truthful previous/next controls.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page from a result window and the total row count
func NewPage[T any](items []T, page, perPage, total int) *Page[T] {
	page = NormalizePage(page)
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	return &Page[T]{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// NormalizePage clamps page numbers to 1..n
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageOffset is the row offset for a 1-based page number
func PageOffset(page, perPage int) int {
	return (NormalizePage(page) - 1) * perPage
}

func (p *Page[T]) HasPrev() bool {
	return p.Page > 1
}

func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// PrevPage returns the previous page number, clamped to the first page
func (p *Page[T]) PrevPage() int {
	if !p.HasPrev() {
		return 1
	}
	return p.Page - 1
}

// NextPage returns the next page number, clamped to the last page
func (p *Page[T]) NextPage() int {
	if !p.HasNext() {
		return p.TotalPages
	}
	return p.Page + 1
}
