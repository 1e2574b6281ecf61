// Package paging slices an in-memory list into fixed-size pages.
package paging

// DefaultPerPage is the page size of the project list.
const DefaultPerPage = 6

// Paginator tracks the current page over a list of n items.
// The zero value is not usable; call New.
type Paginator struct {
	current int
	perPage int
}

// New returns a paginator on page 1. perPage values below 1 fall back to
// DefaultPerPage.
func New(perPage int) *Paginator {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Paginator{current: 1, perPage: perPage}
}

// Current returns the 1-indexed current page.
func (p *Paginator) Current() int { return p.current }

// PerPage returns the page size.
func (p *Paginator) PerPage() int { return p.perPage }

// TotalPages returns ceil(n / perPage); 0 for an empty list.
func (p *Paginator) TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.perPage - 1) / p.perPage
}

// Bounds returns the half-open index range of the current page clipped to
// [0, n]. A page past the end yields an empty range.
func (p *Paginator) Bounds(n int) (start, end int) {
	start = (p.current - 1) * p.perPage
	end = p.current * p.perPage
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	return start, end
}

// Paginate jumps to page n without validating it against the list length.
// Callers only offer page numbers in [1, TotalPages].
func (p *Paginator) Paginate(n int) { p.current = n }

// Next advances one page; a no-op on the last page.
func (p *Paginator) Next(n int) bool {
	if p.current < p.TotalPages(n) {
		p.current++
		return true
	}
	return false
}

// Prev retreats one page; a no-op on page 1.
func (p *Paginator) Prev() bool {
	if p.current > 1 {
		p.current--
		return true
	}
	return false
}

// Pages lists the page numbers 1..TotalPages(n).
func (p *Paginator) Pages(n int) []int {
	total := p.TotalPages(n)
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Slice returns the current page of items. The result aliases items.
func Slice[T any](p *Paginator, items []T) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
