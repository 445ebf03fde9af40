package browse

import "ebikerent/internal/models"

// Pagination tracks the current 1-based page of a list whose total size is
// reported by the backend.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

func NewPagination(pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &Pagination{Page: 1, PageSize: pageSize}
}

func (p *Pagination) TotalPages() int {
	if p.Total <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// SetPage moves to page, clamped to the known page range.
func (p *Pagination) SetPage(page int) {
	if last := p.TotalPages(); last > 0 && page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	p.Page = page
}

func (p *Pagination) Reset() { p.Page = 1 }

func (p *Pagination) HasNext() bool { return p.Page < p.TotalPages() }

func (p *Pagination) HasPrev() bool { return p.Page > 1 }

// Apply sets the page parameters on bike list filters.
func (p *Pagination) Apply(f models.BikeFilters) models.BikeFilters {
	f.Page = p.Page
	f.PageSize = p.PageSize
	return f
}
