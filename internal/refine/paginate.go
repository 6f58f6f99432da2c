package refine

import "github.com/rebeliceyang/lazydash/internal/models"

// Page is one displayed slice of refined rows plus pagination metadata
type Page struct {
	Rows       []models.Row
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// FirstIndex returns the 1-based position of the first row shown, 0 when empty
func (p Page) FirstIndex() int {
	if len(p.Rows) == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// LastIndex returns the 1-based position of the last row shown, 0 when empty
func (p Page) LastIndex() int {
	if len(p.Rows) == 0 {
		return 0
	}
	return p.FirstIndex() + len(p.Rows) - 1
}

// Paginate returns rows[(page-1)*pageSize : page*pageSize].
// pageSize <= 0 shows everything on one page; page is clamped to [1, TotalPages].
func Paginate(rows []models.Row, page, pageSize int) Page {
	total := len(rows)
	if pageSize <= 0 {
		pageSize = total
	}

	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Rows:       rows[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
