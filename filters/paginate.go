package filters

import "github.com/princinho/catalogviewer/models"

// Paginate returns the page-th slice (1-based) of list. Pages past the end
// yield an empty slice.
func Paginate(list []models.Product, pageSize, page int) []models.Product {
	if pageSize < 1 || page < 1 {
		return []models.Product{}
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []models.Product{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, max(1, pageCount)].
func ClampPage(page, pageCount int) int {
	if page < 1 {
		return 1
	}
	if pageCount < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

type Pagination struct {
	Current      int   `json:"current"`
	Total        int   `json:"total"`
	Pages        []int `json:"pages"`
	PrevDisabled bool  `json:"prevDisabled"`
	NextDisabled bool  `json:"nextDisabled"`
}

// Visible is false for a single page or none; no controls are drawn then.
func (p Pagination) Visible() bool {
	return p.Total > 1
}

func (p Pagination) Prev() int { return ClampPage(p.Current-1, p.Total) }
func (p Pagination) Next() int { return ClampPage(p.Current+1, p.Total) }

func NewPagination(page, pageCount int) Pagination {
	page = ClampPage(page, pageCount)
	pages := make([]int, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pages = append(pages, i)
	}
	return Pagination{
		Current:      page,
		Total:        pageCount,
		Pages:        pages,
		PrevDisabled: page <= 1,
		NextDisabled: page >= pageCount,
	}
}
