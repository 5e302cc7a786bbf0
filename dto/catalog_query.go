package dto

import (
	"strings"

	"github.com/princinho/catalogviewer/models"
)

// CatalogQueryDTO is the query string shared by the catalog page and the
// JSON product listing.
type CatalogQueryDTO struct {
	Q        string `form:"q" binding:"max=200"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Price    string `form:"price" binding:"omitempty,oneof=under10 10to50 50to100 over100"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (q CatalogQueryDTO) FilterState() models.FilterState {
	return models.FilterState{
		SearchTerm: strings.TrimSpace(q.Q),
		Category:   strings.TrimSpace(q.Category),
		Brand:      strings.TrimSpace(q.Brand),
		PriceBand:  models.PriceBand(strings.TrimSpace(q.Price)),
	}
}
