package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/filters"
	"github.com/princinho/catalogviewer/models"
	"github.com/princinho/catalogviewer/utils"
)

type optionView struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

func newOption(value, label string) optionView {
	return optionView{Value: value, Label: label, Slug: utils.GenerateSlug(value)}
}

func GetFilters(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if catalogUnavailable(c, store) {
			return
		}
		opts := store.Options()

		categories := make([]optionView, 0, len(opts.Categories))
		for _, cat := range opts.Categories {
			categories = append(categories, newOption(cat, filters.CategoryLabel(cat)))
		}
		brands := make([]optionView, 0, len(opts.Brands))
		for _, b := range opts.Brands {
			brands = append(brands, newOption(b, b))
		}
		prices := make([]optionView, 0, len(models.PriceBands))
		for _, band := range models.PriceBands {
			prices = append(prices, newOption(string(band), band.Label()))
		}

		c.JSON(http.StatusOK, gin.H{
			"categories": categories,
			"brands":     brands,
			"prices":     prices,
		})
	}
}
