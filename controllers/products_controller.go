package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/dto"
	"github.com/princinho/catalogviewer/filters"
	"github.com/princinho/catalogviewer/middleware"
	"github.com/princinho/catalogviewer/models"
	"github.com/princinho/catalogviewer/render"
	"github.com/princinho/catalogviewer/session"
	"github.com/princinho/catalogviewer/utils"
)

// GetCatalogPage renders the full page for the filter state in the query
// string, so links and the no-script form work without the action endpoints.
func GetCatalogPage(renderer *render.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl := middleware.Controller(c)
		if ctl == nil {
			c.String(http.StatusInternalServerError, "session unavailable")
			return
		}

		state := models.FilterState{
			SearchTerm: strings.TrimSpace(c.Query("q")),
			Category:   strings.TrimSpace(c.Query("category")),
			Brand:      strings.TrimSpace(c.Query("brand")),
			PriceBand:  models.PriceBand(strings.TrimSpace(c.Query("price"))),
		}
		page := utils.ParseIntDefault(c.Query("page"), 1)

		view := ctl.Restore(state, page)

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		err := renderer.RenderPage(c.Writer, render.Page{
			Search:     state.SearchTerm,
			Ready:      view.Ready,
			Status:     view.Status,
			Filters:    view.Filters,
			Grid:       view.Grid,
			Pagination: view.Pagination,
		})
		if err != nil {
			_ = c.Error(err)
		}
	}
}

// catalogUnavailable answers JSON callers while the catalog is not ready.
func catalogUnavailable(c *gin.Context, store *catalog.Store) bool {
	st := store.Status()
	switch {
	case st.Ready():
		return false
	case st.Failed():
		c.JSON(http.StatusBadGateway, gin.H{"error": st.Message})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog loading"})
	}
	return true
}

func GetProducts(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if catalogUnavailable(c, store) {
			return
		}

		var query dto.CatalogQueryDTO
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page := query.Page
		limit := query.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = models.ProductsPerPage
		}
		if limit > 100 {
			limit = 100
		}

		filtered := filters.ApplyFilters(store.Products(), query.FilterState())
		items := filters.Paginate(filtered, limit, page)

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": len(filtered),
			"pages": filters.PageCount(len(filtered), limit),
		})
	}
}

func GetProduct(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if catalogUnavailable(c, store) {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		p, ok := store.Find(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GetQuickView returns the details modal markup for one product.
func GetQuickView() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl := middleware.Controller(c)
		if ctl == nil {
			c.String(http.StatusInternalServerError, "session unavailable")
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.String(http.StatusBadRequest, "invalid product id")
			return
		}

		html, err := ctl.QuickView(id)
		if errors.Is(err, session.ErrProductNotFound) {
			c.String(http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "could not render product")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}
