package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/princinho/catalogviewer/dto"
	"github.com/princinho/catalogviewer/middleware"
	"github.com/princinho/catalogviewer/models"
	"github.com/princinho/catalogviewer/session"
)

const heartbeatInterval = 25 * time.Second

func requireController(c *gin.Context) bool {
	if middleware.Controller(c) == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return false
	}
	return true
}

// Search queues the term; the resulting view arrives on the event stream
// once typing pauses. A flush request applies it at once and returns the view.
func Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		var body dto.SearchActionDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctl := middleware.Controller(c)
		ctl.Search(body.Term)
		if body.Flush {
			ctl.FlushSearch()
			c.JSON(http.StatusOK, ctl.View())
			return
		}
		c.Status(http.StatusAccepted)
	}
}

func ApplyFilters() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		var body dto.FilterActionDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.Empty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no filter given"})
			return
		}

		ctl := middleware.Controller(c)
		if body.Term != nil {
			ctl.SyncSearch(*body.Term)
		}
		var view session.View
		if body.Category != nil {
			view = ctl.SetCategory(*body.Category)
		}
		if body.Brand != nil {
			view = ctl.SetBrand(*body.Brand)
		}
		if body.Price != nil {
			view = ctl.SetPriceBand(models.PriceBand(*body.Price))
		}
		c.JSON(http.StatusOK, view)
	}
}

func GoToPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		page, err := strconv.Atoi(c.Param("page"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		c.JSON(http.StatusOK, middleware.Controller(c).GoToPage(page))
	}
}

func PrevPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		c.JSON(http.StatusOK, middleware.Controller(c).PrevPage())
	}
}

func NextPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		c.JSON(http.StatusOK, middleware.Controller(c).NextPage())
	}
}

// Events streams every view the visitor's controller renders as
// server-sent "view" events. The stream ends when the controller is closed so
// the browser reconnects to the visitor's current one.
func Events() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireController(c) {
			return
		}
		views, cancel := middleware.Controller(c).Subscribe()
		defer cancel()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case v, ok := <-views:
				if !ok {
					return false
				}
				c.SSEvent("view", v)
				return true
			case <-heartbeat.C:
				c.SSEvent("ping", strconv.FormatInt(time.Now().Unix(), 10))
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
