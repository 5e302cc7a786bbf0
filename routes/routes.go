package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/controllers"
	"github.com/princinho/catalogviewer/middleware"
	"github.com/princinho/catalogviewer/render"
	"github.com/princinho/catalogviewer/session"
)

type Deps struct {
	Store          *catalog.Store
	Renderer       *render.Renderer
	Sessions       *session.Registry
	Log            *zap.Logger
	AllowedOrigins []string
	SecureCookies  bool
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range d.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/products", controllers.GetProducts(d.Store))
		api.GET("/products/:id", controllers.GetProduct(d.Store))
		api.GET("/filters", controllers.GetFilters(d.Store))
	}

	web := r.Group("/")
	web.Use(middleware.SessionMiddleware(d.Sessions, d.SecureCookies))
	{
		web.GET("/", controllers.GetCatalogPage(d.Renderer))
		web.GET("/events", controllers.Events())
		web.GET("/products/:id/quick-view", controllers.GetQuickView())

		web.POST("/actions/search", controllers.Search())
		web.POST("/actions/filter", controllers.ApplyFilters())
		web.POST("/actions/page/:page", controllers.GoToPage())
		web.POST("/actions/prev", controllers.PrevPage())
		web.POST("/actions/next", controllers.NextPage())
	}

	return r
}
