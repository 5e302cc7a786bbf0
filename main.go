package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/config"
	"github.com/princinho/catalogviewer/datasource"
	"github.com/princinho/catalogviewer/logger"
	"github.com/princinho/catalogviewer/render"
	"github.com/princinho/catalogviewer/routes"
	"github.com/princinho/catalogviewer/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	log := logger.New(cfg)
	defer log.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	renderer, err := render.New(cfg.Catalog.PlaceholderImage)
	if err != nil {
		log.Fatal("templates", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore(log.Named("catalog"))
	source := datasource.NewSource(cfg.Catalog, nil)
	log.Info("fetching catalog", zap.String("url", cfg.Catalog.APIURL), zap.Int("limit", cfg.Catalog.Limit))
	go store.Load(ctx, source)

	sessions := session.NewRegistry(store, renderer, cfg.Session.SearchDebounce, cfg.Session.TTL, log.Named("session"))
	go sessions.Run(ctx.Done())

	router := routes.Setup(routes.Deps{
		Store:          store,
		Renderer:       renderer,
		Sessions:       sessions,
		Log:            log.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  !cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.AppEnv))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("listen", zap.Error(err))
	}
}
