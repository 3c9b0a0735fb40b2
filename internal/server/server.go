// Package server wires the HTTP surface: middleware order, routes, static
// pages, and graceful shutdown. All dependencies are assembled in New and
// injected into the handlers that need them.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"velotrack/internal/analyses"
	"velotrack/internal/auth"
	"velotrack/internal/config"
	"velotrack/internal/database"
	"velotrack/internal/health"
	"velotrack/internal/middleware"
	"velotrack/internal/session"
	"velotrack/internal/store"
)

// Server owns the router, both database handles, and the session-sweep
// goroutine's quit channel.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	router    *gin.Engine
	db        *gorm.DB
	sessionDB *gorm.DB
	sweepQuit chan struct{}
}

// New opens storage, prepares the schema, and assembles the router.
// Any error here is an unrecoverable startup failure.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := database.Init(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if cfg.Env == "development" && cfg.SeedDevData {
		if err := database.SeedDevData(db); err != nil {
			logger.Warn("failed to seed dev data", slog.String("error", err.Error()))
		}
	}

	// Sessions live in their own database file so a server restart does
	// not log everyone out and session churn never touches the main file.
	sessionDB, err := database.Init(cfg.SessionDBPath)
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		sessionDB: sessionDB,
		sweepQuit: make(chan struct{}),
	}

	oauthEnabled := auth.InitProviders(cfg)
	s.router = s.buildRouter(oauthEnabled)

	return s, nil
}

func (s *Server) buildRouter(oauthEnabled bool) *gin.Engine {
	if s.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.logger))

	// The frontend may be served from another origin during development,
	// and the session cookie must survive it.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	sessionStore := session.NewStore(s.sessionDB, []byte(s.cfg.SessionSecret), s.sweepQuit)
	sessionStore.Options(session.CookieOptions(s.cfg.IsHTTPS()))
	r.Use(sessions.Sessions("velotrack_session", sessionStore))

	st := store.New(s.db)

	r.GET("/health", health.Handler)

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/google", auth.RequireOAuth(oauthEnabled), auth.BeginLoginHandler())
		authGroup.GET("/google/callback", auth.RequireOAuth(oauthEnabled), auth.CallbackHandler(st))
		authGroup.GET("/logout", auth.LogoutHandler())
		authGroup.GET("/status", auth.StatusHandler(st, oauthEnabled))
		authGroup.GET("/test", auth.TestHandler(st, oauthEnabled))
	}

	api := r.Group("/api")
	{
		api.GET("/oauth-status", auth.OAuthStatusHandler(st, oauthEnabled))

		protected := api.Group("/analyses", auth.RequireAuth(oauthEnabled, st))
		{
			protected.POST("", analyses.CreateHandler(st))
			protected.GET("", analyses.ListHandler(st))
			protected.GET("/:id", analyses.GetHandler(st))
			protected.DELETE("/:id", analyses.DeleteHandler(st))
		}
	}

	// Static frontend, same layout as the capture app expects
	r.Use(static.Serve("/", static.LocalFile("./public", false)))
	r.GET("/", servePage("index.html"))
	r.GET("/privacy", servePage("privacy.html"))
	r.GET("/terms", servePage("terms.html"))
	r.GET("/analyses", servePage("analyses.html"))

	return r
}

func servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.File("./public/" + name)
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, stop
// the session sweep, close both database files.
func (s *Server) Start() error {
	defer func() {
		close(s.sweepQuit)
		if err := database.Close(s.sessionDB); err != nil {
			s.logger.Warn("closing session database", slog.String("error", err.Error()))
		}
		if err := database.Close(s.db); err != nil {
			s.logger.Warn("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("public_url", s.cfg.PublicURL),
			slog.String("database", s.cfg.DatabasePath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
