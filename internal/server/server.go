package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobs-board/internal/config"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

func NewServer(cfg config.ServerConfig, handler *JobsHandler) *Server {
	gin.SetMode(cfg.Mode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), identity())
	setupRoutes(router, handler)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    ":" + strconv.Itoa(cfg.Port),
			Handler: router,
		},
	}
}

func setupRoutes(router *gin.Engine, handler *JobsHandler) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jobs := router.Group("/api/jobs")
	jobs.GET("/health", handler.Health)
	jobs.GET("/search", handler.Search)
	jobs.GET("/categories", handler.Categories)
	jobs.GET("/saved", requireIdentity(), handler.Saved)
	jobs.GET("/:id", handler.GetByID)
	jobs.POST("/:id/save", requireIdentity(), handler.Save)
	jobs.DELETE("/:id/save", requireIdentity(), handler.Unsave)
}

// Run blocks until the server is shut down.
func (s *Server) Run() error {
	log.Infof("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("http server stopped")
	return nil
}
