// Package web serves the task API over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/tasks"
)

// Server is the dueday HTTP API.
type Server struct {
	svc    *tasks.Service
	router *gin.Engine
}

// NewServer registers every route on a fresh gin engine.
func NewServer(svc *tasks.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLog())

	s := &Server{
		svc:    svc,
		router: router,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)

	api := router.Group("/api")
	{
		api.POST("/nlp/parse-task-details", s.handleParseTaskDetails)

		api.GET("/todos", s.handleListTodos)
		api.POST("/todos", s.handleCreateTodo)
		api.GET("/todos/:id", s.handleGetTodo)
		api.PUT("/todos/:id", s.handleUpdateTodo)
		api.DELETE("/todos/:id", s.handleDeleteTodo)
		api.POST("/todos/:id/complete", s.handleCompleteTodo)

		api.GET("/calendar", s.handleCalendar)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains for up to five seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("http server stopped")
	return nil
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start).Round(time.Microsecond).String(),
		)
	}
}
