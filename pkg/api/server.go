// Package api exposes the runtime over HTTP: session lifecycle, config
// management, and message streaming via server-sent events.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/one-dragon/onedragon-agent/pkg/runtime"
)

// Server is the HTTP front of a started runtime context.
type Server struct {
	rt     *runtime.Context
	router *gin.Engine
}

// NewServer builds a server with its routes registered.
func NewServer(rt *runtime.Context) *Server {
	s := &Server{rt: rt}
	s.router = s.buildRouter()
	return s
}

// Router returns the configured gin engine, usable directly in tests.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", s.CreateSession)
		v1.GET("/sessions", s.ListSessions)
		v1.GET("/sessions/:id", s.GetSession)
		v1.DELETE("/sessions/:id", s.DeleteSession)
		v1.POST("/sessions/:id/messages", s.PostMessage)

		v1.POST("/models", s.CreateModelConfig)
		v1.GET("/models", s.ListModelConfigs)
		v1.PUT("/models/:id", s.UpdateModelConfig)
		v1.DELETE("/models/:id", s.DeleteModelConfig)

		v1.POST("/agents", s.CreateAgentConfig)
		v1.GET("/agents", s.ListAgentConfigs)
		v1.GET("/agents/:name", s.GetAgentConfig)
		v1.PUT("/agents/:name", s.UpdateAgentConfig)
		v1.DELETE("/agents/:name", s.DeleteAgentConfig)

		v1.POST("/mcp-servers", s.CreateMcpConfig)
		v1.GET("/mcp-servers", s.ListMcpConfigs)
		v1.PUT("/mcp-servers/:id", s.UpdateMcpConfig)
		v1.DELETE("/mcp-servers/:id", s.DeleteMcpConfig)
	}

	return router
}

// Health handles GET /health.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
