package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-dragon/onedragon-agent/pkg/agent"
	"github.com/one-dragon/onedragon-agent/pkg/mcp"
	"github.com/one-dragon/onedragon-agent/pkg/model"
)

func requireAppName(c *gin.Context) (string, bool) {
	appName := c.Query("app_name")
	if appName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_name is required"})
		return "", false
	}
	return appName, true
}

// CreateModelConfig handles POST /api/v1/models.
func (s *Server) CreateModelConfig(c *gin.Context) {
	var cfg model.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.rt.Models().Create(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// ListModelConfigs handles GET /api/v1/models.
func (s *Server) ListModelConfigs(c *gin.Context) {
	configs, err := s.rt.Models().List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": configs})
}

// UpdateModelConfig handles PUT /api/v1/models/:id.
func (s *Server) UpdateModelConfig(c *gin.Context) {
	var cfg model.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.ModelID = c.Param("id")
	if err := s.rt.Models().Update(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteModelConfig handles DELETE /api/v1/models/:id?app_name=.
func (s *Server) DeleteModelConfig(c *gin.Context) {
	appName, ok := requireAppName(c)
	if !ok {
		return
	}
	if err := s.rt.Models().Delete(c.Request.Context(), appName, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAgentConfig handles POST /api/v1/agents.
func (s *Server) CreateAgentConfig(c *gin.Context) {
	var cfg agent.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.rt.AgentConfigs().Create(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// ListAgentConfigs handles GET /api/v1/agents.
func (s *Server) ListAgentConfigs(c *gin.Context) {
	configs, err := s.rt.AgentConfigs().List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": configs})
}

// GetAgentConfig handles GET /api/v1/agents/:name?app_name=.
func (s *Server) GetAgentConfig(c *gin.Context) {
	appName, ok := requireAppName(c)
	if !ok {
		return
	}
	cfg, err := s.rt.AgentConfigs().Get(c.Request.Context(), appName, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent config not found"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateAgentConfig handles PUT /api/v1/agents/:name.
func (s *Server) UpdateAgentConfig(c *gin.Context) {
	var cfg agent.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.AgentName = c.Param("name")
	if err := s.rt.AgentConfigs().Update(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteAgentConfig handles DELETE /api/v1/agents/:name?app_name=.
func (s *Server) DeleteAgentConfig(c *gin.Context) {
	appName, ok := requireAppName(c)
	if !ok {
		return
	}
	if err := s.rt.AgentConfigs().Delete(c.Request.Context(), appName, c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMcpConfig handles POST /api/v1/mcp-servers. Servers registered
// through the API always live in the custom tier.
func (s *Server) CreateMcpConfig(c *gin.Context) {
	var cfg mcp.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.rt.Mcps().RegisterCustom(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// ListMcpConfigs handles GET /api/v1/mcp-servers?app_name=.
func (s *Server) ListMcpConfigs(c *gin.Context) {
	configs, err := s.rt.Mcps().List(c.Request.Context(), c.Query("app_name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mcp_servers": configs})
}

// UpdateMcpConfig handles PUT /api/v1/mcp-servers/:id?app_name=.
func (s *Server) UpdateMcpConfig(c *gin.Context) {
	appName, ok := requireAppName(c)
	if !ok {
		return
	}
	var cfg mcp.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.rt.Mcps().UpdateCustom(c.Request.Context(), appName, c.Param("id"), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteMcpConfig handles DELETE /api/v1/mcp-servers/:id?app_name=.
func (s *Server) DeleteMcpConfig(c *gin.Context) {
	appName, ok := requireAppName(c)
	if !ok {
		return
	}
	if err := s.rt.Mcps().UnregisterCustom(c.Request.Context(), appName, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
