package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-dragon/onedragon-agent/pkg/engine"
	"github.com/one-dragon/onedragon-agent/pkg/session"
)

// CreateSessionRequest is the body for POST /api/v1/sessions.
type CreateSessionRequest struct {
	AppName   string `json:"app_name" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	SessionID string `json:"session_id"`
}

// SessionResponse describes one session.
type SessionResponse struct {
	AppName   string `json:"app_name"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func sessionResponse(s *session.Session) SessionResponse {
	key := s.Key()
	return SessionResponse{AppName: key.AppName, UserID: key.UserID, SessionID: key.SessionID}
}

// CreateSession handles POST /api/v1/sessions.
func (s *Server) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.rt.Sessions().CreateSession(c.Request.Context(), req.AppName, req.UserID, req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(sess))
}

// ListSessions handles GET /api/v1/sessions?app_name=&user_id=.
func (s *Server) ListSessions(c *gin.Context) {
	appName := c.Query("app_name")
	userID := c.Query("user_id")
	if appName == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_name and user_id are required"})
		return
	}

	sessions := s.rt.Sessions().ListSessions(c.Request.Context(), appName, userID)
	out := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse(sess))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// GetSession handles GET /api/v1/sessions/:id?app_name=&user_id=.
func (s *Server) GetSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	appName := c.Query("app_name")
	userID := c.Query("user_id")
	if appName == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_name and user_id are required"})
		return nil, false
	}

	sess, err := s.rt.Sessions().GetSession(c.Request.Context(), appName, userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// DeleteSession handles DELETE /api/v1/sessions/:id?app_name=&user_id=.
func (s *Server) DeleteSession(c *gin.Context) {
	appName := c.Query("app_name")
	userID := c.Query("user_id")
	if appName == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_name and user_id are required"})
		return
	}

	if err := s.rt.Sessions().DeleteSession(c.Request.Context(), appName, userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostMessageRequest is the body for POST /api/v1/sessions/:id/messages.
type PostMessageRequest struct {
	AppName   string `json:"app_name" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	AgentName string `json:"agent_name"`
}

// PostMessage handles POST /api/v1/sessions/:id/messages, streaming the
// agent's events back as SSE.
func (s *Server) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.rt.Sessions().GetSession(c.Request.Context(), req.AppName, req.UserID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	events, err := sess.ProcessMessage(c.Request.Context(), req.Message, req.AgentName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	// Client disconnects cancel the request context, which stops the
	// executor and closes the stream.
	for event := range events {
		c.SSEvent("event", eventResponse(event))
		c.Writer.Flush()
	}
}

// EventResponse is the SSE payload for one agent event.
type EventResponse struct {
	ID           string `json:"id,omitempty"`
	Author       string `json:"author"`
	Text         string `json:"text,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Escalate     bool   `json:"escalate,omitempty"`
}

func eventResponse(e *engine.Event) EventResponse {
	out := EventResponse{
		ID:           e.ID,
		Author:       e.Author,
		ErrorCode:    e.ErrorCode,
		ErrorMessage: e.ErrorMessage,
	}
	if e.Content != nil {
		out.Text = e.Content.Text()
	}
	out.Escalate = e.Actions.Escalate
	return out
}
