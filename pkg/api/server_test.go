package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/runtime"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rt := runtime.NewContext(config.Config{
		Storage:           config.StorageMemory,
		DefaultLLMBaseURL: "https://llm.example.com",
		DefaultLLMAPIKey:  "secret",
		DefaultLLMModel:   "test-model",
	}, nil)
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background()) })

	return NewServer(rt)
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSessionLifecycle(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{
		AppName: "app", UserID: "user", SessionID: "s1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "s1", created.SessionID)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/sessions/s1?app_name=app&user_id=user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/sessions?app_name=app&user_id=user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "s1")

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/sessions/s1?app_name=app&user_id=user", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/sessions/s1?app_name=app&user_id=user", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionMissingFields(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/sessions", map[string]string{"app_name": "app"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostMessageStreamsEvents(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{
		AppName: "app", UserID: "user", SessionID: "s1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/sessions/s1/messages", PostMessageRequest{
		AppName: "app", UserID: "user", Message: "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestPostMessageUnknownSession(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/sessions/ghost/messages", PostMessageRequest{
		AppName: "app", UserID: "user", Message: "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelConfigEndpoints(t *testing.T) {
	server := newTestServer(t)

	body := map[string]string{
		"app_name": "app", "model_id": "fast",
		"base_url": "https://llm.example.com", "api_key": "secret", "model": "fast-model",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/models", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate create conflicts.
	rec = doJSON(t, server, http.MethodPost, "/api/v1/models", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The reserved id is off limits.
	reserved := map[string]string{
		"app_name": "app", "model_id": config.DefaultModelConfigID,
		"base_url": "https://llm.example.com", "api_key": "secret", "model": "m",
	}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/models", reserved)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/models", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fast-model")

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/models/fast?app_name=app", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAgentConfigEndpoints(t *testing.T) {
	server := newTestServer(t)

	body := map[string]any{
		"app_name": "app", "agent_name": "helper", "agent_type": "llm_agent",
		"model_config_id": config.DefaultModelConfigID,
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/agents", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/agents/helper?app_name=app", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unresolvable model reference is a client error.
	bad := map[string]any{
		"app_name": "app", "agent_name": "broken", "agent_type": "llm_agent",
		"model_config_id": "missing",
	}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/agents", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMcpConfigEndpoints(t *testing.T) {
	server := newTestServer(t)

	body := map[string]any{
		"mcp_id": "files", "app_name": "app", "name": "files",
		"description": "file server", "server_type": "stdio", "command": "mcp-files",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/mcp-servers", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/mcp-servers?app_name=app", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app:files")

	// Missing transport parameters are rejected.
	invalid := map[string]any{
		"mcp_id": "bad", "app_name": "app", "name": "bad",
		"description": "no url", "server_type": "sse",
	}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/mcp-servers", invalid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/mcp-servers/files?app_name=app", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
