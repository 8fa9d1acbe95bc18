package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransportStdio(t *testing.T) {
	cfg := stdioConfig("app", "srv")
	cfg.Args = []string{"--verbose"}
	cfg.Env = map[string]string{"MCP_TOKEN": "x"}

	transport, err := createStdioTransport(cfg)
	require.NoError(t, err)
	assert.Contains(t, transport.Command.Args, "--verbose")
	assert.Contains(t, transport.Command.Env, "MCP_TOKEN=x")

	cfg.Command = ""
	_, err = createStdioTransport(cfg)
	assert.Error(t, err)
}

func TestCreateTransportHTTPAndSSE(t *testing.T) {
	cfg := stdioConfig("app", "srv")
	cfg.ServerType = ServerTypeHTTP
	cfg.URL = "https://mcp.example.com/mcp"

	httpTransport, err := createHTTPTransport(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.URL, httpTransport.Endpoint)
	// No headers or timeout configured: the default client is used.
	assert.Nil(t, httpTransport.HTTPClient)

	cfg.ServerType = ServerTypeSSE
	cfg.TimeoutSeconds = 30
	sseTransport, err := createSSETransport(cfg)
	require.NoError(t, err)
	require.NotNil(t, sseTransport.HTTPClient)

	cfg.URL = ""
	_, err = createSSETransport(cfg)
	assert.Error(t, err)
	_, err = createHTTPTransport(cfg)
	assert.Error(t, err)
}

func TestCreateTransportUnknownType(t *testing.T) {
	cfg := stdioConfig("app", "srv")
	cfg.ServerType = "bogus"

	_, err := createTransport(cfg)
	assert.Error(t, err)
}

func TestHeaderTransportAddsHeaders(t *testing.T) {
	var got http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer backend.Close()

	cfg := stdioConfig("app", "srv")
	cfg.Headers = map[string]string{"Authorization": "Bearer token"}
	client := buildHTTPClient(cfg)

	resp, err := client.Get(backend.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer token", got.Get("Authorization"))
}
