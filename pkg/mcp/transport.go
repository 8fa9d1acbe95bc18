package mcp

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// createTransport creates an MCP SDK transport from config.
func createTransport(cfg Config) (mcpsdk.Transport, error) {
	switch cfg.ServerType {
	case ServerTypeStdio:
		return createStdioTransport(cfg)
	case ServerTypeHTTP:
		return createHTTPTransport(cfg)
	case ServerTypeSSE:
		return createSSETransport(cfg)
	default:
		return nil, fmt.Errorf("unsupported server type: %s", cfg.ServerType)
	}
}

func createStdioTransport(cfg Config) (*mcpsdk.CommandTransport, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("stdio transport requires command")
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)

	// Inherit parent environment plus config overrides.
	env := os.Environ()
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

func createHTTPTransport(cfg Config) (*mcpsdk.StreamableClientTransport, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("HTTP transport requires url")
	}
	transport := &mcpsdk.StreamableClientTransport{
		Endpoint: cfg.URL,
	}
	if len(cfg.Headers) > 0 || cfg.TimeoutSeconds > 0 {
		transport.HTTPClient = buildHTTPClient(cfg)
	}
	return transport, nil
}

func createSSETransport(cfg Config) (*mcpsdk.SSEClientTransport, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("SSE transport requires url")
	}
	transport := &mcpsdk.SSEClientTransport{
		Endpoint: cfg.URL,
	}
	if len(cfg.Headers) > 0 || cfg.TimeoutSeconds > 0 {
		transport.HTTPClient = buildHTTPClient(cfg)
	}
	return transport, nil
}

// buildHTTPClient creates an http.Client with header and timeout settings.
func buildHTTPClient(cfg Config) *http.Client {
	client := &http.Client{}

	if len(cfg.Headers) > 0 {
		client.Transport = &headerTransport{
			base:    http.DefaultTransport,
			headers: cfg.Headers,
		}
	}

	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return client
}

// headerTransport wraps an http.RoundTripper to add configured headers.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
