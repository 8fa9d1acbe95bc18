package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/one-dragon/onedragon-agent/pkg/agent"
	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/engine"
	"github.com/one-dragon/onedragon-agent/pkg/mcp"
	"github.com/one-dragon/onedragon-agent/pkg/model"
	"github.com/one-dragon/onedragon-agent/pkg/session"
	"github.com/one-dragon/onedragon-agent/pkg/storage"
	"github.com/one-dragon/onedragon-agent/pkg/tool"
)

// Context is the root object of the runtime. Start constructs the engine
// services, config stores and managers in dependency order; Stop tears
// them down in reverse. Accessors return nil outside the started window.
type Context struct {
	cfg     config.Config
	runners engine.RunnerFactory

	started bool
	db      *sql.DB

	services     *engine.Services
	tools        *tool.Manager
	mcps         *mcp.Manager
	models       *model.Manager
	agentConfigs *agent.ConfigManager
	agents       *agent.Manager
	sessions     *session.Manager
}

// NewContext creates a stopped context. runners supplies the engine
// runner implementation; pass engine.NewEchoRunnerFactory for a loopback
// development runtime.
func NewContext(cfg config.Config, runners engine.RunnerFactory) *Context {
	return &Context{cfg: cfg, runners: runners}
}

// Start brings up the runtime. Calling Start on an already started
// context fails with ErrInvalidState.
func (c *Context) Start(ctx context.Context) error {
	if c.started {
		return fmt.Errorf("context already started: %w", config.ErrInvalidState)
	}

	sessionStore := engine.NewInMemorySessionStore()
	runners := c.runners
	if runners == nil {
		runners = engine.NewEchoRunnerFactory(sessionStore)
	}
	c.services = &engine.Services{
		Sessions:  sessionStore,
		Artifacts: engine.NewInMemoryArtifactStore(),
		Memory:    engine.NewInMemoryMemoryStore(),
		Runners:   runners,
	}

	modelStore, agentStore, mcpStore, err := c.openStores(ctx)
	if err != nil {
		c.release()
		return err
	}

	c.tools = tool.NewManager()
	c.mcps = mcp.NewManager(mcpStore)
	c.models = model.NewManager(modelStore, c.cfg)
	c.agentConfigs = agent.NewConfigManager(agentStore, c.models, c.mcps)
	c.agents = agent.NewManager(c.services, c.tools, c.mcps, c.models, c.agentConfigs)
	c.sessions = session.NewManager(c.services, c.agents)

	if c.cfg.BootstrapFile != "" {
		if err := c.applyBootstrap(ctx, c.cfg.BootstrapFile); err != nil {
			c.release()
			return fmt.Errorf("failed to apply bootstrap file: %w", err)
		}
	}

	c.started = true
	slog.Info("Runtime context started", "storage", string(c.cfg.Storage),
		"default_llm", c.cfg.HasDefaultLLM())
	return nil
}

func (c *Context) openStores(ctx context.Context) (storage.Store[model.Config], storage.Store[agent.Config], storage.Store[mcp.Config], error) {
	switch c.cfg.Storage {
	case config.StorageMemory, "":
		return storage.NewMemoryStore[model.Config](),
			storage.NewMemoryStore[agent.Config](),
			storage.NewMemoryStore[mcp.Config](), nil
	case config.StorageSQL:
		db, err := storage.OpenDB(ctx, c.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open config database: %w", err)
		}
		c.db = db
		return storage.NewSQLStore[model.Config](db, "model_configs"),
			storage.NewSQLStore[agent.Config](db, "agent_configs"),
			storage.NewSQLStore[mcp.Config](db, "mcp_configs"), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage %q: %w", c.cfg.Storage, config.ErrValidation)
	}
}

// Stop drains every session, releases the managers and closes the
// database. Stopping a stopped context is a no-op.
func (c *Context) Stop(ctx context.Context) {
	if !c.started {
		return
	}
	c.sessions.Shutdown(ctx)
	c.release()
	c.started = false
	slog.Info("Runtime context stopped")
}

// release drops the manager references and closes the database.
func (c *Context) release() {
	c.sessions = nil
	c.agents = nil
	c.agentConfigs = nil
	c.models = nil
	c.mcps = nil
	c.tools = nil
	c.services = nil
	c.closeDB()
}

func (c *Context) closeDB() {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		slog.Warn("Failed to close config database", "error", err)
	}
	c.db = nil
}

// Engine returns the engine service facade, nil when not started.
func (c *Context) Engine() *engine.Services { return c.services }

// Tools returns the tool manager, nil when not started.
func (c *Context) Tools() *tool.Manager { return c.tools }

// Mcps returns the MCP config manager, nil when not started.
func (c *Context) Mcps() *mcp.Manager { return c.mcps }

// Models returns the model config manager, nil when not started.
func (c *Context) Models() *model.Manager { return c.models }

// AgentConfigs returns the agent config manager, nil when not started.
func (c *Context) AgentConfigs() *agent.ConfigManager { return c.agentConfigs }

// Agents returns the agent factory, nil when not started.
func (c *Context) Agents() *agent.Manager { return c.agents }

// Sessions returns the session manager, nil when not started.
func (c *Context) Sessions() *session.Manager { return c.sessions }
