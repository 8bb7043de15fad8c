package cli

import (
	"fmt"
	"time"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/llm"
	"github.com/soyeahso/holiday/internal/store"
	"github.com/soyeahso/holiday/internal/tools"
	"github.com/soyeahso/holiday/internal/travel"
)

// modelTimeout bounds a single completion request.
const modelTimeout = 2 * time.Minute

// newLLMRegistry builds the model registry. Tests replace it.
var newLLMRegistry = llm.NewRegistryFromConfig

// newLookups builds the upstream travel client. Tests replace it.
var newLookups = func(cfg *config.Config) tools.Lookups {
	return travel.FromConfig(cfg, log)
}

// app holds the components shared by the serve, chat and mcp commands.
type app struct {
	cfg         config.Config
	tools       *agent.ToolRegistry
	db          *store.DB
	invocations *store.InvocationLog
}

// newApp wires the travel tools and, when enabled, the invocation log.
func newApp(cfg config.Config) (*app, error) {
	a := &app{
		cfg:   cfg,
		tools: tools.NewRegistry(newLookups(&cfg)),
	}

	if cfg.Store.IsEnabled() {
		dbPath := cfg.Store.Path
		if dbPath == "" {
			dbPath = paths.InvocationDB()
		}
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, fmt.Errorf("opening invocation log: %w", err)
		}
		a.db = db
		a.invocations = store.NewInvocationLog(db)
		a.tools.Observe(a.invocations)
		log.Debug().Str("path", dbPath).Msg("recording tool invocations")
	}
	return a, nil
}

// runner builds the chat agent on the configured model.
func (a *app) runner() (*agent.Runner, error) {
	registry, err := newLLMRegistry(a.cfg.Model, modelTimeout, log)
	if err != nil {
		return nil, err
	}
	return agent.NewRunner(agent.RunnerConfig{
		Model:       a.cfg.Model.Model,
		MaxTokens:   a.cfg.Model.MaxTokens,
		Temperature: a.cfg.Model.Temperature,
	}, registry, a.tools, log), nil
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
