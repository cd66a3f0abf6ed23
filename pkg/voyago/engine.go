package voyago

import (
	"github.com/arielhakim/voyago/pkg/agent"
	"github.com/arielhakim/voyago/pkg/llm"
	"github.com/arielhakim/voyago/pkg/metrics"
	"github.com/arielhakim/voyago/pkg/providers/amadeus"
	"github.com/arielhakim/voyago/pkg/redact"
	"github.com/arielhakim/voyago/pkg/tools"
	"github.com/arielhakim/voyago/pkg/travel"
)

// Engine holds the shared, immutable pieces: one adapter, one tool
// registry. Sessions are created per caller and own their own history.
type Engine struct {
	cfg      Config
	adapter  llm.LLMAdapter
	registry *tools.Registry
	obs      metrics.Observer
}

type EngineOptions struct {
	Config    Config
	Providers *ProviderRegistry
	Observer  metrics.Observer
	// Registry overrides the default travel tool set when non-nil.
	Registry *tools.Registry
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	redact.SetEnabled(cfg.Privacy.RedactPII)

	providers := opts.Providers
	if providers == nil {
		providers = NewProviderRegistry()
	}
	adapter, err := providers.BuildLLM(cfg.LLM.Provider, cfg.LLM.Settings)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		travelOpts := travel.Options{}
		if cfg.AmadeusEnabled() {
			travelOpts.Amadeus = amadeus.NewClient(cfg.Amadeus.APIKey, cfg.Amadeus.APISecret)
		}
		registry, err = travel.NewRegistry(travelOpts)
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		cfg:      cfg,
		adapter:  adapter,
		registry: registry,
		obs:      opts.Observer,
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Registry() *tools.Registry { return e.registry }

// NewSession creates an independent planning session sharing the engine's
// adapter and tool registry.
func (e *Engine) NewSession() *agent.Session {
	sess := agent.New(e.adapter, e.registry, agent.Config{
		Name:         e.cfg.Agent.Name,
		Instructions: e.cfg.Agent.Instructions,
		MaxRounds:    e.cfg.Agent.MaxRounds,
	})
	if e.obs != nil {
		sess.SetObserver(e.obs)
	}
	return sess
}
