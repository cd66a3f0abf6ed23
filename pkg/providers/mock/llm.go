package mock

import (
	"context"

	"github.com/arielhakim/voyago/pkg/llm"
)

// LLMAdapter replays scripted responses, one per Generate call. When the
// script runs out (or is empty) it falls back to the fixed config response.
type LLMAdapter struct {
	cfg   LLMConfig
	calls int
	seen  []llm.Context
}

type LLMConfig struct {
	ResponseText string
	ToolCalls    []llm.ToolCall
	Script       []llm.Response
	Err          error
}

func NewLLMAdapter(cfg LLMConfig) *LLMAdapter {
	if cfg.ResponseText == "" {
		cfg.ResponseText = "mock response"
	}
	return &LLMAdapter{cfg: cfg}
}

func (a *LLMAdapter) Name() string { return "mock_llm" }

func (a *LLMAdapter) Generate(ctx context.Context, input llm.Context) (llm.Response, error) {
	a.seen = append(a.seen, input)
	a.calls++
	if a.cfg.Err != nil {
		return llm.Response{}, a.cfg.Err
	}
	if n := len(a.cfg.Script); n > 0 {
		idx := a.calls - 1
		if idx >= n {
			idx = n - 1
		}
		return a.cfg.Script[idx], nil
	}
	return llm.Response{
		Text:      a.cfg.ResponseText,
		ToolCalls: a.cfg.ToolCalls,
	}, nil
}

// Calls reports how many Generate round trips were made.
func (a *LLMAdapter) Calls() int { return a.calls }

// LastContext returns the context of the most recent Generate call.
func (a *LLMAdapter) LastContext() llm.Context {
	if len(a.seen) == 0 {
		return llm.Context{}
	}
	return a.seen[len(a.seen)-1]
}

func (a *LLMAdapter) MapTools(tools []llm.Tool) (any, error) {
	return nil, nil
}

func (a *LLMAdapter) ToProviderFormat(ctx llm.Context) (any, error) {
	return nil, nil
}

func (a *LLMAdapter) FromProviderFormat(raw any) (llm.Response, error) {
	return llm.Response{Text: a.cfg.ResponseText}, nil
}
