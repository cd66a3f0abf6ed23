package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arielhakim/voyago/pkg/errorsx"
	"github.com/arielhakim/voyago/pkg/llm"
	"github.com/arielhakim/voyago/pkg/metrics"
	"github.com/arielhakim/voyago/pkg/redact"
	"github.com/arielhakim/voyago/pkg/tools"
)

// State tracks where a session is inside one Run call.
type State string

const (
	StateAwaitingModel  State = "awaiting_model"
	StateExecutingTools State = "executing_tools"
	StateDone           State = "done"
)

const DefaultMaxRounds = 5

// ErrToolLoopExceeded is returned when the model keeps requesting tools
// past the configured round-trip bound.
var ErrToolLoopExceeded = errors.New("tool call round trips exceeded")

type Config struct {
	Name         string
	Instructions string
	MaxRounds    int
}

// Session drives one conversation against an LLM adapter, executing the
// tool calls the model requests between round trips. A session owns its
// message history exclusively; use one session per caller. The registry
// may be shared, it is read-only after construction.
type Session struct {
	id       string
	adapter  llm.LLMAdapter
	registry *tools.Registry
	cfg      Config
	messages []map[string]any
	state    State
	obs      metrics.Observer
}

func New(adapter llm.LLMAdapter, registry *tools.Registry, cfg Config) *Session {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	s := &Session{
		id:       uuid.NewString(),
		adapter:  adapter,
		registry: registry,
		cfg:      cfg,
		state:    StateAwaitingModel,
	}
	if cfg.Instructions != "" {
		s.messages = append(s.messages, map[string]any{"role": "system", "content": cfg.Instructions})
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

func (s *Session) SetObserver(obs metrics.Observer) { s.obs = obs }

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []map[string]any {
	return cloneMessages(s.messages)
}

// Run sends prompt to the model and loops over requested tool calls until
// the model answers with text. Adapter failures propagate unchanged in the
// cause chain; malformed tool requests are fed back into the conversation
// so the model can correct itself.
func (s *Session) Run(ctx context.Context, prompt string) (string, error) {
	s.messages = append(s.messages, map[string]any{"role": "user", "content": prompt})
	slog.Info("session_prompt", "session_id", s.id, "agent", s.cfg.Name, "text", redact.Text(prompt))

	for round := 1; round <= s.cfg.MaxRounds; round++ {
		s.state = StateAwaitingModel
		start := time.Now()
		resp, err := s.adapter.Generate(ctx, llm.Context{
			Messages: cloneMessages(s.messages),
			Tools:    s.registry.Tools(),
		})
		if err != nil {
			err = errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
			slog.Error("session_generate_error", "session_id", s.id, "round", round,
				"reason_code", string(errorsx.Reason(err)), "error", err)
			if round == 1 {
				s.popLastMessage() // Rollback history to avoid stuck state
			}
			return "", err
		}
		metrics.LLMRoundTrip(s.obs, s.adapter.Name(), time.Since(start), resp.Usage.TotalTokens)

		if len(resp.ToolCalls) == 0 {
			s.messages = append(s.messages, map[string]any{"role": "assistant", "content": resp.Text})
			s.state = StateDone
			slog.Info("session_done", "session_id", s.id, "rounds", round)
			return resp.Text, nil
		}

		s.state = StateExecutingTools
		s.appendAssistantToolCalls(resp.ToolCalls)
		for _, call := range resp.ToolCalls {
			s.executeTool(call)
		}
	}

	return "", errorsx.Wrap(
		fmt.Errorf("%w: still requesting tools after %d rounds", ErrToolLoopExceeded, s.cfg.MaxRounds),
		errorsx.ReasonToolLoopExceeded)
}

func (s *Session) appendAssistantToolCalls(calls []llm.ToolCall) {
	wire := make([]map[string]any, 0, len(calls))
	for _, call := range calls {
		wire = append(wire, map[string]any{
			"id":   callID(call),
			"type": "function",
			"function": map[string]any{
				"name":      call.Name,
				"arguments": call.Arguments,
			},
		})
	}
	s.messages = append(s.messages, map[string]any{
		"role":       "assistant",
		"tool_calls": wire,
	})
}

func (s *Session) executeTool(call llm.ToolCall) {
	start := time.Now()
	res, err := s.registry.Invoke(call.Name, call.Arguments)
	content := res.Content
	status := "ok"
	switch {
	case err != nil:
		// Unknown tool or bad arguments: report back into the
		// conversation, the model may retry with a corrected call.
		content = "tool error: " + err.Error()
		status = string(errorsx.Reason(err))
		slog.Warn("session_tool_rejected", "session_id", s.id, "tool", call.Name,
			"reason_code", status)
	case res.IsError:
		content = "tool error: " + res.Content
		status = "tool_failed"
		slog.Warn("session_tool_failed", "session_id", s.id, "tool", call.Name)
	default:
		slog.Info("session_tool_done", "session_id", s.id, "tool", call.Name)
	}
	metrics.ToolInvocation(s.obs, call.Name, status, time.Since(start))
	s.messages = append(s.messages, map[string]any{
		"role":         "tool",
		"tool_call_id": callID(call),
		"content":      content,
	})
}

func callID(call llm.ToolCall) string {
	if call.ID != "" {
		return call.ID
	}
	return uuid.NewString()
}

func (s *Session) popLastMessage() {
	if len(s.messages) > 0 {
		s.messages = s.messages[:len(s.messages)-1]
	}
}

func cloneMessages(in []map[string]any) []map[string]any {
	out := make([]map[string]any, len(in))
	copy(out, in)
	return out
}
