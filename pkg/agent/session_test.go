package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arielhakim/voyago/pkg/errorsx"
	"github.com/arielhakim/voyago/pkg/llm"
	mockllm "github.com/arielhakim/voyago/pkg/providers/mock"
	"github.com/arielhakim/voyago/pkg/tools"
)

func destinationRegistry(t *testing.T) (*tools.Registry, *int) {
	t.Helper()
	invocations := 0
	reg := tools.NewRegistry()
	err := reg.Register(tools.Descriptor{
		Name:        "get_random_destination",
		Description: "Get a random vacation destination.",
		Handler: func(map[string]any) (string, error) {
			invocations++
			return "Paris, France", nil
		},
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	return reg, &invocations
}

func TestRunReturnsTextWithoutToolCalls(t *testing.T) {
	reg, invocations := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{ResponseText: "Just pack light."})
	sess := New(adapter, reg, Config{})

	out, err := sess.Run(context.Background(), "Any advice?")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out != "Just pack light." {
		t.Fatalf("unexpected answer: %q", out)
	}
	if *invocations != 0 {
		t.Fatalf("expected zero tool invocations, got %d", *invocations)
	}
	if adapter.Calls() != 1 {
		t.Fatalf("expected one round trip, got %d", adapter.Calls())
	}
	if sess.State() != StateDone {
		t.Fatalf("expected done state, got %s", sess.State())
	}
}

func TestRunDayTripScenario(t *testing.T) {
	reg, invocations := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{
		Script: []llm.Response{
			{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "get_random_destination", Arguments: map[string]any{}}}},
			{Text: "Here is your Paris day trip: croissants, the Seine, sunset at the Eiffel Tower."},
		},
	})
	sess := New(adapter, reg, Config{Name: "travel"})

	out, err := sess.Run(context.Background(), "Plan me a day trip")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out != "Here is your Paris day trip: croissants, the Seine, sunset at the Eiffel Tower." {
		t.Fatalf("unexpected answer: %q", out)
	}
	if *invocations != 1 {
		t.Fatalf("expected exactly one tool invocation, got %d", *invocations)
	}
	if adapter.Calls() != 2 {
		t.Fatalf("expected two round trips, got %d", adapter.Calls())
	}

	msgs := sess.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0]["role"] != "user" || msgs[1]["role"] != "assistant" || msgs[2]["role"] != "tool" || msgs[3]["role"] != "assistant" {
		t.Fatalf("unexpected roles: %v %v %v %v", msgs[0]["role"], msgs[1]["role"], msgs[2]["role"], msgs[3]["role"])
	}
	if msgs[2]["tool_call_id"] != "call-1" {
		t.Fatalf("expected tool result bound to call-1, got %v", msgs[2]["tool_call_id"])
	}
	if msgs[2]["content"] != "Paris, France" {
		t.Fatalf("expected tool result in conversation, got %v", msgs[2]["content"])
	}

	// The second round trip must carry the tool result back to the model.
	last := adapter.LastContext()
	found := false
	for _, m := range last.Messages {
		if m["role"] == "tool" && m["content"] == "Paris, France" {
			found = true
		}
	}
	if !found {
		t.Fatalf("second round trip missing tool result: %+v", last.Messages)
	}
}

func TestRunToolLoopExceeded(t *testing.T) {
	reg, _ := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{
		ToolCalls: []llm.ToolCall{{ID: "call-x", Name: "get_random_destination"}},
	})
	sess := New(adapter, reg, Config{MaxRounds: 3})

	_, err := sess.Run(context.Background(), "Plan me a day trip")
	if !errors.Is(err, ErrToolLoopExceeded) {
		t.Fatalf("expected ErrToolLoopExceeded, got %v", err)
	}
	if !errorsx.HasReason(err, errorsx.ReasonToolLoopExceeded) {
		t.Fatalf("expected tool_loop_exceeded reason, got %s", errorsx.Reason(err))
	}
	if adapter.Calls() != 3 {
		t.Fatalf("expected exactly 3 round trips, got %d", adapter.Calls())
	}
}

func TestRunUnknownToolIsRecoverable(t *testing.T) {
	reg, invocations := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{
		Script: []llm.Response{
			{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "get_weather"}}},
			{ToolCalls: []llm.ToolCall{{ID: "call-2", Name: "get_random_destination"}}},
			{Text: "final answer"},
		},
	})
	sess := New(adapter, reg, Config{})

	out, err := sess.Run(context.Background(), "Plan something")
	if err != nil {
		t.Fatalf("expected session to recover, got %v", err)
	}
	if out != "final answer" {
		t.Fatalf("unexpected answer: %q", out)
	}
	if *invocations != 1 {
		t.Fatalf("expected one successful invocation, got %d", *invocations)
	}

	msgs := sess.Messages()
	var sawToolError bool
	for _, m := range msgs {
		if m["role"] == "tool" {
			if content, _ := m["content"].(string); strings.HasPrefix(content, "tool error:") {
				sawToolError = true
			}
		}
	}
	if !sawToolError {
		t.Fatalf("expected a tool error message in the conversation: %+v", msgs)
	}
}

func TestRunAdapterErrorPropagatesAndRollsBack(t *testing.T) {
	reg, _ := destinationRegistry(t)
	cause := errors.New("503 from upstream")
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{Err: cause})
	sess := New(adapter, reg, Config{})

	_, err := sess.Run(context.Background(), "Plan me a day trip")
	if !errors.Is(err, cause) {
		t.Fatalf("expected upstream error in chain, got %v", err)
	}
	if len(sess.Messages()) != 0 {
		t.Fatalf("expected user message rolled back, got %+v", sess.Messages())
	}
}

func TestInstructionsPrependSystemMessage(t *testing.T) {
	reg, _ := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{ResponseText: "ok"})
	sess := New(adapter, reg, Config{Instructions: "You are a helpful travel planner."})

	if _, err := sess.Run(context.Background(), "hello"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	msgs := adapter.LastContext().Messages
	if len(msgs) == 0 || msgs[0]["role"] != "system" {
		t.Fatalf("expected leading system message, got %+v", msgs)
	}
	if len(adapter.LastContext().Tools) != 1 {
		t.Fatalf("expected registry tools advertised, got %d", len(adapter.LastContext().Tools))
	}
}
