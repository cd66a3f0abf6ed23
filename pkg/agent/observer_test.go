package agent

import (
	"context"
	"testing"

	"github.com/arielhakim/voyago/pkg/llm"
	"github.com/arielhakim/voyago/pkg/metrics"
	mockllm "github.com/arielhakim/voyago/pkg/providers/mock"
)

func TestSessionRecordsMetrics(t *testing.T) {
	reg, _ := destinationRegistry(t)
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{
		Script: []llm.Response{
			{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "get_random_destination"}}},
			{Text: "done", Usage: llm.Usage{TotalTokens: 42}},
		},
	})
	obs := metrics.NewMemoryObserver()
	sess := New(adapter, reg, Config{})
	sess.SetObserver(obs)

	if _, err := sess.Run(context.Background(), "Plan me a day trip"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	events := obs.Events()
	var roundTrips, toolRuns int
	var sawTokens bool
	for _, ev := range events {
		switch ev.Name {
		case "llm_round_trip":
			roundTrips++
			if ev.Fields["total_tokens"] == 42 {
				sawTokens = true
			}
			if ev.Tags["provider"] != "mock_llm" {
				t.Fatalf("unexpected provider tag: %v", ev.Tags)
			}
		case "tool_invocation":
			toolRuns++
			if ev.Tags["tool"] != "get_random_destination" || ev.Tags["status"] != "ok" {
				t.Fatalf("unexpected tool tags: %v", ev.Tags)
			}
		}
	}
	if roundTrips != 2 {
		t.Fatalf("expected 2 round trip events, got %d", roundTrips)
	}
	if toolRuns != 1 {
		t.Fatalf("expected 1 tool event, got %d", toolRuns)
	}
	if !sawTokens {
		t.Fatalf("expected token usage recorded: %+v", events)
	}
}
