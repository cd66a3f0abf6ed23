package metrics

import "time"

// MetricsEvent is a single observation (LLM round trip, tool invocation).
type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// LLMRoundTrip records one completion round trip.
func LLMRoundTrip(obs Observer, provider string, latency time.Duration, totalTokens int) {
	if obs == nil {
		return
	}
	obs.RecordEvent(MetricsEvent{
		Name:  "llm_round_trip",
		Time:  time.Now(),
		Value: float64(latency.Milliseconds()),
		Tags:  map[string]string{"provider": provider},
		Fields: map[string]any{
			"total_tokens": totalTokens,
		},
	})
}

// ToolInvocation records one local tool execution.
func ToolInvocation(obs Observer, tool, status string, latency time.Duration) {
	if obs == nil {
		return
	}
	obs.RecordEvent(MetricsEvent{
		Name:  "tool_invocation",
		Time:  time.Now(),
		Value: float64(latency.Milliseconds()),
		Tags:  map[string]string{"tool": tool, "status": status},
	})
}
