package redact

import "testing"

func TestTextRedactsWhenEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	out := Text("reach me at traveler@example.com or +62 812 3456 7890")
	if out == "reach me at traveler@example.com or +62 812 3456 7890" {
		t.Fatalf("expected redaction, got %q", out)
	}
	if !Enabled() {
		t.Fatalf("expected enabled")
	}
}

func TestTextPassthroughWhenDisabled(t *testing.T) {
	SetEnabled(false)
	in := "traveler@example.com"
	if out := Text(in); out != in {
		t.Fatalf("expected passthrough, got %q", out)
	}
}
