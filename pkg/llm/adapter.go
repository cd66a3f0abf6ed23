package llm

import "context"

// Tool describes a locally executable function the model may request.
type Tool struct {
	Name        string
	Description string
	Schema      any
}

// ToolCall is a structured request from the model to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Context carries the full conversation plus the advertised tools for
// one completion round trip.
type Context struct {
	Messages []map[string]any
	Tools    []Tool
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
	ToolCalls    []ToolCall
}

// LLMAdapter is a vendor-agnostic chat completions client.
type LLMAdapter interface {
	Generate(ctx context.Context, input Context) (Response, error)
	MapTools(tools []Tool) (providerTools any, err error)
	ToProviderFormat(ctx Context) (any, error)
	FromProviderFormat(raw any) (Response, error)
	Name() string
}
