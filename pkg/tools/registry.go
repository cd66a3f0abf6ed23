package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arielhakim/voyago/pkg/errorsx"
	"github.com/arielhakim/voyago/pkg/llm"
)

var (
	ErrDuplicateTool    = errors.New("tool already registered")
	ErrUnknownTool      = errors.New("tool not registered")
	ErrInvalidArguments = errors.New("tool arguments invalid")
)

// Param declares one tool parameter. Type is a JSON schema primitive:
// "string", "integer", "number" or "boolean".
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
}

// Handler executes a tool against validated arguments.
type Handler func(args map[string]any) (string, error)

// Descriptor is an immutable tool definition.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// Result is the outcome of one tool invocation.
type Result struct {
	CallID  string
	Content string
	IsError bool
}

// Registry holds tool descriptors in registration order. Register all tools
// during startup; Tools and Invoke are read-only afterwards and safe to
// share across sessions.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

func (r *Registry) Register(d Descriptor) error {
	name := strings.TrimSpace(d.Name)
	if name == "" || d.Handler == nil {
		return errorsx.Wrap(fmt.Errorf("%w: name and handler are required", ErrInvalidArguments), errorsx.ReasonToolArgs)
	}
	if _, exists := r.byName[name]; exists {
		return errorsx.Wrap(fmt.Errorf("%w: %s", ErrDuplicateTool, name), errorsx.ReasonToolDuplicate)
	}
	d.Name = name
	r.byName[name] = d
	r.order = append(r.order, name)
	return nil
}

// Tools returns the descriptors in registration order, in the shape the
// adapters advertise to the model.
func (r *Registry) Tools() []llm.Tool {
	out := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		d := r.byName[name]
		out = append(out, llm.Tool{
			Name:        d.Name,
			Description: d.Description,
			Schema:      schemaFor(d.Params),
		})
	}
	return out
}

// HandleTool satisfies llm.ToolRegistry.
func (r *Registry) HandleTool(name string, args map[string]any) (string, error) {
	res, err := r.Invoke(name, args)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// Invoke validates args against the descriptor's parameter schema and
// calls the handler. The handler's own error is reported in the Result
// (IsError), not as an invocation failure.
func (r *Registry) Invoke(name string, args map[string]any) (Result, error) {
	d, ok := r.byName[name]
	if !ok {
		return Result{}, errorsx.Wrap(fmt.Errorf("%w: %s", ErrUnknownTool, name), errorsx.ReasonToolUnknown)
	}
	if err := validateArgs(d.Params, args); err != nil {
		return Result{}, errorsx.Wrap(fmt.Errorf("%w: %s: %s", ErrInvalidArguments, name, err), errorsx.ReasonToolArgs)
	}
	content, err := d.Handler(args)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}, nil
	}
	return Result{Content: content}, nil
}

func schemaFor(params []Param) map[string]any {
	properties := map[string]any{}
	var required []string
	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func validateArgs(params []Param, args map[string]any) error {
	for _, p := range params {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				return fmt.Errorf("missing required parameter %q", p.Name)
			}
			continue
		}
		if err := checkType(p, v); err != nil {
			return err
		}
	}
	return nil
}

func checkType(p Param, v any) error {
	switch p.Type {
	case "string":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("parameter %q must be a string", p.Name)
		}
		if len(p.Enum) > 0 && !containsFold(p.Enum, s) {
			return fmt.Errorf("parameter %q must be one of %v", p.Name, p.Enum)
		}
	case "integer":
		switch n := v.(type) {
		case int, int32, int64:
		case float64:
			if n != float64(int64(n)) {
				return fmt.Errorf("parameter %q must be an integer", p.Name)
			}
		default:
			return fmt.Errorf("parameter %q must be an integer", p.Name)
		}
	case "number":
		switch v.(type) {
		case int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("parameter %q must be a number", p.Name)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("parameter %q must be a boolean", p.Name)
		}
	default:
		return fmt.Errorf("parameter %q has unsupported type %q", p.Name, p.Type)
	}
	return nil
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
