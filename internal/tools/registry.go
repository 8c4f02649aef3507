package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hostwise-ai/hostwise/internal/observability/metrics"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// Handler executes one tool call. args is the raw JSON argument object
// produced by the model.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Definition describes a tool to the language model.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Registry holds the tool set offered to the model and dispatches calls.
type Registry struct {
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
	order   []string
	tools   map[string]registered
}

type registered struct {
	def     Definition
	handler Handler
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(logger *logging.Logger, m *metrics.ChatMetrics) *Registry {
	return &Registry{
		logger:  logger,
		metrics: m,
		tools:   make(map[string]registered),
	}
}

// Register adds a tool. Registering the same name twice panics; tool sets
// are assembled once at startup.
func (r *Registry) Register(def Definition, h Handler) {
	if def.Name == "" {
		panic("tools: definition needs a name")
	}
	if _, exists := r.tools[def.Name]; exists {
		panic(fmt.Sprintf("tools: duplicate tool %q", def.Name))
	}
	r.tools[def.Name] = registered{def: def, handler: h}
	r.order = append(r.order, def.Name)
}

// Definitions returns tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].def)
	}
	return out
}

// Dispatch runs a tool call and always returns text for the model. Failures
// come back as "Error: ..." strings rather than Go errors so the model can
// relay or recover from them.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) string {
	reg, ok := r.tools[name]
	if !ok {
		r.metrics.ObserveToolInvocation(name, "unknown")
		return fmt.Sprintf("Error: Unknown tool %q.", name)
	}

	out, err := reg.handler(ctx, args)
	if err != nil {
		r.metrics.ObserveToolInvocation(name, "error")
		r.logger.Warn("tool call failed", "tool", name, "error", err)

		var ue *userError
		if errors.As(err, &ue) {
			return "Error: " + ue.msg
		}
		return fmt.Sprintf("Error: An unexpected error occurred. Details: %v", err)
	}
	r.metrics.ObserveToolInvocation(name, "ok")
	return out
}

// userError carries a message safe to show to the guest verbatim.
type userError struct {
	msg   string
	cause error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.cause }

// usererr builds a guest-facing tool error.
func usererr(cause error, format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...), cause: cause}
}
