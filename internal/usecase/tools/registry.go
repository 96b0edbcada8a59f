// Package tools exposes the product finder and catalog lookups as named tools with
// JSON schema parameters, the way an LLM tool-calling loop consumes them.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/logger"
	"github.com/kailas-cloud/review/internal/metrics"
)

// Tool names.
const (
	FindProductByName        = "find_product_by_name"
	GetPopularProducts       = "get_popular_products"
	GetBestRatedProducts     = "get_best_rated_products"
	FindProductByDescription = "find_product_by_description"
	GetProductReviewsDetails = "get_product_reviews_details"
	FindProductsByExample    = "find_products_by_user_requirements_using_example_review"
)

// Invocation statuses for metrics.
const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusInvalid = "invalid"
	statusUnknown = "unknown"
)

// Tool describes one callable capability.
type Tool struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Parameters  jsonschema.Definition `json:"parameters"`

	invoke func(ctx context.Context, args json.RawMessage) (any, error)
	// failure is the error text returned for unexpected failures.
	failure string
}

// errorOutput is the tool-level error object.
type errorOutput struct {
	Error string `json:"error"`
}

// Registry holds the tools in declaration order.
type Registry struct {
	tools  []Tool
	byName map[string]int
}

// New registers the catalog tools backed by the given services.
func New(find Finder, lookups Lookups) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, t := range definitions(find, lookups) {
		r.byName[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r
}

// Tools returns the registered tools in declaration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Invoke runs a tool and returns its JSON output.
// An unknown name returns domain.ErrUnknownTool and undecodable arguments return
// domain.ErrInvalidArguments. Every other failure is reported inside the output
// as {"error": "..."}.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	log := logger.FromContext(ctx).With(zap.String("tool", name))

	t, ok := r.Lookup(name)
	if !ok {
		metrics.ToolInvocationsTotal.WithLabelValues(statusUnknown, statusUnknown).Inc()
		return nil, fmt.Errorf("%q: %w", name, domain.ErrUnknownTool)
	}

	start := time.Now()
	out, err := t.invoke(ctx, args)
	metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	status := statusOK
	switch {
	case err == nil:
	case errors.Is(err, errMalformed):
		metrics.ToolInvocationsTotal.WithLabelValues(name, statusInvalid).Inc()
		log.Debug("Malformed tool arguments", zap.Error(err))
		return nil, err
	case errors.Is(err, domain.ErrInvalidArguments), errors.Is(err, domain.ErrProductNotFound):
		status = statusInvalid
		log.Debug("Tool rejected input", zap.Error(err))
		out = errorOutput{Error: userMessage(err)}
	default:
		status = statusFailed
		log.Error("Tool failed", zap.Error(err))
		out = errorOutput{Error: t.failure}
	}
	metrics.ToolInvocationsTotal.WithLabelValues(name, status).Inc()

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s output: %w", name, err)
	}
	return data, nil
}

// errMalformed marks arguments that are not valid JSON for the tool.
var errMalformed = errors.New("malformed arguments")

func malformed(err error) error {
	return fmt.Errorf("%w: %w", errMalformed, err)
}

// userMessage maps input errors to the messages tools return to the caller.
func userMessage(err error) string {
	var m *messageError
	if errors.As(err, &m) {
		return m.msg
	}
	if errors.Is(err, domain.ErrProductNotFound) {
		return "Product not found"
	}
	return err.Error()
}

// messageError carries a caller-facing message for an input error.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg + ": " + e.err.Error() }
func (e *messageError) Unwrap() error { return e.err }

func withMessage(msg string, err error) error {
	if err == nil || !errors.Is(err, domain.ErrInvalidArguments) {
		return err
	}
	return &messageError{msg: msg, err: err}
}
