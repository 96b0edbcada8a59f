package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/usecase/tools"
)

// toolRegistry is the consumer interface for tool dispatch (ISP).
type toolRegistry interface {
	Tools() []tools.Tool
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// ToolDefinitions converts the registry into chat completion tool declarations.
func ToolDefinitions(r toolRegistry) []openai.Tool {
	list := r.Tools()
	out := make([]openai.Tool, 0, len(list))
	for _, t := range list {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// Dispatcher answers assistant tool calls with tool messages.
type Dispatcher struct {
	registry toolRegistry
	logger   *zap.Logger
}

// NewDispatcher creates a tool-call dispatcher.
func NewDispatcher(r toolRegistry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: r, logger: logger}
}

// Handle runs one tool call. The reply always has role "tool" and the call's ID, so
// the conversation stays valid even when the call fails: the failure is the content.
func (d *Dispatcher) Handle(ctx context.Context, call openai.ToolCall) openai.ChatCompletionMessage {
	id := call.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}

	msg := openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Name:       call.Function.Name,
		ToolCallID: id,
	}

	if call.Type != "" && call.Type != openai.ToolTypeFunction {
		msg.Content = errorContent(fmt.Sprintf("Unsupported tool call type %q", call.Type))
		return msg
	}

	out, err := d.registry.Invoke(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
	switch {
	case err == nil:
		msg.Content = string(out)
	case errors.Is(err, domain.ErrUnknownTool):
		msg.Content = errorContent(fmt.Sprintf("Unknown tool %q", call.Function.Name))
	case errors.Is(err, domain.ErrInvalidArguments):
		msg.Content = errorContent("Invalid tool arguments: expected a JSON object matching the tool parameters")
	default:
		d.logger.Error("Tool call failed", zap.String("tool", call.Function.Name), zap.Error(err))
		msg.Content = errorContent("Tool call failed")
	}
	return msg
}

// HandleAll answers calls in order.
func (d *Dispatcher) HandleAll(ctx context.Context, calls []openai.ToolCall) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(calls))
	for _, c := range calls {
		out = append(out, d.Handle(ctx, c))
	}
	return out
}

func errorContent(msg string) string {
	data, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{msg})
	return string(data)
}
