package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/domain"
	"github.com/kailas-cloud/review/internal/usecase/tools"
)

type mockRegistry struct {
	out      json.RawMessage
	err      error
	lastName string
	lastArgs string
}

func (m *mockRegistry) Tools() []tools.Tool {
	return []tools.Tool{{
		Name:        "get_popular_products",
		Description: "Gets the most popular products",
		Parameters:  jsonschema.Definition{Type: jsonschema.Object},
	}}
}

func (m *mockRegistry) Invoke(_ context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	m.lastName, m.lastArgs = name, string(args)
	return m.out, m.err
}

func TestToolDefinitions(t *testing.T) {
	defs := ToolDefinitions(&mockRegistry{})
	if len(defs) != 1 {
		t.Fatalf("definitions = %d", len(defs))
	}
	d := defs[0]
	if d.Type != openai.ToolTypeFunction || d.Function == nil || d.Function.Name != "get_popular_products" {
		t.Errorf("definition = %+v", d)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"parameters":{"type":"object"`) {
		t.Errorf("json = %s", data)
	}
}

func TestDispatcher_Handle(t *testing.T) {
	reg := &mockRegistry{out: json.RawMessage(`{"count":0}`)}
	d := NewDispatcher(reg, zap.NewNop())

	msg := d.Handle(context.Background(), openai.ToolCall{
		ID:       "call_1",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "get_popular_products", Arguments: `{"limit":3}`},
	})

	if msg.Role != openai.ChatMessageRoleTool || msg.ToolCallID != "call_1" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Content != `{"count":0}` {
		t.Errorf("content = %s", msg.Content)
	}
	if reg.lastName != "get_popular_products" || reg.lastArgs != `{"limit":3}` {
		t.Errorf("invoked %s with %s", reg.lastName, reg.lastArgs)
	}
}

func TestDispatcher_Errors(t *testing.T) {
	tests := []struct {
		name string
		call openai.ToolCall
		err  error
		want string
	}{
		{
			"unknown tool",
			openai.ToolCall{ID: "a", Function: openai.FunctionCall{Name: "nope"}},
			domain.ErrUnknownTool,
			`Unknown tool \"nope\"`,
		},
		{
			"bad arguments",
			openai.ToolCall{ID: "b", Function: openai.FunctionCall{Name: "x", Arguments: "{"}},
			domain.ErrInvalidArguments,
			"Invalid tool arguments",
		},
		{
			"internal",
			openai.ToolCall{ID: "c", Function: openai.FunctionCall{Name: "x"}},
			errors.New("encode failed"),
			"Tool call failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&mockRegistry{err: tt.err}, zap.NewNop())
			msg := d.Handle(context.Background(), tt.call)
			if msg.ToolCallID != tt.call.ID || msg.Role != openai.ChatMessageRoleTool {
				t.Errorf("message = %+v", msg)
			}
			if !strings.Contains(msg.Content, tt.want) {
				t.Errorf("content = %s, want substring %s", msg.Content, tt.want)
			}
		})
	}
}

func TestDispatcher_GeneratesMissingID(t *testing.T) {
	d := NewDispatcher(&mockRegistry{out: json.RawMessage(`{}`)}, zap.NewNop())
	msgs := d.HandleAll(context.Background(), []openai.ToolCall{
		{Function: openai.FunctionCall{Name: "a"}},
		{Function: openai.FunctionCall{Name: "b"}},
	})
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if !strings.HasPrefix(msgs[0].ToolCallID, "call_") || msgs[0].ToolCallID == msgs[1].ToolCallID {
		t.Errorf("ids = %q, %q", msgs[0].ToolCallID, msgs[1].ToolCallID)
	}
	if msgs[1].Name != "b" {
		t.Errorf("order not preserved: %+v", msgs)
	}
}
