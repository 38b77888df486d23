package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillet-ai/skillet/pkg/agent"
	"github.com/skillet-ai/skillet/pkg/llm"
)

type fakeCaller struct {
	lastName string
	lastArgs map[string]any
	result   *mcp.CallToolResult
	err      error
}

func (f *fakeCaller) CallTool(_ context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	f.lastName = name
	f.lastArgs = args
	return f.result, f.err
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func TestToolAdapterCall(t *testing.T) {
	caller := &fakeCaller{result: textResult("cell value")}
	adapter, err := NewToolAdapter(mcp.Tool{Name: "read_cell", Description: "Read a cell."}, caller)
	if err != nil {
		t.Fatal(err)
	}

	out, err := adapter.Call(context.Background(), map[string]any{"sheet": "budget", "cell": "A1"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.(string) != "cell value" {
		t.Errorf("out = %v", out)
	}
	if caller.lastName != "read_cell" {
		t.Errorf("called %q", caller.lastName)
	}
	if caller.lastArgs["sheet"] != "budget" {
		t.Errorf("args = %v", caller.lastArgs)
	}
}

func TestToolAdapterJSONStringArgs(t *testing.T) {
	caller := &fakeCaller{result: textResult("ok")}
	adapter, _ := NewToolAdapter(mcp.Tool{Name: "t"}, caller)

	if _, err := adapter.Call(context.Background(), `{"key": "value"}`); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if caller.lastArgs["key"] != "value" {
		t.Errorf("args = %v", caller.lastArgs)
	}
}

func TestToolAdapterErrorResult(t *testing.T) {
	result := textResult("something broke")
	result.IsError = true
	caller := &fakeCaller{result: result}
	adapter, _ := NewToolAdapter(mcp.Tool{Name: "t"}, caller)

	if _, err := adapter.Call(context.Background(), nil); err == nil {
		t.Fatal("expected error from IsError result")
	}
}

func TestToolAdapterValidation(t *testing.T) {
	if _, err := NewToolAdapter(mcp.Tool{}, &fakeCaller{}); err == nil {
		t.Error("expected error for unnamed tool")
	}
	if _, err := NewToolAdapter(mcp.Tool{Name: "t"}, nil); err == nil {
		t.Error("expected error for nil caller")
	}
}

func TestAdaptersServeAgentRunner(t *testing.T) {
	caller := &fakeCaller{result: textResult("42")}
	adapters, err := Adapters([]mcp.Tool{{Name: "read_cell", Description: "Read a cell."}}, caller)
	if err != nil {
		t.Fatal(err)
	}

	provider := llm.NewScriptedMockProvider()
	provider.AddToolCallResponse("read_cell", `{"sheet": "budget", "cell": "B2"}`)
	provider.AddResponse("the value is 42")

	runner := agent.NewRunner(provider)
	out, err := runner.Run(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "what is in B2?"},
	}, Pool(adapters))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "the value is 42" {
		t.Errorf("out = %q", out)
	}

	if caller.lastName != "read_cell" || caller.lastArgs["cell"] != "B2" {
		t.Errorf("remote call = %q %v", caller.lastName, caller.lastArgs)
	}
	if len(provider.Requests[0].Tools) != 1 || provider.Requests[0].Tools[0].Function.Name != "read_cell" {
		t.Errorf("tools offered = %+v", provider.Requests[0].Tools)
	}
}

func TestToolDefinition(t *testing.T) {
	def := ToolDefinition(mcp.Tool{Name: "read_cell", Description: "Read a cell."})
	if def.Function.Name != "read_cell" || def.Function.Description != "Read a cell." {
		t.Errorf("def = %+v", def)
	}
}
