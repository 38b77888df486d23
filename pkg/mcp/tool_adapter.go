package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillet-ai/skillet/pkg/agent"
	"github.com/skillet-ai/skillet/pkg/core"
	"github.com/skillet-ai/skillet/pkg/llm"
)

// ToolCaller abstracts MCP tool execution for adapters.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

// ToolAdapter wraps a remote MCP tool to satisfy core.Tool, so agent
// drivers can mix remote tools with skill tools.
type ToolAdapter struct {
	tool   mcp.Tool
	caller ToolCaller
}

// NewToolAdapter builds a core.Tool backed by an MCP tool definition and
// caller.
func NewToolAdapter(tool mcp.Tool, caller ToolCaller) (*ToolAdapter, error) {
	if tool.Name == "" {
		return nil, errors.New("mcp tool name is required")
	}
	if caller == nil {
		return nil, errors.New("tool caller is required")
	}
	return &ToolAdapter{tool: tool, caller: caller}, nil
}

// Name returns the MCP tool name.
func (t *ToolAdapter) Name() string { return t.tool.Name }

// Description returns the MCP tool description.
func (t *ToolAdapter) Description() string { return t.tool.Description }

// Definition returns an LLM function definition for this tool.
func (t *ToolAdapter) Definition() llm.Tool {
	return ToolDefinition(t.tool)
}

// Call invokes the remote tool with normalized arguments.
func (t *ToolAdapter) Call(ctx context.Context, input any) (any, error) {
	args, err := normalizeToolArgs(input)
	if err != nil {
		return nil, err
	}

	result, err := t.caller.CallTool(ctx, t.tool.Name, args)
	if err != nil {
		return nil, err
	}
	return toolResultToOutput(result)
}

// ToolDefinition converts an MCP tool into an LLM function tool
// definition.
func ToolDefinition(tool mcp.Tool) llm.Tool {
	var params any = tool.InputSchema
	if tool.RawInputSchema != nil {
		params = tool.RawInputSchema
	}
	return llm.Tool{
		Type: llm.ToolTypeFunction,
		Function: llm.FunctionDef{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		},
	}
}

// Adapters wraps every listed remote tool.
func Adapters(tools []mcp.Tool, caller ToolCaller) ([]*ToolAdapter, error) {
	out := make([]*ToolAdapter, 0, len(tools))
	for _, tool := range tools {
		adapter, err := NewToolAdapter(tool, caller)
		if err != nil {
			return nil, err
		}
		out = append(out, adapter)
	}
	return out, nil
}

// Pool collects adapters into an agent tool pool.
func Pool(adapters []*ToolAdapter) agent.StaticTools {
	pool := make(agent.StaticTools, 0, len(adapters))
	for _, adapter := range adapters {
		pool = append(pool, adapter)
	}
	return pool
}

func normalizeToolArgs(input any) (map[string]any, error) {
	switch value := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return value, nil
	case json.RawMessage:
		var decoded map[string]any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return nil, fmt.Errorf("mcp tool args: invalid JSON: %w", err)
		}
		return decoded, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return map[string]any{}, nil
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, fmt.Errorf("mcp tool args: invalid JSON: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("mcp tool args: unsupported input type %T", input)
	}
}

func toolResultToOutput(result *mcp.CallToolResult) (any, error) {
	if result == nil {
		return "", nil
	}
	output := extractTextContent(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("mcp tool error: %s", output)
	}
	if result.StructuredContent != nil {
		return result.StructuredContent, nil
	}
	return output, nil
}

func extractTextContent(items []mcp.Content) string {
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ core.Tool = (*ToolAdapter)(nil)
var _ agent.Tool = (*ToolAdapter)(nil)
