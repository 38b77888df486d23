// Package mcp exposes skill tools over the Model Context Protocol and
// adapts remote MCP tools for local use.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillet-ai/skillet/pkg/skills"
)

// Server publishes materialized skill tools to MCP clients.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server with the given identity.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// RegisterTool publishes one skill tool. The MCP input schema is built
// from the tool's declared parameters.
func (s *Server) RegisterTool(t *skills.Tool) {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description())}
	for _, p := range t.Params() {
		opts = append(opts, paramOption(p))
	}
	def := mcp.NewTool(t.Name(), opts...)

	s.mcpServer.AddTool(def, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		result, err := t.Call(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%v", result)), nil
	})
}

// RegisterSkill materializes and publishes every tool of the named
// skill. Returns the number of tools registered.
func (s *Server) RegisterSkill(loader *skills.Loader, name string) int {
	tools := loader.MaterializeTools(name)
	for _, t := range tools {
		s.RegisterTool(t)
	}
	return len(tools)
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func paramOption(p skills.Param) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if !p.Optional {
		propOpts = append(propOpts, mcp.Required())
	}
	switch p.Type {
	case "number", "integer":
		return mcp.WithNumber(p.Name, propOpts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, propOpts...)
	default:
		return mcp.WithString(p.Name, propOpts...)
	}
}
