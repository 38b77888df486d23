// Package core defines the minimal contracts shared across skillet packages.
package core

import "context"

// Tool is an invocable capability exposed to an LLM. Implementations are
// provided by skill toolsets (pkg/skills) or MCP adapters (pkg/mcp).
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input any) (any, error)
}
