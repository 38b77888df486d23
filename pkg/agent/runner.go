// Package agent implements skill-driven agent drivers on top of the
// llm provider abstraction: a bounded tool-dispatch loop, a two-step
// plan-then-execute driver and a dynamic driver that loads skills
// mid-conversation.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skillet-ai/skillet/pkg/core"
	"github.com/skillet-ai/skillet/pkg/errors"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/skills"
)

// Tool is anything the loop can offer to the model: an invocable tool
// plus the function definition to advertise it with. Skill tools and
// remote MCP adapters both satisfy it.
type Tool interface {
	core.Tool
	Definition() llm.Tool
}

// ToolSource supplies the tool pool for each loop iteration. Re-fetching
// per iteration lets the pool grow mid-run, which the dynamic driver
// relies on.
type ToolSource interface {
	Tools() ([]Tool, error)
}

// StaticTools is a fixed tool pool.
type StaticTools []Tool

func (s StaticTools) Tools() ([]Tool, error) { return s, nil }

// SkillTools adapts a materialized skill tool list into a pool.
func SkillTools(tools []*skills.Tool) StaticTools {
	pool := make(StaticTools, 0, len(tools))
	for _, t := range tools {
		pool = append(pool, t)
	}
	return pool
}

// Runner drives the model/tool loop: call the model, execute any tool
// calls it makes, feed results back, and repeat until the model answers
// in plain text or the iteration bound is hit.
type Runner struct {
	provider      llm.Provider
	model         string
	temperature   float64
	maxIterations int
	logger        *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithModel sets the model name passed to the provider.
func WithModel(model string) RunnerOption {
	return func(r *Runner) { r.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) RunnerOption {
	return func(r *Runner) { r.temperature = temperature }
}

// WithMaxIterations bounds the loop. Values below one are ignored.
func WithMaxIterations(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// NewRunner creates a Runner with a default bound of ten iterations.
func NewRunner(provider llm.Provider, opts ...RunnerOption) *Runner {
	r := &Runner{
		provider:      provider,
		maxIterations: 10,
		logger:        slog.Default().With("component", "agent"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop starting from the given messages.
func (r *Runner) Run(ctx context.Context, messages []llm.Message, source ToolSource) (string, error) {
	if source == nil {
		source = StaticTools(nil)
	}

	for i := 0; i < r.maxIterations; i++ {
		pool, err := source.Tools()
		if err != nil {
			return "", err
		}

		defs := make([]llm.Tool, 0, len(pool))
		byName := make(map[string]Tool, len(pool))
		for _, t := range pool {
			defs = append(defs, t.Definition())
			byName[t.Name()] = t
		}

		resp, err := r.provider.Chat(ctx, llm.ChatRequest{
			Model:       r.model,
			Messages:    messages,
			Tools:       defs,
			Temperature: r.temperature,
		})
		if err != nil {
			return "", errors.New(errors.CodeLLMError, "model call failed", err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			messages = append(messages, r.dispatch(ctx, byName, call))
		}
	}

	return "", errors.New(errors.CodeInternal,
		fmt.Sprintf("agent did not finish within %d iterations", r.maxIterations), nil)
}

// dispatch executes one tool call. Failures become tool messages rather
// than loop errors so the model can correct itself.
func (r *Runner) dispatch(ctx context.Context, byName map[string]Tool, call llm.ToolCall) llm.Message {
	name := call.Function.Name
	msg := llm.Message{Role: llm.RoleTool, ToolCallID: call.ID}

	tool, ok := byName[name]
	if !ok {
		r.logger.Warn("model called unknown tool", "tool", name)
		msg.Content = fmt.Sprintf("error: unknown tool %q", name)
		return msg
	}

	result, err := tool.Call(ctx, call.Function.Arguments)
	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "error", err)
		msg.Content = fmt.Sprintf("error: %v", err)
		return msg
	}

	r.logger.Debug("tool call succeeded", "tool", name)
	msg.Content = fmt.Sprintf("%v", result)
	return msg
}
