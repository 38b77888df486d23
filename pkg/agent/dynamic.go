package agent

import (
	"context"
	"log/slog"

	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/skills"
)

// Dynamic is the self-serve driver: the model sees skill metadata and a
// load_skill meta-tool, loads what it needs mid-conversation, and newly
// unlocked tools join the pool on the next loop iteration.
type Dynamic struct {
	runner  *Runner
	manager *skills.Manager
	logger  *slog.Logger
}

// NewDynamic creates a dynamic driver over the given manager.
func NewDynamic(provider llm.Provider, manager *skills.Manager, opts ...RunnerOption) *Dynamic {
	return &Dynamic{
		runner:  NewRunner(provider, opts...),
		manager: manager,
		logger:  slog.Default().With("component", "agent.dynamic"),
	}
}

// managerTools merges the loaded skills' tools with the load_skill
// meta-tool.
type managerTools struct {
	manager *skills.Manager
}

func (m managerTools) Tools() ([]Tool, error) {
	loaded, err := m.manager.Tools()
	if err != nil {
		return nil, err
	}
	return append(SkillTools(loaded), m.manager.LoadSkillTool()), nil
}

// Handle answers one request, letting the model load skills as it goes.
func (d *Dynamic) Handle(ctx context.Context, input string) (string, error) {
	system := "You are a helpful assistant. You have access to skills that add instructions and tools. " +
		"When a request matches a skill, call load_skill first, then follow the loaded instructions.\n\nAvailable skills:\n" +
		d.manager.MetadataSummary()

	out, err := d.runner.Run(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: input},
	}, managerTools{manager: d.manager})
	if err != nil {
		return "", err
	}
	d.logger.Debug("request handled", "loaded_skills", d.manager.Loaded())
	return out, nil
}

// Manager exposes the underlying skill manager, mainly for inspection
// after a run.
func (d *Dynamic) Manager() *skills.Manager { return d.manager }
