package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/skills"
)

// TwoStep is the plan-then-execute driver. A first model call picks at
// most one skill for the request; the second call answers with that
// skill's instructions and tools in play.
type TwoStep struct {
	runner *Runner
	loader *skills.Loader
	logger *slog.Logger
}

// NewTwoStep creates a two-step driver over the given loader.
func NewTwoStep(provider llm.Provider, loader *skills.Loader, opts ...RunnerOption) *TwoStep {
	return &TwoStep{
		runner: NewRunner(provider, opts...),
		loader: loader,
		logger: slog.Default().With("component", "agent.twostep"),
	}
}

const selectionNone = "none"

// Handle answers one request.
func (d *TwoStep) Handle(ctx context.Context, input string) (string, error) {
	skill := d.selectSkill(ctx, input)

	if skill == "" {
		d.logger.Debug("no skill selected, answering directly")
		return d.runner.Run(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a helpful assistant."},
			{Role: llm.RoleUser, Content: input},
		}, nil)
	}

	d.logger.Info("skill selected", "skill", skill)
	content := d.loader.Load(skill)
	tools := d.loader.MaterializeTools(skill)

	system := "You are a helpful assistant. Follow the instructions of the loaded skill below.\n\n" + content
	return d.runner.Run(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: input},
	}, SkillTools(tools))
}

// selectSkill asks the model to name one relevant skill. Anything that
// is not a known skill name, including "none" and malformed output,
// means no skill.
func (d *TwoStep) selectSkill(ctx context.Context, input string) string {
	available := d.loader.Discover()
	if len(available) == 0 {
		return ""
	}

	var listing strings.Builder
	for _, meta := range d.loader.ListAll() {
		desc := meta.Description
		if desc == "" {
			desc = "no description"
		}
		fmt.Fprintf(&listing, "- %s: %s\n", meta.Name, desc)
	}

	prompt := fmt.Sprintf(
		"You route user requests to skills. Available skills:\n%s\nReply with exactly one skill name from the list, or %q if none applies. Reply with the name only.\n\nRequest: %s",
		listing.String(), selectionNone, input)

	resp, err := d.runner.provider.Chat(ctx, llm.ChatRequest{
		Model: d.runner.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		d.logger.Warn("skill selection failed, answering directly", "error", err)
		return ""
	}

	choice := strings.ToLower(strings.TrimSpace(resp.Content))
	if choice == selectionNone {
		return ""
	}
	for _, name := range available {
		if strings.EqualFold(name, choice) {
			return name
		}
	}
	d.logger.Warn("model selected unknown skill", "choice", choice)
	return ""
}
