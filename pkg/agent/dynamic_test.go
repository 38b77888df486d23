package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/skills"
)

func TestDynamicLoadsSkillMidRun(t *testing.T) {
	loader, _ := testSkillsDir(t)
	manager := skills.NewManager(loader)

	provider := llm.NewScriptedMockProvider()
	provider.AddToolCallResponse("load_skill", `{"skill_name": "calc"}`)
	provider.AddToolCallResponse("add", `{"a": 7, "b": 8}`)
	provider.AddResponse("7 plus 8 is 15")

	d := NewDynamic(provider, manager)
	out, err := d.Handle(context.Background(), "what is 7+8?")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if out != "7 plus 8 is 15" {
		t.Errorf("out = %q", out)
	}
	if !manager.IsLoaded("calc") {
		t.Error("calc should be loaded after the run")
	}

	// first call only offers the meta-tool
	first := provider.Requests[0]
	if len(first.Tools) != 1 || first.Tools[0].Function.Name != "load_skill" {
		t.Errorf("initial tools = %+v", first.Tools)
	}
	if !strings.Contains(first.Messages[0].Content, "calc: Arithmetic helpers.") {
		t.Errorf("system prompt missing skill listing:\n%s", first.Messages[0].Content)
	}

	// after loading, add joins the pool
	second := provider.Requests[1]
	var names []string
	for _, tool := range second.Tools {
		names = append(names, tool.Function.Name)
	}
	if len(names) != 2 {
		t.Fatalf("second call tools = %v, want add plus load_skill", names)
	}

	// the load_skill result carries the skill instructions
	loadResult := second.Messages[len(second.Messages)-1]
	if loadResult.Role != llm.RoleTool {
		t.Fatalf("last message role = %s", loadResult.Role)
	}
	if !strings.Contains(loadResult.Content, "Use the add tool for sums.") {
		t.Errorf("load_skill result missing skill content:\n%s", loadResult.Content)
	}
}

func TestDynamicUnknownSkillRecovers(t *testing.T) {
	loader, _ := testSkillsDir(t)
	manager := skills.NewManager(loader)

	provider := llm.NewScriptedMockProvider()
	provider.AddToolCallResponse("load_skill", `{"skill_name": "ghost"}`)
	provider.AddResponse("that skill does not exist")

	d := NewDynamic(provider, manager)
	out, err := d.Handle(context.Background(), "use the ghost skill")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if out != "that skill does not exist" {
		t.Errorf("out = %q", out)
	}
	if len(manager.Loaded()) != 0 {
		t.Errorf("loaded = %v, want none", manager.Loaded())
	}

	second := provider.Requests[1]
	last := second.Messages[len(second.Messages)-1]
	if !strings.Contains(last.Content, "unknown skill") {
		t.Errorf("error not surfaced to model: %q", last.Content)
	}
}

func TestDynamicAnswersWithoutLoading(t *testing.T) {
	loader, _ := testSkillsDir(t)
	manager := skills.NewManager(loader)
	provider := llm.NewScriptedMockProvider("no skill needed")

	d := NewDynamic(provider, manager)
	out, err := d.Handle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if out != "no skill needed" {
		t.Errorf("out = %q", out)
	}
}
