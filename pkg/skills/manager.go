package skills

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Manager tracks which skills have been loaded during a session and
// materializes their tools on demand. It backs the dynamic agent driver,
// where the model decides at runtime which skills it needs.
type Manager struct {
	loader *Loader

	mu     sync.Mutex
	loaded map[string]*LoadedSkill
}

// LoadedSkill holds everything produced by loading one skill.
type LoadedSkill struct {
	Name    string
	Content string
	Tools   []*Tool
}

// NewManager returns a Manager over the given loader.
func NewManager(loader *Loader) *Manager {
	return &Manager{
		loader: loader,
		loaded: make(map[string]*LoadedSkill),
	}
}

// Available returns the discoverable skill names.
func (m *Manager) Available() []string {
	return m.loader.Discover()
}

// Loaded returns the names of skills loaded so far, sorted.
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLoaded reports whether the named skill has been loaded.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loaded[name]
	return ok
}

// LoadSkill loads the named skill's content and tools, caching the result.
// Loading the same skill twice returns the cached entry. Unknown skill
// names are an error so the caller can surface them to the model.
func (m *Manager) LoadSkill(name string) (*LoadedSkill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ls, ok := m.loaded[name]; ok {
		return ls, nil
	}

	known := false
	for _, avail := range m.loader.Discover() {
		if avail == name {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown skill %q, available: %s",
			name, strings.Join(m.loader.Discover(), ", "))
	}

	ls := &LoadedSkill{
		Name:    name,
		Content: m.loader.Load(name),
		Tools:   m.loader.MaterializeTools(name),
	}
	m.loaded[name] = ls
	return ls, nil
}

// Tools returns the merged tool pool across all loaded skills.
func (m *Manager) Tools() ([]*Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	lists := make([][]*Tool, 0, len(names))
	for _, name := range names {
		lists = append(lists, m.loaded[name].Tools)
	}
	return MergeTools(lists...)
}

// MetadataSummary renders a one-line-per-skill listing of available
// skills for inclusion in a planner or system prompt.
func (m *Manager) MetadataSummary() string {
	var b strings.Builder
	for _, name := range m.loader.Discover() {
		meta := m.loader.Metadata(name)
		desc := ""
		if meta != nil {
			desc = meta.Description
		}
		if desc == "" {
			desc = "no description"
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

// LoadSkillTool returns the meta-tool the dynamic driver exposes to the
// model. Calling it loads a skill and reports its content and any newly
// available tool names.
func (m *Manager) LoadSkillTool() *Tool {
	return &Tool{
		name:        "load_skill",
		description: "Load a skill by name to get its instructions and unlock its tools. Available skills:\n" + m.MetadataSummary(),
		skill:       "",
		params: []Param{
			{Name: "skill_name", Type: "string", Description: "Name of the skill to load"},
		},
		structured: false,
		fn: func(ctx context.Context, args map[string]any) (any, error) {
			name, _ := args["skill_name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("load_skill: skill_name is required")
			}
			ls, err := m.LoadSkill(name)
			if err != nil {
				return nil, err
			}
			toolNames := make([]string, 0, len(ls.Tools))
			for _, t := range ls.Tools {
				toolNames = append(toolNames, t.Name())
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Loaded skill %q.\n", name)
			if len(toolNames) > 0 {
				fmt.Fprintf(&b, "New tools available: %s\n", strings.Join(toolNames, ", "))
			}
			b.WriteString("\n")
			b.WriteString(ls.Content)
			return b.String(), nil
		},
	}
}
