package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillet-ai/skillet/pkg/core"
	"github.com/skillet-ai/skillet/pkg/llm"
)

var _ core.Tool = (*Tool)(nil)

// Tool is a materialized, invocable tool descriptor derived from a skill
// manifest and its registered toolset. The wrapping strategy follows the
// declared parameter count: at most one parameter yields a simple
// single-argument tool, two or more yield a structured tool whose
// argument schema is derived from the declared parameters.
type Tool struct {
	name        string
	description string
	skill       string
	params      []Param
	structured  bool
	fn          Func
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description.
func (t *Tool) Description() string { return t.description }

// Skill returns the owning skill name.
func (t *Tool) Skill() string { return t.skill }

// Structured reports whether the tool uses a multi-argument schema.
func (t *Tool) Structured() bool { return t.structured }

// Params returns the declared parameters.
func (t *Tool) Params() []Param {
	return append([]Param(nil), t.params...)
}

// Call invokes the underlying function. Simple tools accept a raw string
// (bound to their single parameter) or an argument map; structured tools
// accept an argument map or a JSON object string.
func (t *Tool) Call(ctx context.Context, input any) (any, error) {
	args, err := t.normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if t.structured {
		for _, p := range t.params {
			if p.Optional {
				continue
			}
			if _, ok := args[p.Name]; !ok {
				return nil, fmt.Errorf("tool %s: missing required argument %q", t.name, p.Name)
			}
		}
	}
	return t.fn(ctx, args)
}

func (t *Tool) normalizeInput(input any) (map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "{") {
			var decoded map[string]any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return decoded, nil
			}
		}
		if !t.structured && len(t.params) == 1 {
			return map[string]any{t.params[0].Name: v}, nil
		}
		if t.structured {
			return nil, fmt.Errorf("tool %s: expected JSON object arguments, got %q", t.name, v)
		}
		return map[string]any{}, nil
	case json.RawMessage:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, fmt.Errorf("tool %s: invalid JSON arguments: %w", t.name, err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("tool %s: unsupported input type %T", t.name, input)
	}
}

// Definition returns the LLM function definition for this tool.
func (t *Tool) Definition() llm.Tool {
	props := make(map[string]any, len(t.params))
	var required []string
	for _, p := range t.params {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		props[p.Name] = map[string]any{
			"type":        typ,
			"description": p.Description,
		}
		if !p.Optional {
			required = append(required, p.Name)
		}
	}
	if required == nil {
		required = []string{}
	}
	return llm.Tool{
		Type: llm.ToolTypeFunction,
		Function: llm.FunctionDef{
			Name:        t.name,
			Description: t.description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		},
	}
}

// MaterializeTools resolves the named skill's declared tools against the
// registered toolset for its tools file. Absence at any step degrades to
// an empty list: no manifest, no tools_file declaration, no registered
// toolset, or no matching entries all yield zero tools without error.
// Declared names missing from the toolset are skipped; declared order is
// preserved for the rest.
func (l *Loader) MaterializeTools(name string) []*Tool {
	meta := l.Metadata(name)
	if meta == nil || meta.ToolsFile == "" {
		return nil
	}
	ts := l.registry.Resolve(name, meta.ToolsFile)
	if ts == nil {
		return nil
	}

	declared := meta.Tools
	if len(declared) == 0 {
		// No explicit export list: expose the whole toolset.
		declared = ts.Names()
	}

	var tools []*Tool
	for _, toolName := range declared {
		entry, ok := ts.Lookup(toolName)
		if !ok || entry.Fn == nil {
			continue
		}
		description := entry.Description
		if description == "" {
			description = fmt.Sprintf("%s from %s", toolName, name)
		}
		tools = append(tools, &Tool{
			name:        entry.Name,
			description: description,
			skill:       name,
			params:      entry.Params,
			structured:  len(entry.Params) >= 2,
			fn:          entry.Fn,
		})
	}
	return tools
}

// MaterializeAll materializes tools for the given skills, or for every
// discovered skill when names is nil.
func (l *Loader) MaterializeAll(names []string) []*Tool {
	if names == nil {
		names = l.Discover()
	}
	var all []*Tool
	for _, name := range names {
		all = append(all, l.MaterializeTools(name)...)
	}
	return all
}

// MergeTools combines tool lists from multiple skills into one pool.
// Duplicate tool names are rejected: silently shadowing another skill's
// tool would make agent behavior depend on load order.
func MergeTools(lists ...[]*Tool) ([]*Tool, error) {
	seen := make(map[string]string)
	var merged []*Tool
	for _, list := range lists {
		for _, tool := range list {
			if owner, dup := seen[tool.Name()]; dup {
				return nil, fmt.Errorf("tool name collision: %q declared by both %s and %s",
					tool.Name(), owner, tool.Skill())
			}
			seen[tool.Name()] = tool.Skill()
			merged = append(merged, tool)
		}
	}
	return merged, nil
}
