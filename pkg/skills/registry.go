package skills

import (
	"context"
	"fmt"
	"sync"
)

// Param declares one argument of a registered tool function.
type Param struct {
	Name        string
	Type        string // JSON schema type: string, number, integer, boolean
	Description string
	Optional    bool
}

// Func is the Go implementation behind a tool. Arguments arrive as a map
// keyed by the declared parameter names; single-parameter tools also
// accept their argument under the parameter name.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Entry is one named tool implementation inside a toolset.
type Entry struct {
	Name        string
	Description string
	Params      []Param
	Fn          Func
}

// Toolset is an ordered collection of tool entries registered for one
// tools file. It is the compile-time counterpart of a dynamically
// imported tools module: a manifest's tools_file resolves to a toolset,
// and its declared tool names are looked up here.
type Toolset struct {
	entries []Entry
	index   map[string]int
}

// NewToolset builds a toolset from entries, preserving order.
func NewToolset(entries ...Entry) *Toolset {
	ts := &Toolset{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := ts.index[e.Name]; dup {
			continue
		}
		ts.index[e.Name] = len(ts.entries)
		ts.entries = append(ts.entries, e)
	}
	return ts
}

// Lookup returns the entry registered under name.
func (ts *Toolset) Lookup(name string) (Entry, bool) {
	if ts == nil {
		return Entry{}, false
	}
	i, ok := ts.index[name]
	if !ok {
		return Entry{}, false
	}
	return ts.entries[i], true
}

// Names returns the entry names in registration order.
func (ts *Toolset) Names() []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts.entries))
	for i, e := range ts.entries {
		out[i] = e.Name
	}
	return out
}

// Registry maps a skill's tools file to its registered toolset. Where a
// dynamic language would import the tools file at runtime, toolsets are
// registered up front and resolved by key at materialization time.
type Registry struct {
	mu       sync.RWMutex
	toolsets map[string]*Toolset
}

// DefaultRegistry is the process-global registry used by NewLoader unless
// overridden.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{toolsets: make(map[string]*Toolset)}
}

// Register binds a toolset to the tools file declared by a skill's
// manifest. The key is scoped by skill name so distinct skills may reuse
// a tools-file path without clashing.
func (r *Registry) Register(skill, toolsFile string, ts *Toolset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolsets[toolsetKey(skill, toolsFile)] = ts
}

// Resolve returns the toolset for a skill's tools file, or nil when none
// is registered.
func (r *Registry) Resolve(skill, toolsFile string) *Toolset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.toolsets[toolsetKey(skill, toolsFile)]
}

// Register binds a toolset in the process-global registry.
func Register(skill, toolsFile string, ts *Toolset) {
	DefaultRegistry.Register(skill, toolsFile, ts)
}

func toolsetKey(skill, toolsFile string) string {
	return fmt.Sprintf("%s/%s", skill, toolsFile)
}
