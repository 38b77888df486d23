// Package skills implements discovery, metadata, and tool materialization
// for skill directories. A skill is a directory containing a SKILL.md
// manifest: optional YAML front matter (name, description, tools_file,
// tools) followed by free-text instructions addressed to an LLM.
//
// Loading is two-level: metadata is cheap and read on demand; full
// instruction bodies and tools are only materialized when a skill is
// actually selected, keeping the context budget small.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the per-skill manifest file name.
const ManifestName = "SKILL.md"

// Metadata describes a skill without loading its full instruction body.
// For manifests without front matter the fields are derived heuristically
// from the document structure.
type Metadata struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	ToolsFile   string   `yaml:"tools_file"`
	Tools       []string `yaml:"tools"`

	Path string `yaml:"-"`
	Size int    `yaml:"-"`
}

// Loader reads skills from a root directory.
type Loader struct {
	dir      string
	registry *Registry
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry sets the toolset registry used for materialization.
// Defaults to the process-global registry.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) {
		l.registry = r
	}
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, registry: DefaultRegistry}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the skills root directory.
func (l *Loader) Dir() string { return l.dir }

// Discover returns the sorted names of skill directories that contain a
// manifest. A missing root is a valid "no skills available" state and
// yields an empty list, not an error.
func (l *Loader) Discover() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest := filepath.Join(l.dir, entry.Name(), ManifestName)
		if _, err := os.Stat(manifest); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// Load returns the full manifest text for a skill. A missing manifest
// yields an empty string so callers can treat "no instructions" as a
// no-op rather than a fault.
func (l *Loader) Load(name string) string {
	data, err := os.ReadFile(l.manifestPath(name))
	if err != nil {
		return ""
	}
	return string(data)
}

// LoadMultiple concatenates the bodies of the named skills, each prefixed
// with a header labeling its origin. Names with empty content are skipped.
// Ordering follows the input list.
func (l *Loader) LoadMultiple(names []string) string {
	var sections []string
	for _, name := range names {
		content := l.Load(name)
		if content == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("# Skill: %s\n\n%s", name, content))
	}
	return strings.Join(sections, "\n\n")
}

// Metadata parses the manifest's YAML front matter. On parse failure or
// when no front matter is present it falls back to the heuristic Info
// fields. Returns nil if the manifest is absent.
func (l *Loader) Metadata(name string) *Metadata {
	path := l.manifestPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content := string(data)

	if fm, ok := splitFrontMatter(content); ok {
		var meta Metadata
		if err := yaml.Unmarshal([]byte(fm), &meta); err == nil {
			if meta.Name == "" {
				meta.Name = name
			}
			meta.Path = path
			meta.Size = len(content)
			return &meta
		}
	}

	return l.Info(name)
}

// Info derives best-effort metadata from the manifest's document
// structure: the first heading line becomes the title, and the first
// non-empty line after a "## Description" heading becomes the
// description. Returns nil if the manifest is absent.
func (l *Loader) Info(name string) *Metadata {
	path := l.manifestPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content := string(data)
	lines := strings.Split(content, "\n")

	title := name
	if len(lines) > 0 {
		title = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[0]), "# "))
		if title == "" {
			title = name
		}
	}

	description := ""
	for i, line := range lines {
		if !strings.Contains(line, "## Description") {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			candidate := strings.TrimSpace(lines[j])
			if candidate != "" && !strings.HasPrefix(candidate, "#") {
				description = candidate
				break
			}
		}
		break
	}

	return &Metadata{
		Name:        name,
		Title:       title,
		Description: description,
		Path:        path,
		Size:        len(content),
	}
}

// ListAll returns metadata for every discovered skill.
func (l *Loader) ListAll() []*Metadata {
	var out []*Metadata
	for _, name := range l.Discover() {
		if meta := l.Metadata(name); meta != nil {
			out = append(out, meta)
		}
	}
	return out
}

func (l *Loader) manifestPath(name string) string {
	return filepath.Join(l.dir, name, ManifestName)
}

// splitFrontMatter extracts the YAML front matter block from content.
// Returns ok=false when content does not begin with a front matter fence.
func splitFrontMatter(content string) (string, bool) {
	if !strings.HasPrefix(content, "---") {
		return "", false
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return "", false
	}
	return parts[1], true
}

// Body returns the manifest text with any front matter stripped.
func Body(content string) string {
	if strings.HasPrefix(content, "---") {
		parts := strings.SplitN(content, "---", 3)
		if len(parts) >= 3 {
			return strings.TrimSpace(parts[2])
		}
	}
	return strings.TrimSpace(content)
}
