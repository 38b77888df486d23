package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSkill(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644); err != nil {
			t.Fatalf("write manifest: %v", err)
		}
	}
}

func TestDiscoverSorted(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "zeta", "# Zeta\n")
	writeSkill(t, root, "alpha", "# Alpha\n")
	writeSkill(t, root, "mid", "# Mid\n")

	l := NewLoader(root)
	got := l.Discover()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Discover() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Discover() = %v, want %v", got, want)
		}
	}
}

func TestDiscoverSkipsDirsWithoutManifest(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "real", "# Real\n")
	writeSkill(t, root, "empty", "")
	// plain file at the root should not be mistaken for a skill
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(root)
	got := l.Discover()
	if len(got) != 1 || got[0] != "real" {
		t.Fatalf("Discover() = %v, want [real]", got)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	if got := l.Discover(); got != nil {
		t.Fatalf("Discover() on missing root = %v, want nil", got)
	}
}

func TestLoadMissingSkill(t *testing.T) {
	l := NewLoader(t.TempDir())
	if got := l.Load("ghost"); got != "" {
		t.Fatalf("Load(ghost) = %q, want empty", got)
	}
}

func TestLoadMultiple(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "one", "content one")
	writeSkill(t, root, "two", "content two")

	l := NewLoader(root)
	got := l.LoadMultiple([]string{"one", "missing", "two"})

	if !strings.Contains(got, "# Skill: one\n\ncontent one") {
		t.Errorf("missing header block for one:\n%s", got)
	}
	if !strings.Contains(got, "# Skill: two\n\ncontent two") {
		t.Errorf("missing header block for two:\n%s", got)
	}
	if strings.Contains(got, "missing") {
		t.Errorf("absent skill leaked into output:\n%s", got)
	}
	if strings.Index(got, "# Skill: one") > strings.Index(got, "# Skill: two") {
		t.Errorf("skill order not preserved:\n%s", got)
	}
}

func TestMetadataFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "calc", `---
name: calculator
title: Calculator
description: Basic arithmetic helpers.
tools_file: scripts/tools.py
tools:
  - add
  - subtract
---

# Calculator

Body text.
`)

	l := NewLoader(root)
	meta := l.Metadata("calc")
	if meta == nil {
		t.Fatal("Metadata(calc) = nil")
	}
	if meta.Name != "calculator" {
		t.Errorf("Name = %q, want calculator", meta.Name)
	}
	if meta.Title != "Calculator" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "Basic arithmetic helpers." {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.ToolsFile != "scripts/tools.py" {
		t.Errorf("ToolsFile = %q", meta.ToolsFile)
	}
	if len(meta.Tools) != 2 || meta.Tools[0] != "add" || meta.Tools[1] != "subtract" {
		t.Errorf("Tools = %v", meta.Tools)
	}
}

func TestMetadataNameDefaultsToDir(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "unnamed", `---
description: No name field here.
---

# Heading
`)
	l := NewLoader(root)
	meta := l.Metadata("unnamed")
	if meta == nil || meta.Name != "unnamed" {
		t.Fatalf("Metadata(unnamed) = %+v, want Name=unnamed", meta)
	}
}

func TestMetadataHeuristicFallback(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "legacy", `# Legacy Skill

Some intro.

## Description

Does legacy things very well.

## Usage
`)
	l := NewLoader(root)
	meta := l.Metadata("legacy")
	if meta == nil {
		t.Fatal("Metadata(legacy) = nil")
	}
	if meta.Title != "Legacy Skill" {
		t.Errorf("Title = %q, want Legacy Skill", meta.Title)
	}
	if meta.Description != "Does legacy things very well." {
		t.Errorf("Description = %q", meta.Description)
	}
}

func TestMetadataMissingSkill(t *testing.T) {
	l := NewLoader(t.TempDir())
	if meta := l.Metadata("ghost"); meta != nil {
		t.Fatalf("Metadata(ghost) = %+v, want nil", meta)
	}
}

func TestListAll(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "a", "---\ndescription: first\n---\n# A\n")
	writeSkill(t, root, "b", "# B\n\n## Description\n\nsecond\n")

	l := NewLoader(root)
	all := l.ListAll()
	if len(all) != 2 {
		t.Fatalf("ListAll() returned %d entries, want 2", len(all))
	}
	if all[0].Name != "a" || all[0].Description != "first" {
		t.Errorf("entry 0 = %+v", all[0])
	}
	if all[1].Name != "b" || all[1].Description != "second" {
		t.Errorf("entry 1 = %+v", all[1])
	}
}

func TestBodyStripsFrontMatter(t *testing.T) {
	content := "---\nname: x\n---\n\n# Body\n"
	if got := Body(content); !strings.HasPrefix(got, "# Body") {
		t.Errorf("Body() = %q", got)
	}
	plain := "# No front matter\n"
	if got := Body(plain); got != plain {
		t.Errorf("Body() altered plain content: %q", got)
	}
}
