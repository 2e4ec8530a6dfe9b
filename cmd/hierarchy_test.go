package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"filegrid/pkg/tree"
)

func TestLoadHierarchyYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.yaml")
	content := `- name: docs
  kind: folder
  children:
    - name: a.txt
    - name: b.txt
- name: readme.md
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	nodes, err := loadHierarchy(path)
	if err != nil {
		t.Fatalf("loadHierarchy failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes, want 2", len(nodes))
	}
	if nodes[0].Name != "docs" || nodes[0].EffectiveKind() != tree.KindFolder {
		t.Errorf("first node = %+v, want docs folder", nodes[0])
	}
	if len(nodes[0].Children) != 2 {
		t.Errorf("docs has %d children, want 2", len(nodes[0].Children))
	}
}

func TestLoadHierarchyJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.json")
	content := `[{"name": "src", "children": [{"name": "main.go"}]}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	nodes, err := loadHierarchy(path)
	if err != nil {
		t.Fatalf("loadHierarchy failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0].EffectiveKind() != tree.KindFolder {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
}

func TestLoadHierarchyUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := loadHierarchy(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWalkDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mustWrite("zeta.txt", "z")
	mustWrite("alpha.txt", "a")
	mustWrite("src/main.go", "package main")
	mustWrite(".hidden", "skip me")

	nodes, err := loadHierarchy(dir)
	if err != nil {
		t.Fatalf("loadHierarchy failed: %v", err)
	}

	// Folders first, then files by name; hidden entries skipped.
	want := []string{"src", "alpha.txt", "zeta.txt"}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d: %+v", len(nodes), len(want), nodes)
	}
	for i, name := range want {
		if nodes[i].Name != name {
			t.Errorf("node %d = %q, want %q", i, nodes[i].Name, name)
		}
	}
	if nodes[0].EffectiveKind() != tree.KindFolder {
		t.Error("src should be a folder")
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].Name != "main.go" {
		t.Errorf("src children = %+v", nodes[0].Children)
	}
	if got := nodes[1].Data["path"]; got != filepath.Join(dir, "alpha.txt") {
		t.Errorf("alpha.txt path payload = %v", got)
	}
	if got := nodes[1].Data["size"]; got != int64(1) {
		t.Errorf("alpha.txt size payload = %v", got)
	}
}
