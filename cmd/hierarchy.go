package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"filegrid/pkg/tree"

	"gopkg.in/yaml.v3"
)

// loadHierarchy reads a hierarchy definition from path. YAML and JSON
// files are decoded directly; a directory is walked into folder and
// file nodes.
func loadHierarchy(path string) ([]tree.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy: %w", err)
	}
	if info.IsDir() {
		return walkDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy file: %w", err)
	}

	var nodes []tree.Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported hierarchy format %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	return nodes, nil
}

// walkDir converts a directory tree into hierarchy nodes, skipping
// hidden entries. Folders sort before files, then by name.
func walkDir(dir string) ([]tree.Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var nodes []tree.Node
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			children, err := walkDir(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, tree.Node{
				Name:     entry.Name(),
				Kind:     tree.KindFolder,
				Children: children,
			})
			continue
		}

		node := tree.Node{
			Name: entry.Name(),
			Kind: tree.KindFile,
			Data: map[string]any{"path": filepath.Join(dir, entry.Name())},
		}
		if fi, err := entry.Info(); err == nil {
			node.Data["size"] = fi.Size()
		}
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind == tree.KindFolder
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes, nil
}
