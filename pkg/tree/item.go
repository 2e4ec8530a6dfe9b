// Package tree implements the folder/file hierarchy behind the grid: Tree
// nodes for folders, Leaf nodes for files, and the flat Item projection
// each node pushes into the shared row store.
package tree

// Kind distinguishes the two node variants the hierarchy is built from.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// RootID is the reserved id of the unmaterialized root node. It never
// appears as a row; items attached directly under the root carry it as
// their ParentID.
const RootID int64 = 0

// Item is the flat projection of one node, consumed by the row store and
// rendered by the grid. Collapsed and Hidden are store-level flags: after
// the initial resync the store row is the authority for both, and
// collapse/expand cascades mutate it in place.
type Item struct {
	ID        int64          `json:"id"`
	ParentID  int64          `json:"parentId"`
	Depth     int            `json:"depth"`
	Kind      Kind           `json:"kind"`
	Name      string         `json:"name"`
	Collapsed bool           `json:"_collapsed,omitempty"`
	Hidden    bool           `json:"_hidden,omitempty"`
	Payload   map[string]any `json:"data,omitempty"`
}

// RowID implements store.Row.
func (it *Item) RowID() int64 { return it.ID }

// Visible reports whether the item passes the grid's row filter.
func (it *Item) Visible() bool { return !it.Hidden }

// IsFolder reports whether the item projects a Tree node.
func (it *Item) IsFolder() bool { return it.Kind == KindFolder }

// Node is the nested input form of a hierarchy, as supplied by the
// embedder or decoded from a YAML/JSON source. Kind defaults to file when
// empty and no children are present.
type Node struct {
	ID       int64          `yaml:"id,omitempty" json:"id,omitempty"`
	Name     string         `yaml:"name" json:"name"`
	Kind     Kind           `yaml:"kind,omitempty" json:"kind,omitempty"`
	Children []Node         `yaml:"children,omitempty" json:"children,omitempty"`
	Data     map[string]any `yaml:"data,omitempty" json:"data,omitempty"`
}

// EffectiveKind resolves the node's variant: an explicit kind wins, then
// the presence of children implies a folder.
func (n Node) EffectiveKind() Kind {
	if n.Kind == KindFolder || n.Kind == KindFile {
		return n.Kind
	}
	if len(n.Children) > 0 {
		return KindFolder
	}
	return KindFile
}
