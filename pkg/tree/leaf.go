package tree

import (
	"errors"

	"filegrid/pkg/store"
)

// ErrNotAttached is returned by operations that need a reachable row store
// on a node that was never attached to one.
var ErrNotAttached = errors.New("tree: node has no row store")

// Child is a node that can be attached under a Tree: either a *Leaf or a
// *Tree. The variant set is closed.
type Child interface {
	// Item returns the node's live row projection.
	Item() *Item
	// AttachStore idempotently assigns the shared row store reference,
	// recursing into descendants for folders.
	AttachStore(st *store.RowStore)
	// Parent returns the owning folder, or nil for detached nodes and the
	// root.
	Parent() *Tree

	setParent(p *Tree)
	setPlacement(parentID int64, depth int)
	flatten(out *[]*Item)
	setHidden(hidden bool)
	showSubtree()
}

// Leaf is a file node. It has no children; collapse and expand only touch
// its own row flags.
type Leaf struct {
	item   *Item
	parent *Tree
	store  *store.RowStore
}

// NewLeaf builds a detached leaf from n. The id comes from n.ID when
// supplied, otherwise from the allocator; parent, depth and store are
// assigned when the leaf is attached to a Tree.
func NewLeaf(n Node, ids *Allocator) *Leaf {
	id := n.ID
	if id != 0 {
		ids.Claim(id)
	} else {
		id = ids.Next()
	}
	return &Leaf{
		item: &Item{
			ID:      id,
			Kind:    KindFile,
			Name:    n.Name,
			Payload: n.Data,
		},
	}
}

// Item returns the leaf's live row projection.
func (l *Leaf) Item() *Item { return l.item }

// ToItem returns a shallow copy of the projection, leaving the leaf
// untouched.
func (l *Leaf) ToItem() Item { return *l.item }

// Parent returns the owning folder, or nil.
func (l *Leaf) Parent() *Tree { return l.parent }

// AttachStore assigns the shared store reference. Safe to call repeatedly
// during bulk re-parenting.
func (l *Leaf) AttachStore(st *store.RowStore) { l.store = st }

// Collapse sets both row flags on the materialized store row. The leaf must
// already be attached and synced into a store.
func (l *Leaf) Collapse() error { return l.setFlags(true) }

// Expand clears both row flags on the materialized store row.
func (l *Leaf) Expand() error { return l.setFlags(false) }

func (l *Leaf) setFlags(on bool) error {
	if l.store == nil {
		return ErrNotAttached
	}
	row := l.store.GetByID(l.item.ID)
	if row == nil {
		return ErrNotAttached
	}
	it := row.(*Item)
	it.Collapsed = on
	it.Hidden = on
	l.store.Refresh()
	return nil
}

func (l *Leaf) setParent(p *Tree) { l.parent = p }

func (l *Leaf) setPlacement(parentID int64, depth int) {
	l.item.ParentID = parentID
	l.item.Depth = depth
}

func (l *Leaf) flatten(out *[]*Item) { *out = append(*out, l.item) }

func (l *Leaf) setHidden(hidden bool) { l.item.Hidden = hidden }

func (l *Leaf) showSubtree() { l.item.Hidden = false }
