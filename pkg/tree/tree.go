package tree

import (
	"filegrid/pkg/store"
)

// Tree is a folder node, or the root of a hierarchy. A root is constructed
// with NewRoot or FromHierarchy: it carries the reserved sentinel id, is
// never materialized as a row, and exclusively owns the row store and the
// id allocator. Every descendant shares the root's store by reference.
type Tree struct {
	item     *Item
	children []Child
	parent   *Tree
	store    *store.RowStore
	ids      *Allocator // root only
}

// NewRoot returns an empty root owning a fresh row store. The store's
// visibility filter hides rows whose Hidden flag is set.
func NewRoot() *Tree {
	st := store.New()
	st.SetFilter(func(r store.Row) bool {
		return r.(*Item).Visible()
	})
	return &Tree{
		item: &Item{
			ID:   RootID,
			Kind: KindFolder,
		},
		store: st,
		ids:   NewAllocator(),
	}
}

// NewFolder builds a detached folder node from n. Parent, depth and store
// are assigned when it is attached.
func NewFolder(n Node, ids *Allocator) *Tree {
	id := n.ID
	if id != 0 {
		ids.Claim(id)
	} else {
		id = ids.Next()
	}
	return &Tree{
		item: &Item{
			ID:      id,
			Kind:    KindFolder,
			Name:    n.Name,
			Payload: n.Data,
		},
	}
}

// FromHierarchy builds a root from nested input, attaching each element as
// a child in input order. File-kind nodes become leaves, everything else
// becomes a folder whose children are built recursively.
func FromHierarchy(nodes []Node) *Tree {
	root := NewRoot()
	for _, n := range nodes {
		root.Attach(Build(n, root.ids), false)
	}
	return root
}

// Build constructs a detached subtree (or leaf) from one nested node,
// recursing into its children in input order.
func Build(n Node, ids *Allocator) Child {
	if n.EffectiveKind() == KindFile {
		return NewLeaf(n, ids)
	}
	t := NewFolder(n, ids)
	for _, c := range n.Children {
		t.Attach(Build(c, ids), false)
	}
	return t
}

// Item returns the folder's live row projection.
func (t *Tree) Item() *Item { return t.item }

// ToItem returns a shallow copy of the projection.
func (t *Tree) ToItem() Item { return *t.item }

// Parent returns the owning folder, or nil for the root and detached
// subtrees.
func (t *Tree) Parent() *Tree { return t.parent }

// Children returns the ordered child list.
func (t *Tree) Children() []Child { return t.children }

// Store returns the row store reachable from this node, or nil.
func (t *Tree) Store() *store.RowStore { return t.store }

// IDs returns the id allocator owned by this node's root.
func (t *Tree) IDs() *Allocator {
	n := t
	for n.parent != nil {
		n = n.parent
	}
	return n.ids
}

// IsRoot reports whether this node is the unmaterialized root.
func (t *Tree) IsRoot() bool { return t.item.ID == RootID }

// Attach links child under t: the child's ParentID becomes t's id, its
// depth (and every descendant's) is recomputed from t's depth, the shared
// store reference is propagated, and the child is appended to the ordered
// child list.
//
// With syncStore set the child's rows are also inserted into the store
// immediately, placed directly after t's own row (or at row 0 when t is the
// root), so a new item always appears as the first row under its parent.
// Without syncStore the caller owns a later bulk Resync.
func (t *Tree) Attach(child Child, syncStore bool) {
	child.setParent(t)
	child.setPlacement(t.item.ID, t.item.Depth+1)
	if t.store != nil {
		child.AttachStore(t.store)
	}
	t.children = append(t.children, child)

	if !syncStore || t.store == nil {
		return
	}
	idx := 0
	if r := t.store.RowIndexOf(t.item.ID); r >= 0 {
		idx = r + 1
	}
	var rows []*Item
	child.flatten(&rows)
	t.store.BeginUpdate()
	for i, it := range rows {
		t.store.InsertAt(idx+i, it)
	}
	t.store.EndUpdate()
}

// Detach removes child from t's ordered child list. Row store cleanup is
// the caller's concern.
func (t *Tree) Detach(child Child) bool {
	for i, c := range t.children {
		if c == child {
			t.children = append(t.children[:i], t.children[i+1:]...)
			child.setParent(nil)
			return true
		}
	}
	return false
}

// Flatten produces the item projections in pre-order: the node itself
// (unless it is the root, which is never materialized) followed by its
// recursively flattened children in child-list order. This is the
// authoritative mapping from hierarchy to row order.
func (t *Tree) Flatten() []*Item {
	var out []*Item
	if t.IsRoot() {
		for _, c := range t.children {
			c.flatten(&out)
		}
		return out
	}
	t.flatten(&out)
	return out
}

// FindByID returns the node with the given id anywhere under t, or nil.
func (t *Tree) FindByID(id int64) Child {
	if t.item.ID == id {
		return t
	}
	for _, c := range t.children {
		if c.Item().ID == id {
			return c
		}
		if sub, ok := c.(*Tree); ok {
			if found := sub.FindByID(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// Resync re-propagates the store reference through the whole subtree, then,
// on the root, replaces the store contents with Flatten() inside a single
// batched update so the grid re-renders once. It fails when no store is
// reachable from this node.
func (t *Tree) Resync() error {
	if t.store == nil {
		return ErrNotAttached
	}
	t.AttachStore(t.store)
	if !t.IsRoot() {
		return nil
	}
	items := t.Flatten()
	rows := make([]store.Row, len(items))
	for i, it := range items {
		rows[i] = it
	}
	t.store.BeginUpdate()
	t.store.ReplaceAll(rows)
	t.store.EndUpdate()
	return nil
}

// AttachStore assigns the shared store reference to this node and every
// descendant.
func (t *Tree) AttachStore(st *store.RowStore) {
	t.store = st
	for _, c := range t.children {
		c.AttachStore(st)
	}
}

// Collapse marks the folder collapsed and hides its entire subtree, then
// refreshes the store.
func (t *Tree) Collapse() error {
	if t.store == nil {
		return ErrNotAttached
	}
	t.CollapseSubtree(false)
	t.store.Refresh()
	return nil
}

// Expand reveals the folder's immediate structure, respecting each child
// folder's own remembered collapsed state, then refreshes the store.
func (t *Tree) Expand() error {
	if t.store == nil {
		return ErrNotAttached
	}
	t.ExpandSubtree(false)
	t.store.Refresh()
	return nil
}

// CollapseSubtree marks this folder's own row hidden when hideSelf is set,
// otherwise collapsed-but-visible; every descendant row becomes hidden
// either way. A descendant folder's own Collapsed flag is left alone, so
// re-expanding restores the state it remembered.
func (t *Tree) CollapseSubtree(hideSelf bool) {
	if hideSelf {
		t.item.Hidden = true
	} else {
		t.item.Collapsed = true
		t.item.Hidden = false
	}
	t.hideDescendants()
}

func (t *Tree) hideDescendants() {
	for _, c := range t.children {
		c.setHidden(true)
		if sub, ok := c.(*Tree); ok {
			sub.hideDescendants()
		}
	}
}

// ExpandSubtree reveals this folder's row, clearing its Collapsed flag only
// on the top-level call (descendant calls touch Hidden alone). Recursion
// stops at a folder that is itself still marked collapsed, so the hide
// cascade is deliberately deeper than the show cascade.
func (t *Tree) ExpandSubtree(isDescendantCall bool) {
	if !isDescendantCall {
		t.item.Collapsed = false
	}
	t.item.Hidden = false
	if t.item.Collapsed {
		return
	}
	for _, c := range t.children {
		c.showSubtree()
	}
}

// IsCollapsed reads the Collapsed flag off the current store row, which is
// authoritative once the tree has been synced; detached nodes fall back to
// their own projection.
func (t *Tree) IsCollapsed() bool {
	if t.store != nil {
		if row := t.store.GetByID(t.item.ID); row != nil {
			return row.(*Item).Collapsed
		}
	}
	return t.item.Collapsed
}

func (t *Tree) setParent(p *Tree) { t.parent = p }

func (t *Tree) setPlacement(parentID int64, depth int) {
	t.item.ParentID = parentID
	t.item.Depth = depth
	for _, c := range t.children {
		c.setPlacement(t.item.ID, depth+1)
	}
}

func (t *Tree) flatten(out *[]*Item) {
	*out = append(*out, t.item)
	for _, c := range t.children {
		c.flatten(out)
	}
}

func (t *Tree) setHidden(hidden bool) { t.item.Hidden = hidden }

func (t *Tree) showSubtree() { t.ExpandSubtree(true) }
