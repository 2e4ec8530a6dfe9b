// Package grid ties the tree model, the row store, and the optional upload
// endpoint together behind the public widget API. Every structural
// operation mutates the tree and the store consistently, then invokes the
// embedder's callbacks; methods finish their store mutation before
// returning, so callbacks may safely re-enter the controller.
package grid

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"filegrid/pkg/store"
	"filegrid/pkg/tree"
	"filegrid/pkg/upload"
)

// Controller is one grid instance.
type Controller struct {
	opts     Options
	root     *tree.Tree
	uploader *upload.Server
	log      *logrus.Entry
}

// New constructs a grid from opts. It fails fast, synchronously, for the
// configuration errors of ErrConfig; a remote source that cannot be
// fetched is reported as a plain error.
func New(opts Options, log *logrus.Logger) (*Controller, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	nodes := opts.Data
	if opts.Source != "" {
		fetched, err := FetchSource(opts.Source)
		if err != nil {
			return nil, fmt.Errorf("grid: fetch source: %w", err)
		}
		nodes = fetched
	}

	c := &Controller{
		opts: opts,
		root: tree.FromHierarchy(nodes),
		log:  log.WithField("component", "grid"),
	}
	if err := c.root.Resync(); err != nil {
		return nil, configError("resync: %v", err)
	}

	if opts.Upload {
		srv, err := upload.NewServer(opts.UploadOptions, log)
		if err != nil {
			return nil, err
		}
		c.uploader = srv
	}
	return c, nil
}

// Store exposes the row store the grid view renders from.
func (c *Controller) Store() *store.RowStore {
	return c.root.Store()
}

// Root returns the hierarchy root.
func (c *Controller) Root() *tree.Tree {
	return c.root
}

// Columns returns the effective column set.
func (c *Controller) Columns() []Column {
	return c.opts.columns()
}

// RenderContext returns the per-render settings for column renderers.
func (c *Controller) RenderContext() RenderContext {
	return RenderContext{Indent: c.opts.indent()}
}

// Uploader returns the upload endpoint, or nil when uploads are disabled.
func (c *Controller) Uploader() *upload.Server {
	return c.uploader
}

// UploadURL resolves the advertised upload endpoint against the given drop
// target item; it may be nil when no target applies. Returns "" when
// uploads are disabled.
func (c *Controller) UploadURL(it *tree.Item) string {
	if c.uploader == nil || c.opts.UploadEndpoint == nil {
		return ""
	}
	return c.opts.UploadEndpoint.Resolve(it)
}

// Close releases the upload endpoint if one was started.
func (c *Controller) Close() {
	if c.uploader != nil {
		c.uploader.Close()
	}
}

// GetItemByID returns the store row with the given id, or nil. The store
// row is the authoritative projection.
func (c *Controller) GetItemByID(id int64) *tree.Item {
	if row := c.Store().GetByID(id); row != nil {
		return row.(*tree.Item)
	}
	return nil
}

// GetNodeByID returns the tree node with the given id, or nil.
func (c *Controller) GetNodeByID(id int64) tree.Child {
	if id == tree.RootID {
		return c.root
	}
	return c.root.FindByID(id)
}

// AddItem builds a node from n and attaches it under the folder with
// parentID (the root when parentID is tree.RootID). The new rows are
// inserted directly after the parent's row.
func (c *Controller) AddItem(parentID int64, n tree.Node) (*tree.Item, error) {
	it, err := c.addItem(parentID, n)
	if err != nil {
		return nil, err
	}
	if cb := c.opts.Callbacks.OnItemAdded; cb != nil {
		cb(it)
	}
	return it, nil
}

// AddItems attaches several nodes under one parent inside a single batched
// store update, so the grid gets one change notification for the whole
// set. Item-added callbacks fire after the batch is committed.
func (c *Controller) AddItems(parentID int64, ns []tree.Node) ([]*tree.Item, error) {
	st := c.Store()
	st.BeginUpdate()
	items := make([]*tree.Item, 0, len(ns))
	for _, n := range ns {
		it, err := c.addItem(parentID, n)
		if err != nil {
			st.EndUpdate()
			return items, err
		}
		items = append(items, it)
	}
	st.EndUpdate()
	if cb := c.opts.Callbacks.OnItemAdded; cb != nil {
		for _, it := range items {
			cb(it)
		}
	}
	return items, nil
}

// RemoveItem deletes the node with the given id and its whole subtree from
// both the tree and the store, in one batched update.
func (c *Controller) RemoveItem(id int64) error {
	node := c.root.FindByID(id)
	if node == nil {
		return fmt.Errorf("grid: no item with id %d", id)
	}
	sub, isFolder := node.(*tree.Tree)
	if isFolder && sub.IsRoot() {
		return fmt.Errorf("grid: cannot remove the root")
	}

	var rows []*tree.Item
	if isFolder {
		rows = sub.Flatten()
	} else {
		rows = []*tree.Item{node.Item()}
	}

	st := c.Store()
	st.BeginUpdate()
	for _, it := range rows {
		if err := st.Delete(it.ID); err != nil {
			c.log.WithError(err).Warn("failed to delete row")
		}
	}
	st.EndUpdate()

	if p := node.Parent(); p != nil {
		p.Detach(node)
	}
	return nil
}

// ToggleCollapse flips the collapse state of the item with the given id.
func (c *Controller) ToggleCollapse(id int64) error {
	it := c.GetItemByID(id)
	if it == nil {
		return fmt.Errorf("grid: no item with id %d", id)
	}
	if it.Collapsed {
		return c.ExpandItem(id)
	}
	return c.CollapseItem(id)
}

// ExpandItem expands the node with the given id. Expanding a folder
// reveals its immediate structure while each child folder keeps the
// collapse state it remembered.
func (c *Controller) ExpandItem(id int64) error {
	switch node := c.GetNodeByID(id).(type) {
	case *tree.Tree:
		return node.Expand()
	case *tree.Leaf:
		return node.Expand()
	default:
		return fmt.Errorf("grid: no item with id %d", id)
	}
}

// CollapseItem collapses the node with the given id, hiding every
// descendant of a folder.
func (c *Controller) CollapseItem(id int64) error {
	switch node := c.GetNodeByID(id).(type) {
	case *tree.Tree:
		return node.Collapse()
	case *tree.Leaf:
		return node.Collapse()
	default:
		return fmt.Errorf("grid: no item with id %d", id)
	}
}

// MoveItems re-parents the dragged items under the target folder. Each
// moved node is stripped back to its nested-input form, removed, and
// re-added through the normal add path, so the whole subtree's depths and
// row positions are recomputed against the new parent rather than carried
// over.
//
// A drop onto the item itself or onto its immediate former position is a
// no-op, detected by comparing the dragged row indices against the
// proposed insertion index and the index just before it.
func (c *Controller) MoveItems(ids []int64, targetFolderID int64) error {
	target, err := c.folderByID(targetFolderID)
	if err != nil {
		return err
	}

	st := c.Store()
	insertAt := 0
	if r := st.RowIndexOf(targetFolderID); r >= 0 {
		insertAt = r + 1
	}
	for _, id := range ids {
		if id == targetFolderID {
			return nil
		}
		if r := st.RowIndexOf(id); r == insertAt || r == insertAt-1 {
			return nil
		}
	}
	for _, id := range ids {
		if c.isDescendant(targetFolderID, id) {
			return fmt.Errorf("grid: cannot move item %d into its own subtree", id)
		}
	}

	if cb := c.opts.Callbacks.OnBeforeMoveRows; cb != nil {
		if !cb(ids, targetFolderID) {
			return nil
		}
	}

	st.BeginUpdate()
	for _, id := range ids {
		node := c.root.FindByID(id)
		if node == nil {
			st.EndUpdate()
			return fmt.Errorf("grid: no item with id %d", id)
		}
		spec := nodeSpec(node)
		if err := c.RemoveItem(id); err != nil {
			st.EndUpdate()
			return err
		}
		if _, err := c.addItem(target.Item().ID, spec); err != nil {
			st.EndUpdate()
			return err
		}
	}
	st.EndUpdate()

	if cb := c.opts.Callbacks.OnMoveRows; cb != nil {
		cb(ids, targetFolderID)
	}
	return nil
}

// Click reports a row activation to the embedder.
func (c *Controller) Click(it *tree.Item) {
	if cb := c.opts.Callbacks.OnClick; cb != nil {
		cb(it)
	}
}

// HandleUpload dispatches one upload lifecycle event: the embedder
// callbacks fire for every stage, and a completed upload is materialized
// as a new file row under its target folder through the normal add path.
// Call it from the goroutine that owns the grid.
func (c *Controller) HandleUpload(ev upload.Event) {
	cbs := c.opts.Callbacks
	switch ev.Stage {
	case upload.StageAdded:
		if cbs.OnFileAdded != nil {
			cbs.OnFileAdded(ev)
		}
	case upload.StageProgress:
		if cbs.OnUploadProgress != nil {
			cbs.OnUploadProgress(ev)
		}
	case upload.StageComplete:
		parentID := ev.FolderID
		if c.GetItemByID(parentID) == nil {
			parentID = tree.RootID
		}
		if _, err := c.AddItem(parentID, tree.Node{
			Name: ev.Name,
			Kind: tree.KindFile,
			Data: map[string]any{"path": ev.Path, "size": ev.Total},
		}); err != nil {
			c.log.WithError(err).Warn("failed to add uploaded file to grid")
		}
		if cbs.OnUploadSuccess != nil {
			cbs.OnUploadSuccess(ev)
		}
		if cbs.OnUploadComplete != nil {
			cbs.OnUploadComplete(ev)
		}
	case upload.StageError:
		if cbs.OnUploadError != nil {
			cbs.OnUploadError(ev)
		}
	}
}

func (c *Controller) addItem(parentID int64, n tree.Node) (*tree.Item, error) {
	parent, err := c.folderByID(parentID)
	if err != nil {
		return nil, err
	}
	child := tree.Build(n, c.root.IDs())
	parent.Attach(child, true)
	return child.Item(), nil
}

func (c *Controller) folderByID(id int64) (*tree.Tree, error) {
	if id == tree.RootID {
		return c.root, nil
	}
	node := c.root.FindByID(id)
	if node == nil {
		return nil, fmt.Errorf("grid: no folder with id %d", id)
	}
	folder, ok := node.(*tree.Tree)
	if !ok {
		return nil, fmt.Errorf("grid: item %d is not a folder", id)
	}
	return folder, nil
}

// isDescendant reports whether the node with id candidate sits inside the
// subtree rooted at ancestorID.
func (c *Controller) isDescendant(candidate, ancestorID int64) bool {
	if candidate == ancestorID {
		return true
	}
	node := c.root.FindByID(ancestorID)
	sub, ok := node.(*tree.Tree)
	if !ok {
		return false
	}
	return sub.FindByID(candidate) != nil
}

// nodeSpec strips a live node back to its nested-input form: identity and
// payload survive, structural fields (parent, depth, store placement) do
// not.
func nodeSpec(node tree.Child) tree.Node {
	it := node.Item()
	n := tree.Node{
		ID:   it.ID,
		Name: it.Name,
		Kind: it.Kind,
		Data: it.Payload,
	}
	if sub, ok := node.(*tree.Tree); ok {
		for _, child := range sub.Children() {
			n.Children = append(n.Children, nodeSpec(child))
		}
	}
	return n
}
