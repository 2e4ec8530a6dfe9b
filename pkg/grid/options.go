package grid

import (
	"strings"

	"filegrid/pkg/tree"
	"filegrid/pkg/upload"
)

// RenderContext carries per-render settings into column renderers.
type RenderContext struct {
	// Indent is the number of columns one depth level occupies.
	Indent int
}

// Renderer produces the cell markup for one item in one column.
type Renderer func(it *tree.Item, rc RenderContext) string

// Column declares one grid column. Folder and file rows render through
// separate hooks so folders can carry fold indicators.
type Column struct {
	ID           string
	Title        string
	Width        int
	FolderRender Renderer
	FileRender   Renderer
}

// URLOption is a closed sum over the two ways an upload endpoint can be
// configured: a literal URL, or a resolver consulted per target item.
type URLOption interface {
	Resolve(it *tree.Item) string
}

// LiteralURL is a fixed endpoint.
type LiteralURL string

// Resolve implements URLOption.
func (u LiteralURL) Resolve(*tree.Item) string { return string(u) }

// URLResolver derives the endpoint from the drop target item. The item may
// be nil when no target applies.
type URLResolver func(it *tree.Item) string

// Resolve implements URLOption.
func (f URLResolver) Resolve(it *tree.Item) string { return f(it) }

// Callbacks are the embedder's lifecycle hooks. Every hook is optional and
// is invoked after the corresponding structural mutation has completed.
type Callbacks struct {
	OnClick     func(it *tree.Item)
	OnItemAdded func(it *tree.Item)

	// OnBeforeMoveRows may veto a drag-move by returning false.
	OnBeforeMoveRows func(ids []int64, targetFolderID int64) bool
	OnMoveRows       func(ids []int64, targetFolderID int64)

	OnFileAdded      func(ev upload.Event)
	OnUploadProgress func(ev upload.Event)
	OnUploadSuccess  func(ev upload.Event)
	OnUploadError    func(ev upload.Event)
	OnUploadComplete func(ev upload.Event)
}

// Options configures a grid instance. Exactly one of Data and Source must
// be set.
type Options struct {
	// Data is the initial hierarchy, supplied in memory.
	Data []tree.Node
	// Source is a URL returning the hierarchy as a JSON array of nodes.
	Source string

	Columns []Column
	Indent  int

	Upload        bool
	UploadOptions upload.Options
	// UploadEndpoint is where the upload collaborator is mounted; consulted
	// only when Upload is set.
	UploadEndpoint URLOption

	Callbacks Callbacks
}

const defaultIndent = 2

func (o *Options) validate() error {
	if o.Data != nil && o.Source != "" {
		return configError("data and source are mutually exclusive")
	}
	if o.Upload && o.UploadEndpoint == nil {
		return configError("uploads enabled without an upload endpoint")
	}
	return nil
}

func (o *Options) indent() int {
	if o.Indent > 0 {
		return o.Indent
	}
	return defaultIndent
}

// columns returns the configured columns, or the single default name
// column when none were declared.
func (o *Options) columns() []Column {
	if len(o.Columns) > 0 {
		return o.Columns
	}
	return []Column{NameColumn()}
}

// NameColumn is the default column: indentation, a fold indicator for
// folders, and the item name.
func NameColumn() Column {
	return Column{
		ID:           "name",
		Title:        "Name",
		FolderRender: renderFolderName,
		FileRender:   renderFileName,
	}
}

func renderFolderName(it *tree.Item, rc RenderContext) string {
	indicator := "▼ "
	if it.Collapsed {
		indicator = "▶ "
	}
	return pad(it.Depth-1, rc.Indent) + indicator + it.Name
}

func renderFileName(it *tree.Item, rc RenderContext) string {
	return pad(it.Depth-1, rc.Indent) + "  " + it.Name
}

func pad(depth, indent int) string {
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat(" ", depth*indent)
}
