// Package store provides a row-indexed item collection with a visibility
// filter and coalesced change notifications. It is the single source of
// truth the grid view renders from; hierarchical structure lives elsewhere
// and is projected into the store as a flat, ordered row list.
package store

import "fmt"

// Row is any item that can live in a RowStore. Implementations must return
// an id that is stable and unique within one store instance.
type Row interface {
	RowID() int64
}

// RowStore is an ordered collection of rows keyed by id. All methods must be
// called from a single goroutine; the store exists to coalesce render
// notifications, not to provide cross-goroutine safety.
type RowStore struct {
	rows   []Row
	byID   map[int64]int // id -> index into rows
	filter func(Row) bool

	visible      []Row
	visibleDirty bool

	suspend      int
	pendingNotes bool

	countHandlers []func(total int)
	rowsHandlers  []func(indices []int)
}

// New returns an empty store with no filter (every row visible).
func New() *RowStore {
	return &RowStore{
		byID: make(map[int64]int),
	}
}

// Len returns the number of rows in the store, visible or not.
func (s *RowStore) Len() int {
	return len(s.rows)
}

// InsertAt inserts r at the given row index. Indexes out of range are
// clamped to the ends of the list.
func (s *RowStore) InsertAt(idx int, r Row) error {
	if _, ok := s.byID[r.RowID()]; ok {
		return fmt.Errorf("store: duplicate row id %d", r.RowID())
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.rows) {
		idx = len(s.rows)
	}
	s.rows = append(s.rows, nil)
	copy(s.rows[idx+1:], s.rows[idx:])
	s.rows[idx] = r
	s.reindex(idx)
	s.changed()
	return nil
}

// Append adds r after the last row.
func (s *RowStore) Append(r Row) error {
	return s.InsertAt(len(s.rows), r)
}

// Delete removes the row with the given id.
func (s *RowStore) Delete(id int64) error {
	idx, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("store: no row with id %d", id)
	}
	s.rows = append(s.rows[:idx], s.rows[idx+1:]...)
	delete(s.byID, id)
	s.reindex(idx)
	s.changed()
	return nil
}

// ReplaceAll discards every row and installs rows in the given order.
func (s *RowStore) ReplaceAll(rows []Row) {
	s.rows = append([]Row(nil), rows...)
	s.byID = make(map[int64]int, len(rows))
	s.reindex(0)
	s.changed()
}

// GetByID returns the row with the given id, or nil.
func (s *RowStore) GetByID(id int64) Row {
	if idx, ok := s.byID[id]; ok {
		return s.rows[idx]
	}
	return nil
}

// At returns the row at the given store index, or nil when out of range.
func (s *RowStore) At(idx int) Row {
	if idx < 0 || idx >= len(s.rows) {
		return nil
	}
	return s.rows[idx]
}

// RowIndexOf returns the store index of the row with the given id, or -1.
func (s *RowStore) RowIndexOf(id int64) int {
	if idx, ok := s.byID[id]; ok {
		return idx
	}
	return -1
}

// SetFilter installs the visibility predicate applied before rows are
// exposed through VisibleRows. A nil filter makes every row visible.
func (s *RowStore) SetFilter(f func(Row) bool) {
	s.filter = f
	s.changed()
}

// VisibleRows returns the rows passing the filter, in store order. The
// returned slice is owned by the store and must not be mutated.
func (s *RowStore) VisibleRows() []Row {
	s.refreshVisible()
	return s.visible
}

// VisibleLen returns the number of rows passing the filter.
func (s *RowStore) VisibleLen() int {
	s.refreshVisible()
	return len(s.visible)
}

// VisibleAt returns the row at the given visible-row index, or nil.
func (s *RowStore) VisibleAt(idx int) Row {
	s.refreshVisible()
	if idx < 0 || idx >= len(s.visible) {
		return nil
	}
	return s.visible[idx]
}

// VisibleIndexOf returns the visible-row index of the row with the given
// id, or -1 when the row is absent or filtered out.
func (s *RowStore) VisibleIndexOf(id int64) int {
	s.refreshVisible()
	for i, r := range s.visible {
		if r.RowID() == id {
			return i
		}
	}
	return -1
}

// BeginUpdate suspends change notifications until the matching EndUpdate.
// Pairs nest; only the outermost EndUpdate fires the coalesced
// notifications.
func (s *RowStore) BeginUpdate() {
	s.suspend++
}

// EndUpdate closes a BeginUpdate pair, firing one notification round for
// all mutations made while suspended.
func (s *RowStore) EndUpdate() {
	if s.suspend == 0 {
		return
	}
	s.suspend--
	if s.suspend == 0 && s.pendingNotes {
		s.pendingNotes = false
		s.notify()
	}
}

// Refresh recomputes the visible row set and fires change notifications.
// Use it after mutating row flags in place (collapse/expand cascades).
func (s *RowStore) Refresh() {
	s.changed()
}

// OnRowCountChanged registers fn to run whenever a notification round
// fires; it receives the current visible row count.
func (s *RowStore) OnRowCountChanged(fn func(total int)) {
	s.countHandlers = append(s.countHandlers, fn)
}

// OnRowsChanged registers fn to run whenever a notification round fires;
// it receives the visible-row indices that may need re-rendering.
func (s *RowStore) OnRowsChanged(fn func(indices []int)) {
	s.rowsHandlers = append(s.rowsHandlers, fn)
}

func (s *RowStore) reindex(from int) {
	for i := from; i < len(s.rows); i++ {
		s.byID[s.rows[i].RowID()] = i
	}
}

func (s *RowStore) changed() {
	s.visibleDirty = true
	if s.suspend > 0 {
		s.pendingNotes = true
		return
	}
	s.notify()
}

func (s *RowStore) refreshVisible() {
	if !s.visibleDirty {
		return
	}
	s.visible = s.visible[:0]
	for _, r := range s.rows {
		if s.filter == nil || s.filter(r) {
			s.visible = append(s.visible, r)
		}
	}
	s.visibleDirty = false
}

func (s *RowStore) notify() {
	s.refreshVisible()
	indices := make([]int, len(s.visible))
	for i := range indices {
		indices[i] = i
	}
	for _, fn := range s.countHandlers {
		fn(len(s.visible))
	}
	for _, fn := range s.rowsHandlers {
		fn(indices)
	}
}
