package store

import "testing"

type testRow struct {
	id     int64
	hidden bool
}

func (r *testRow) RowID() int64 { return r.id }

func TestInsertDeleteLookup(t *testing.T) {
	s := New()

	if err := s.Append(&testRow{id: 1}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(&testRow{id: 3}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.InsertAt(1, &testRow{id: 2}); err != nil {
		t.Fatalf("InsertAt failed: %v", err)
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	for i, want := range []int64{1, 2, 3} {
		if got := s.At(i).RowID(); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
	if idx := s.RowIndexOf(3); idx != 2 {
		t.Errorf("RowIndexOf(3) = %d, want 2", idx)
	}
	if s.GetByID(2) == nil {
		t.Error("GetByID(2) returned nil")
	}

	if err := s.Delete(2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.GetByID(2) != nil {
		t.Error("GetByID(2) should be nil after delete")
	}
	if idx := s.RowIndexOf(3); idx != 1 {
		t.Errorf("RowIndexOf(3) after delete = %d, want 1", idx)
	}
}

func TestInsertAtClampsIndex(t *testing.T) {
	s := New()
	if err := s.InsertAt(5, &testRow{id: 1}); err != nil {
		t.Fatalf("InsertAt beyond end failed: %v", err)
	}
	if err := s.InsertAt(-2, &testRow{id: 2}); err != nil {
		t.Fatalf("InsertAt before start failed: %v", err)
	}
	if got := s.At(0).RowID(); got != 2 {
		t.Errorf("At(0) = %d, want 2", got)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	s := New()
	if err := s.Append(&testRow{id: 7}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(&testRow{id: 7}); err == nil {
		t.Fatal("expected error inserting duplicate id")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d after rejected insert, want 1", s.Len())
	}
}

func TestDeleteMissingID(t *testing.T) {
	s := New()
	if err := s.Delete(42); err == nil {
		t.Fatal("expected error deleting missing id")
	}
}

func TestReplaceAll(t *testing.T) {
	s := New()
	s.Append(&testRow{id: 1})
	s.ReplaceAll([]Row{&testRow{id: 10}, &testRow{id: 20}})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if s.GetByID(1) != nil {
		t.Error("old row survived ReplaceAll")
	}
	if idx := s.RowIndexOf(20); idx != 1 {
		t.Errorf("RowIndexOf(20) = %d, want 1", idx)
	}
}

func TestVisibilityFilter(t *testing.T) {
	s := New()
	s.SetFilter(func(r Row) bool { return !r.(*testRow).hidden })

	rows := []*testRow{{id: 1}, {id: 2, hidden: true}, {id: 3}}
	for _, r := range rows {
		if err := s.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if got := s.VisibleLen(); got != 2 {
		t.Fatalf("VisibleLen = %d, want 2", got)
	}
	if got := s.VisibleAt(1).RowID(); got != 3 {
		t.Errorf("VisibleAt(1) = %d, want 3", got)
	}
	if got := s.VisibleIndexOf(2); got != -1 {
		t.Errorf("VisibleIndexOf(hidden) = %d, want -1", got)
	}
	if got := s.RowIndexOf(2); got != 1 {
		t.Errorf("RowIndexOf(hidden) = %d, want 1 (hidden rows keep store indexes)", got)
	}

	// Flag flips are invisible until Refresh.
	rows[1].hidden = false
	if got := s.VisibleLen(); got != 2 {
		t.Fatalf("VisibleLen before Refresh = %d, want 2", got)
	}
	s.Refresh()
	if got := s.VisibleLen(); got != 3 {
		t.Fatalf("VisibleLen after Refresh = %d, want 3", got)
	}
}

func TestBatchCoalescesNotifications(t *testing.T) {
	s := New()

	var countFires, rowsFires int
	var lastTotal int
	s.OnRowCountChanged(func(total int) {
		countFires++
		lastTotal = total
	})
	s.OnRowsChanged(func(indices []int) { rowsFires++ })

	s.BeginUpdate()
	for i := int64(1); i <= 5; i++ {
		if err := s.Append(&testRow{id: i}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if countFires != 0 {
		t.Fatalf("notification fired during suspended batch (%d times)", countFires)
	}
	s.EndUpdate()

	if countFires != 1 || rowsFires != 1 {
		t.Fatalf("got %d count / %d rows notifications, want 1 / 1", countFires, rowsFires)
	}
	if lastTotal != 5 {
		t.Fatalf("notified total = %d, want 5", lastTotal)
	}
}

func TestNestedBatches(t *testing.T) {
	s := New()

	var fires int
	s.OnRowCountChanged(func(total int) { fires++ })

	s.BeginUpdate()
	s.Append(&testRow{id: 1})
	s.BeginUpdate()
	s.Append(&testRow{id: 2})
	s.EndUpdate()
	if fires != 0 {
		t.Fatal("inner EndUpdate fired notifications")
	}
	s.EndUpdate()

	if fires != 1 {
		t.Fatalf("got %d notifications, want 1 from outermost EndUpdate", fires)
	}
}

func TestEmptyBatchIsSilent(t *testing.T) {
	s := New()

	var fires int
	s.OnRowCountChanged(func(total int) { fires++ })

	s.BeginUpdate()
	s.EndUpdate()
	if fires != 0 {
		t.Fatalf("empty batch fired %d notifications, want 0", fires)
	}
}
