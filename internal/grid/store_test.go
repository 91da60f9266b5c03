package grid

import (
	"errors"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{ID: 1, PONumber: "PO24001", ProductCode: "2045", ProductName: "RO膜", ExcelStatus: "生效", Quantity: 50, WarehouseQty: 10},
		{ID: 2, PONumber: "OO24002", ProductCode: "1001", ProductName: "濾心", ExcelStatus: "生效", Quantity: 30, WarehouseQty: 5},
		{ID: 3, PONumber: "PO24003", ProductCode: "9999", ProductName: "水龍頭", ExcelStatus: "結案", Quantity: 10, WarehouseQty: 10},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Replace(sampleRows())
	return s
}

func TestStoreReplaceKeepsServerOrder(t *testing.T) {
	s := newTestStore(t)
	got := s.GetAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].ID != want {
			t.Fatalf("row %d: expected id %d, got %d", i, want, got[i].ID)
		}
	}
}

func TestStoreReplaceDeduplicatesByID(t *testing.T) {
	s := NewStore()
	rows := sampleRows()
	dup := rows[0]
	dup.Remarks = "later copy wins"
	s.Replace(append(rows, dup))

	if s.Len() != 3 {
		t.Fatalf("expected 3 rows after dedup, got %d", s.Len())
	}
	got, err := s.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID(1): %v", err)
	}
	if got.Remarks != "later copy wins" {
		t.Fatalf("expected duplicate to overwrite, got remarks %q", got.Remarks)
	}
}

func TestStoreGetByIDUnknownIsRowNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetByID(99)
	if err == nil {
		t.Fatalf("expected error for unknown id")
	}
	var notFound *RowNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *RowNotFoundError, got %T", err)
	}
	if notFound.ID != 99 {
		t.Fatalf("expected id 99 in error, got %d", notFound.ID)
	}
}

func TestStoreApplyFieldUpdateMutatesSingleField(t *testing.T) {
	s := newTestStore(t)
	before, _ := s.GetByID(1)

	if err := s.ApplyFieldUpdate(1, FieldRemarks, "急件"); err != nil {
		t.Fatalf("ApplyFieldUpdate: %v", err)
	}

	after, _ := s.GetByID(1)
	if after.Remarks != "急件" {
		t.Fatalf("expected remarks updated, got %q", after.Remarks)
	}
	after.Remarks = before.Remarks
	if after != before {
		t.Fatalf("ApplyFieldUpdate touched more than one field: %+v vs %+v", after, before)
	}

	other, _ := s.GetByID(2)
	if other.Remarks != "" {
		t.Fatalf("ApplyFieldUpdate leaked into another row: %q", other.Remarks)
	}
}

func TestStoreApplyFieldUpdateUnknownRow(t *testing.T) {
	s := newTestStore(t)
	err := s.ApplyFieldUpdate(42, FieldRemarks, "x")
	var notFound *RowNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *RowNotFoundError, got %v", err)
	}
}

func TestStoreApplyFieldUpdateRejectsUneditableField(t *testing.T) {
	s := newTestStore(t)
	err := s.ApplyFieldUpdate(1, Field("po_number"), "PO999")
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownFieldError, got %v", err)
	}
}

func TestStoreRevisionBumpsOnMutation(t *testing.T) {
	s := NewStore()
	rev := s.Revision()
	s.Replace(sampleRows())
	if s.Revision() == rev {
		t.Fatalf("Replace did not bump revision")
	}
	rev = s.Revision()
	if err := s.ApplyFieldUpdate(2, FieldGoodsStatus, "已抵港"); err != nil {
		t.Fatalf("ApplyFieldUpdate: %v", err)
	}
	if s.Revision() == rev {
		t.Fatalf("ApplyFieldUpdate did not bump revision")
	}
	rev = s.Revision()
	s.GetAll()
	if _, err := s.GetByID(1); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.Revision() != rev {
		t.Fatalf("reads must not bump revision")
	}
}

func TestGetAllReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	rows := s.GetAll()
	rows[0].Remarks = "mutated outside"
	fresh, _ := s.GetByID(rows[0].ID)
	if fresh.Remarks == "mutated outside" {
		t.Fatalf("GetAll must return a copy")
	}
}
