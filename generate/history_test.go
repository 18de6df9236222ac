package generate

import (
	"context"
	"path/filepath"
	"testing"
)

func TestHistoryStoreAndLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")

	h, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	records := []*Record{
		{ID: "one", Topic: "go generics", Model: "stub", Attempts: 1, Deck: "title: One"},
		{ID: "two", Topic: "go routines", Model: "stub", Attempts: 3, Deck: "title: Two"},
	}
	for _, rec := range records {
		if err := h.Store(ctx, rec); err != nil {
			t.Fatalf("Store(%s) failed: %v", rec.ID, err)
		}
	}

	got, err := h.Last(ctx, 10)
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	byID := map[string]Record{}
	for _, r := range got {
		byID[r.ID] = r
	}
	if r := byID["two"]; r.Topic != "go routines" || r.Attempts != 3 || r.Deck != "title: Two" {
		t.Errorf("record round trip mismatch: %+v", r)
	}
}

func TestHistoryLastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := h.Store(ctx, &Record{ID: id, Topic: "t", Model: "m", Attempts: 1, Deck: "d"}); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	got, err := h.Last(ctx, 2)
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit ignored, got %d records", len(got))
	}
}

func TestHistoryDuplicateID(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	rec := &Record{ID: "same", Topic: "t", Model: "m", Attempts: 1, Deck: "d"}
	if err := h.Store(ctx, rec); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := h.Store(ctx, rec); err == nil {
		t.Error("expected primary key violation for duplicate id")
	}
}
