package records

import (
	"context"
	"testing"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func taskFields() map[string]capture.Value {
	return map[string]capture.Value{
		capture.FieldTitle:    capture.TextValue("資料作成"),
		capture.FieldDateTime: capture.TextValue("2025-06-10 14:00"),
		capture.FieldPriority: capture.PriorityValue(capture.PriorityHigh),
		"phone":               capture.TextValue("090-0000-0000"),
	}
}

func TestSaveAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, capture.TypeTask, taskFields(), "U123")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil {
		t.Fatal("Get returned nil for a saved record")
	}
	if rec.LogicalType != "task" {
		t.Errorf("LogicalType = %q, want task", rec.LogicalType)
	}
	if rec.Title != "資料作成" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Priority != "high" {
		t.Errorf("Priority = %q, want high", rec.Priority)
	}
	if rec.DueAt == nil {
		t.Error("DueAt not persisted")
	}
	if rec.Fields["phone"] != "090-0000-0000" {
		t.Errorf("extras = %v", rec.Fields)
	}
	if rec.CreatedBy != "U123" {
		t.Errorf("CreatedBy = %q", rec.CreatedBy)
	}
	if rec.Assignee != "U123" {
		t.Errorf("Assignee = %q, want actor default", rec.Assignee)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := setupStore(t)

	rec, err := store.Get(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Errorf("Get = %+v, want nil", rec)
	}
}

func TestUpdateRewritesRecord(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, capture.TypeTask, taskFields(), "U123")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	fields := taskFields()
	fields[capture.FieldTitle] = capture.TextValue("資料作成と送付")
	if err := store.Update(ctx, id, capture.TypeSchedule, fields, "U123"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.LogicalType != "schedule" {
		t.Errorf("LogicalType = %q, want schedule after reclassification", rec.LogicalType)
	}
	if rec.Title != "資料作成と送付" {
		t.Errorf("Title = %q", rec.Title)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, update must not create a second record", count)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	store := setupStore(t)

	err := store.Update(context.Background(), "no-such-id", capture.TypeTask, taskFields(), "U123")
	if err == nil {
		t.Fatal("Update on a missing record succeeded")
	}
}

func TestListFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, capture.TypeTask, taskFields(), "U1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Save(ctx, capture.TypeMemo, map[string]capture.Value{
		capture.FieldBody: capture.TextValue("覚え書き"),
	}, "U2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}

	tasks, err := store.List(ctx, ListFilter{LogicalType: "task"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].LogicalType != "task" {
		t.Errorf("type filter returned %+v", tasks)
	}

	byU2, err := store.List(ctx, ListFilter{CreatedBy: "U2"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byU2) != 1 || byU2[0].CreatedBy != "U2" {
		t.Errorf("created_by filter returned %+v", byU2)
	}

	limited, err := store.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d records", len(limited))
	}
}

func TestSearchMatchesTitleBodyAndExtras(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, capture.TypeTask, taskFields(), "U1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, q := range []string{"資料", "090-0000"} {
		hits, err := store.Search(ctx, q, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(hits) != 1 {
			t.Errorf("Search(%q) = %d hits, want 1", q, len(hits))
		}
	}

	hits, err := store.Search(ctx, "存在しない", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search for absent text = %d hits", len(hits))
	}
}
