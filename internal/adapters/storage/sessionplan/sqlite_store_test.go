package sessionplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/internal/adapters/storage/storagetest"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/session"
)

var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*SQLiteStore, func(stmts ...string)) {
	t.Helper()
	db := storagetest.OpenDB(t)
	storagetest.Exec(t, db,
		"INSERT INTO coach (id, name) VALUES ('c-1', 'Mere')",
		"INSERT INTO teaching_period (id, name, start_date, end_date) VALUES ('p-1', 'Term 1', '2024-01-29', '2024-04-12')",
		"INSERT INTO coaching_group (id, period_id, name, student_count) VALUES ('g-1', 'p-1', 'Red Ball', 6)",
		"INSERT INTO group_time (id, group_id, coach_id, day, start_time, end_time) VALUES ('gt-1', 'g-1', 'c-1', 'tuesday', '16:00', '17:00')",
	)
	return NewSQLiteStore(db), func(stmts ...string) { storagetest.Exec(t, db, stmts...) }
}

func newPlan(id, date string) domain.Plan {
	return domain.Plan{
		ID: id, Date: date, GroupTimeID: "gt-1", GroupName: "Red Ball",
		Summary: "Serve toss", CreatedBy: "acc-1", CreatedAt: testNow, UpdatedAt: testNow,
	}
}

// TestCreate_AndList verifies plans round-trip and list by date range.
func TestCreate_AndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []domain.Plan{newPlan("pl-1", "2024-03-05"), newPlan("pl-2", "2024-03-12"), newPlan("pl-3", "2024-03-19")} {
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.ID, err)
		}
	}

	got, err := store.ListInRange(ctx, "2024-03-05", "2024-03-12")
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(got) != 2 || got[0].ID != "pl-1" || got[1].ID != "pl-2" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Summary != "Serve toss" || got[0].GroupName != "Red Ball" || !got[0].CreatedAt.Equal(testNow) {
		t.Errorf("fields lost: %+v", got[0])
	}
}

// TestCreate_Duplicate verifies one plan per session.
func TestCreate_Duplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, newPlan("pl-1", "2024-03-05")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := store.Create(ctx, newPlan("pl-2", "2024-03-05"))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

// TestCreate_RegisterClosesPlanning verifies the in-transaction register check.
func TestCreate_RegisterClosesPlanning(t *testing.T) {
	store, exec := newTestStore(t)
	ctx := context.Background()
	exec("INSERT INTO attendance_register (id, date, group_time_id, coach_id, created_at) VALUES ('r-1', '2024-03-05', 'gt-1', 'c-1', '2024-03-05T17:00:00Z')")

	err := store.Create(ctx, newPlan("pl-1", "2024-03-05"))
	if !errors.Is(err, apperr.ErrPlanningClosed) {
		t.Fatalf("expected ErrPlanningClosed, got %v", err)
	}
	got, _ := store.ListInRange(ctx, "2024-03-01", "2024-03-31")
	if len(got) != 0 {
		t.Errorf("plan persisted despite register: %+v", got)
	}
}

// TestUpdate verifies plan edits and the register lock.
func TestUpdate(t *testing.T) {
	store, exec := newTestStore(t)
	ctx := context.Background()
	p := newPlan("pl-1", "2024-03-05")
	store.Create(ctx, p)

	p.Summary = "Volleys"
	p.UpdatedAt = testNow.Add(time.Hour)
	if err := store.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, "pl-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Summary != "Volleys" || !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("got %+v", got)
	}

	exec("INSERT INTO attendance_register (id, date, group_time_id, coach_id, created_at) VALUES ('r-1', '2024-03-05', 'gt-1', 'c-1', '2024-03-05T17:00:00Z')")
	p.Summary = "Too late"
	if err := store.Update(ctx, p); !errors.Is(err, apperr.ErrPlanningClosed) {
		t.Errorf("expected ErrPlanningClosed, got %v", err)
	}

	missing := newPlan("nope", "2024-03-12")
	if err := store.Update(ctx, missing); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
