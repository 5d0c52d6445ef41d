package holiday

import (
	"context"
	"testing"
	"time"

	"courtside/internal/adapters/storage/storagetest"
	domain "courtside/internal/domain/holiday"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// TestListOverlapping verifies range overlap including boundary days.
func TestListOverlapping(t *testing.T) {
	store := NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	for _, h := range []domain.Holiday{
		{ID: "h-1", Name: "Waitangi Day", StartDate: day("2024-02-06"), EndDate: day("2024-02-06")},
		{ID: "h-2", Name: "Easter", StartDate: day("2024-03-29"), EndDate: day("2024-04-01")},
		{ID: "h-3", Name: "Winter break", StartDate: day("2024-07-06"), EndDate: day("2024-07-21")},
	} {
		if err := store.Save(ctx, h); err != nil {
			t.Fatalf("Save %s: %v", h.ID, err)
		}
	}

	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"single day hit", "2024-02-06", "2024-02-06", []string{"h-1"}},
		{"touches range end", "2024-03-01", "2024-03-29", []string{"h-2"}},
		{"touches range start", "2024-04-01", "2024-04-30", []string{"h-2"}},
		{"whole term", "2024-01-29", "2024-04-12", []string{"h-1", "h-2"}},
		{"none", "2024-05-01", "2024-06-30", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListOverlapping(ctx, day(tt.start), day(tt.end))
			if err != nil {
				t.Fatalf("ListOverlapping: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d holidays, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
