// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/storage"
)

func sample(id string, date time.Time) models.Activity {
	return models.Activity{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description " + id,
		Category:    constants.CategoryFood,
		Date:        date,
		City:        "Glasgow",
		Venue:       "Venue " + id,
	}
}

// Run exercises p, which must be initialized and empty.
func Run(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	base := time.Date(2024, 2, 10, 18, 30, 0, 0, time.UTC)

	t.Run("EmptyList", func(t *testing.T) {
		list, err := p.ListActivities(ctx)
		if err != nil {
			t.Fatalf("ListActivities() error = %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Errorf("ListActivities() = %v, want empty non-nil slice", list)
		}
	})

	t.Run("AddGetRoundTrip", func(t *testing.T) {
		want := sample("rt", base.Add(123*time.Millisecond))
		if err := p.AddActivity(ctx, want); err != nil {
			t.Fatalf("AddActivity() error = %v", err)
		}
		got, err := p.GetActivity(ctx, "rt")
		if err != nil {
			t.Fatalf("GetActivity() error = %v", err)
		}
		if got.Title != want.Title || got.Category != want.Category || got.Venue != want.Venue {
			t.Errorf("GetActivity() = %+v, want %+v", got, want)
		}
		if !got.Date.Equal(want.Date) {
			t.Errorf("date = %v, want %v", got.Date, want.Date)
		}
	})

	t.Run("AddDuplicate", func(t *testing.T) {
		err := p.AddActivity(ctx, sample("rt", base))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("AddActivity(duplicate) = %v, want ErrConflict", err)
		}
	})

	t.Run("AddInvalid", func(t *testing.T) {
		if err := p.AddActivity(ctx, models.Activity{ID: "x"}); err == nil {
			t.Error("AddActivity() accepted an activity without title or date")
		}
	})

	t.Run("ListOrderedByDate", func(t *testing.T) {
		for i, id := range []string{"late", "early"} {
			if err := p.AddActivity(ctx, sample(id, base.Add(time.Duration(1-2*i)*48*time.Hour))); err != nil {
				t.Fatalf("AddActivity(%s) error = %v", id, err)
			}
		}
		list, err := p.ListActivities(ctx)
		if err != nil {
			t.Fatalf("ListActivities() error = %v", err)
		}
		for i := 1; i < len(list); i++ {
			if list[i].Date.Before(list[i-1].Date) {
				t.Errorf("list not sorted: %s before %s", list[i-1].ID, list[i].ID)
			}
		}
		if len(list) != 3 || list[0].ID != "early" || list[2].ID != "late" {
			t.Errorf("ListActivities() ids = %v", ids(list))
		}
	})

	t.Run("Update", func(t *testing.T) {
		a := sample("rt", base.Add(time.Hour))
		a.Title = "Updated"
		if err := p.UpdateActivity(ctx, a); err != nil {
			t.Fatalf("UpdateActivity() error = %v", err)
		}
		got, err := p.GetActivity(ctx, "rt")
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "Updated" || !got.Date.Equal(a.Date) {
			t.Errorf("after update = %+v", got)
		}

		missing := sample("missing", base)
		if err := p.UpdateActivity(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateActivity(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := p.DeleteActivity(ctx, "rt"); err != nil {
			t.Fatalf("DeleteActivity() error = %v", err)
		}
		if _, err := p.GetActivity(ctx, "rt"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetActivity(deleted) = %v, want ErrNotFound", err)
		}
		if err := p.DeleteActivity(ctx, "rt"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteActivity(deleted) = %v, want ErrNotFound", err)
		}
	})
}

func ids(list []models.Activity) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
