package store

import (
	"sort"
	"time"

	"github.com/julianstephens/activities/internal/models"
)

// Snapshot is an immutable view of the store taken after one committed transition.
type Snapshot struct {
	// Version increases by one with every committed transition.
	Version        uint64
	Activities     map[string]models.Activity
	Activity       *models.Activity // current selection, nil when cleared
	LoadingInitial bool
	Submitting     bool
	Target         string // id being deleted
	LastError      error  // failure of the most recently settled operation

	loc *time.Location
}

// DateGroup is one calendar day of activities.
type DateGroup struct {
	Day        string // YYYY-MM-DD
	Activities []models.Activity
}

// Get looks up an activity in the snapshot.
func (s Snapshot) Get(id string) (models.Activity, bool) {
	a, ok := s.Activities[id]
	return a, ok
}

// ActivitiesByDate groups the snapshot's activities by calendar day.
func (s Snapshot) ActivitiesByDate() []DateGroup {
	list := make([]models.Activity, 0, len(s.Activities))
	for _, a := range s.Activities {
		list = append(list, a)
	}
	return GroupByDate(list, s.loc)
}

// GroupByDate sorts activities ascending by date and buckets them by calendar
// day in loc (UTC when nil). Equal timestamps are ordered by id so the result
// does not depend on input order. The input slice is not modified.
func GroupByDate(activities []models.Activity, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]models.Activity, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var groups []DateGroup
	for _, a := range sorted {
		day := a.Day(loc)
		if n := len(groups); n > 0 && groups[n-1].Day == day {
			groups[n-1].Activities = append(groups[n-1].Activities, a)
			continue
		}
		groups = append(groups, DateGroup{Day: day, Activities: []models.Activity{a}})
	}
	return groups
}
