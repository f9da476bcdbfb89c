package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/activities/internal/constants"
)

type Activity struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    constants.Category `json:"category"`
	Date        time.Time          `json:"date"`
	City        string             `json:"city"`
	Venue       string             `json:"venue"`
}

// Validate checks the fields every persisted activity must carry.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("activity id is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("activity title is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("activity date is required")
	}
	if a.Category != "" && !constants.IsValidCategory(a.Category) {
		return fmt.Errorf("unknown category %q", a.Category)
	}
	return nil
}

// Day returns the calendar day of the activity in loc, formatted as YYYY-MM-DD.
func (a Activity) Day(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return a.Date.In(loc).Format(constants.DateFormat)
}

// DetailPath is the route of the activity's detail view.
func (a Activity) DetailPath() string {
	return DetailPath(a.ID)
}

// DetailPath returns the detail route for id.
func DetailPath(id string) string {
	return constants.RouteActivities + "/" + id
}
