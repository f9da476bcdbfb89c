// Package gateway talks to the remote activity API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
)

// Gateway performs the remote CRUD calls for activities.
type Gateway interface {
	List(ctx context.Context) ([]models.Activity, error)
	Details(ctx context.Context, id string) (models.Activity, error)
	Create(ctx context.Context, activity models.Activity) error
	Update(ctx context.Context, activity models.Activity) error
	Delete(ctx context.Context, id string) error
}

var (
	// ErrNotFound is returned when the API has no activity with the requested id
	ErrNotFound = errors.New("activity not found")
	// ErrUnauthorized is returned when the API rejects the bearer token
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// wireDateLayouts are tried in order when decoding the date field. Servers that
// omit the offset are treated as UTC.
var wireDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseWireDate parses a date as the API sends it.
func ParseWireDate(s string) (time.Time, error) {
	for _, layout := range wireDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid activity date %q", s)
}

// WireActivity is the JSON shape exchanged with the API. The date stays a
// string until ParseWireDate.
type WireActivity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	City        string `json:"city"`
	Venue       string `json:"venue"`
}

// ToWire encodes a for the API.
func ToWire(a models.Activity) WireActivity {
	return WireActivity{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Category:    string(a.Category),
		Date:        a.Date.Format(time.RFC3339Nano),
		City:        a.City,
		Venue:       a.Venue,
	}
}

// FromWire decodes an API record.
func FromWire(w WireActivity) (models.Activity, error) {
	date, err := ParseWireDate(w.Date)
	if err != nil {
		return models.Activity{}, fmt.Errorf("activity %s: %w", w.ID, err)
	}
	return models.Activity{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Category:    constants.Category(w.Category),
		Date:        date,
		City:        w.City,
		Venue:       w.Venue,
	}, nil
}
