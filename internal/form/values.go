// Package form implements the create/edit activity form: field values,
// validation and the controller that submits through the store.
package form

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/utils"
)

// Values holds the editable fields of an activity. Date and time are kept as
// separate strings the way the user types them.
type Values struct {
	ID          string
	Title       string
	Description string
	Category    constants.Category
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	City        string
	Venue       string
}

// FromActivity pre-fills values from a stored activity, rendering its date in loc.
func FromActivity(a models.Activity, loc *time.Location) Values {
	date, tod := utils.SplitDateAndTime(a.Date, loc)
	return Values{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Date:        date,
		Time:        tod,
		City:        a.City,
		Venue:       a.Venue,
	}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failed rule in form order.
type ValidationError []FieldError

func (e ValidationError) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message for field, or "" when the field is valid.
func (e ValidationError) Message(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func required(message string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	}
}

var (
	ValidateTitle = required("Title is required")
	ValidateCity  = required("City is required")
	ValidateVenue = required("Venue is required")
)

func ValidateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Description is required")
	}
	if utf8.RuneCountInString(s) < constants.MinDescriptionLength {
		return fmt.Errorf("Description needs to be at least %d characters", constants.MinDescriptionLength)
	}
	return nil
}

func ValidateCategory(c constants.Category) error {
	if strings.TrimSpace(string(c)) == "" {
		return errors.New("Category is required")
	}
	if !constants.IsValidCategory(c) {
		return fmt.Errorf("Category %q is not a valid option", c)
	}
	return nil
}

func ValidateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Date is required")
	}
	if _, err := utils.ParseDate(s); err != nil {
		return errors.New("Date must be in YYYY-MM-DD format")
	}
	return nil
}

func ValidateTime(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Time is required")
	}
	if _, err := utils.ParseTime(s); err != nil {
		return errors.New("Time must be in HH:MM format")
	}
	return nil
}

// Validate runs every field rule. It returns nil or a ValidationError.
func (v Values) Validate() error {
	checks := []struct {
		field string
		err   error
	}{
		{"title", ValidateTitle(v.Title)},
		{"description", ValidateDescription(v.Description)},
		{"category", ValidateCategory(v.Category)},
		{"date", ValidateDate(v.Date)},
		{"time", ValidateTime(v.Time)},
		{"city", ValidateCity(v.City)},
		{"venue", ValidateVenue(v.Venue)},
	}

	var verr ValidationError
	for _, c := range checks {
		if c.err != nil {
			verr = append(verr, FieldError{Field: c.field, Message: c.err.Error()})
		}
	}
	if len(verr) == 0 {
		return nil
	}
	return verr
}

// ToActivity combines date and time into one timestamp in loc and returns
// the activity to submit. The id is copied as is.
func (v Values) ToActivity(loc *time.Location) (models.Activity, error) {
	if err := v.Validate(); err != nil {
		return models.Activity{}, err
	}
	date, err := utils.CombineDateAndTime(v.Date, v.Time, loc)
	if err != nil {
		return models.Activity{}, err
	}
	return models.Activity{
		ID:          v.ID,
		Title:       strings.TrimSpace(v.Title),
		Description: v.Description,
		Category:    v.Category,
		Date:        date,
		City:        strings.TrimSpace(v.City),
		Venue:       strings.TrimSpace(v.Venue),
	}, nil
}
