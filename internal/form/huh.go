package form

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/activities/internal/constants"
)

// CategoryOptions are the select options in display order.
func CategoryOptions() []huh.Option[constants.Category] {
	opts := make([]huh.Option[constants.Category], 0, len(constants.Categories))
	for _, c := range constants.Categories {
		label := string(c)
		opts = append(opts, huh.NewOption(strings.ToUpper(label[:1])+label[1:], c))
	}
	return opts
}

// NewActivityForm creates a form bound to v.
func NewActivityForm(v *Values) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&v.Title).
				Validate(ValidateTitle),
			huh.NewText().
				Title("Description").
				Lines(3).
				Value(&v.Description).
				Validate(ValidateDescription),
			huh.NewSelect[constants.Category]().
				Title("Category").
				Options(CategoryOptions()...).
				Value(&v.Category).
				Validate(ValidateCategory),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&v.Date).
				Validate(ValidateDate),
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&v.Time).
				Validate(ValidateTime),
			huh.NewInput().
				Title("City").
				Value(&v.City).
				Validate(ValidateCity),
			huh.NewInput().
				Title("Venue").
				Value(&v.Venue).
				Validate(ValidateVenue),
		),
	).WithTheme(huh.ThemeDracula())
}

// Form builds the huh form for this session, bound to c.Values.
func (c *Controller) Form() *huh.Form {
	return NewActivityForm(&c.Values)
}
