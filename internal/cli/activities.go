package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/form"
	"github.com/julianstephens/activities/internal/store"
	"github.com/julianstephens/activities/internal/utils"
)

type ListCmd struct {
	ShowIDs bool `help:"Show activity IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *Context) error {
	st := ctx.NewStore()
	if err := st.LoadActivities(ctx.Ctx); err != nil {
		return err
	}

	groups := st.ActivitiesByDate()
	if len(groups) == 0 {
		ctx.printf("No activities found\n")
		return nil
	}

	for i, g := range groups {
		if i > 0 {
			ctx.printf("\n")
		}
		ctx.printf("%s\n", headerStyle.Render(utils.FormatDayHeader(g.Day)))
		for _, a := range g.Activities {
			idStr := ""
			if c.ShowIDs {
				idStr = mutedStyle.Render(fmt.Sprintf(" (ID: %s)", a.ID))
			}
			ctx.printf("  %s  %s%s - %s, %s [%s]\n",
				a.Date.In(ctx.loc()).Format(constants.TimeFormat), a.Title, idStr, a.Venue, a.City, a.Category)
		}
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Activity ID."`
}

func (c *ShowCmd) Run(ctx *Context) error {
	a, err := ctx.NewStore().LoadActivity(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.printActivity(a)
	return nil
}

// FieldFlags are the activity fields settable from the command line.
type FieldFlags struct {
	Title       string `short:"t" help:"Title."`
	Description string `short:"D" help:"Description (at least 5 characters)."`
	Category    string `short:"c" help:"Category (drinks|culture|film|food|music|travel)."`
	Date        string `short:"d" help:"Date (YYYY-MM-DD)."`
	Time        string `short:"T" help:"Time (HH:MM)."`
	City        string `help:"City."`
	Venue       string `help:"Venue."`
}

func (f FieldFlags) empty() bool {
	return f == FieldFlags{}
}

// apply copies every non-empty flag onto v.
func (f FieldFlags) apply(v *form.Values) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = strings.TrimSpace(src)
		}
	}
	set(&v.Title, f.Title)
	set(&v.Description, f.Description)
	set(&v.Date, f.Date)
	set(&v.Time, f.Time)
	set(&v.City, f.City)
	set(&v.Venue, f.Venue)
	if f.Category != "" {
		v.Category = constants.Category(strings.ToLower(strings.TrimSpace(f.Category)))
	}
}

type CreateCmd struct {
	FieldFlags  `embed:""`
	Interactive bool `short:"i" help:"Fill in the activity with an interactive form."`
}

func (c *CreateCmd) Run(ctx *Context) error {
	var created string
	st := ctx.NewStore(store.WithNavigator(store.NavigatorFunc(func(path string) { created = path })))
	ctl := form.NewController(st, "", form.WithLocation(ctx.loc()))

	c.apply(&ctl.Values)
	if c.Interactive || c.empty() {
		if err := ctl.Form().Run(); err != nil {
			return formError(err)
		}
	}
	if err := ctl.Submit(ctx.Ctx); err != nil {
		return err
	}

	ctx.printf("%s %s\n", okStyle.Render("✓ Created"), created)
	a, _ := st.GetActivity(ctl.ID())
	ctx.printActivity(a)
	return nil
}

type EditCmd struct {
	ID          string `arg:"" help:"Activity ID."`
	FieldFlags  `embed:""`
	Interactive bool `short:"i" help:"Edit with an interactive form."`
}

func (c *EditCmd) Run(ctx *Context) error {
	st := ctx.NewStore()
	ctl := form.NewController(st, c.ID, form.WithLocation(ctx.loc()))
	if err := ctl.Load(ctx.Ctx); err != nil {
		return err
	}

	c.apply(&ctl.Values)
	if c.Interactive || c.empty() {
		if err := ctl.Form().Run(); err != nil {
			return formError(err)
		}
	}
	if ctl.Pristine() {
		ctx.printf("No changes\n")
		return nil
	}
	if err := ctl.Submit(ctx.Ctx); err != nil {
		return err
	}

	ctx.printf("%s %s\n", okStyle.Render("✓ Updated"), c.ID)
	a, _ := st.GetActivity(c.ID)
	ctx.printActivity(a)
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Activity ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	st := ctx.NewStore()
	a, err := st.LoadActivity(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", a.Title)).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed)
		if err := huh.NewForm(huh.NewGroup(prompt)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
			return formError(err)
		}
		if !confirmed {
			ctx.printf("Cancelled\n")
			return nil
		}
	}

	if err := st.DeleteActivity(ctx.Ctx, c.ID); err != nil {
		return err
	}
	ctx.printf("%s %s\n", okStyle.Render("✓ Deleted"), a.Title)
	return nil
}

// formError turns a user abort into a quiet cancellation.
func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("cancelled")
	}
	return err
}
