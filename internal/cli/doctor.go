package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/activities/internal/backup"
	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/keyring"
	"github.com/julianstephens/activities/internal/storage"
	"github.com/julianstephens/activities/internal/storage/sqlite"
)

const doctorTimeout = 5 * time.Second

// warning marks a check that should not fail the run.
type warning struct{ msg string }

func (w warning) Error() string { return w.msg }

type DoctorCmd struct {
	DB string `help:"Also check a server database (SQLite path or PostgreSQL URL)." env:"ACTIVITIES_DB"`
}

func (c *DoctorCmd) Run(ctx *Context) error {
	ctx.printf("Running diagnostics...\n\n")
	failed := false

	report := func(name string, err error) {
		var w warning
		switch {
		case err == nil:
			ctx.printf("%s %s: OK\n", okStyle.Render("✓"), name)
		case errors.As(err, &w):
			ctx.printf("⚠ %s: WARNING\n   %s\n", name, w.msg)
		default:
			ctx.printf("❌ %s: FAIL\n   Error: %v\n", name, err)
			failed = true
		}
	}
	skip := func(name, why string) {
		ctx.printf("%s\n", mutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (%s)", name, why)))
	}

	report("API reachable", c.checkAPI(ctx))
	report("Keyring", checkKeyring())
	report("Clock/timezone", checkClock(ctx.loc()))

	names := []string{"Database reachable", "Schema version", "Data validation", "Backups present"}
	if c.DB == "" {
		for _, n := range names {
			skip(n, "no --db given")
		}
	} else {
		p, err := OpenStorage(c.DB)
		if err == nil {
			defer p.Close()
			err = p.Load(ctx.Ctx)
		}
		report(names[0], err)
		if err != nil {
			for _, n := range names[1:] {
				skip(n, "database not reachable")
			}
		} else {
			report(names[1], checkSchema(ctx.Ctx, p))
			report(names[2], checkData(ctx.Ctx, p))
			if s, ok := p.(*sqlite.Store); ok {
				report(names[3], checkBackups(s))
			} else {
				skip(names[3], "not a SQLite database")
			}
		}
	}

	ctx.printf("\n")
	if failed {
		ctx.printf("Diagnostics completed with errors.\n")
		return errors.New("one or more health checks failed")
	}
	ctx.printf("All diagnostics passed!\n")
	return nil
}

func (c *DoctorCmd) checkAPI(ctx *Context) error {
	if ctx.Gateway == nil {
		return errors.New("no API client configured")
	}
	cctx, cancel := context.WithTimeout(ctx.Ctx, doctorTimeout)
	defer cancel()

	_, err := ctx.Gateway.List(cctx)
	if errors.Is(err, gateway.ErrUnauthorized) {
		return fmt.Errorf("%w: run 'activities token set' or export ACTIVITIES_TOKEN", err)
	}
	return err
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return warning{"OS keyring unavailable; pass the token with --api-token or ACTIVITIES_TOKEN"}
	}
	return nil
}

func checkClock(loc *time.Location) error {
	now := time.Now().In(loc)
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reads %s", now.Format(time.RFC3339))
	}
	if loc.String() == "" {
		return errors.New("timezone has no name")
	}
	return nil
}

func checkSchema(ctx context.Context, p storage.Provider) error {
	r, ok := p.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := r.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("database at version %d, latest is %d: run 'activities serve --migrate'", current, latest)
	}
	return nil
}

func checkData(ctx context.Context, p storage.Provider) error {
	list, err := p.ListActivities(ctx)
	if err != nil {
		return err
	}
	var bad []string
	for _, a := range list {
		switch {
		case a.Title == "":
			bad = append(bad, a.ID+": missing title")
		case !constants.IsValidCategory(a.Category):
			bad = append(bad, fmt.Sprintf("%s: unknown category %q", a.ID, a.Category))
		case a.Date.IsZero():
			bad = append(bad, a.ID+": missing date")
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d invalid activities, first: %s", len(bad), bad[0])
	}
	return nil
}

func checkBackups(s *sqlite.Store) error {
	list, err := backup.NewManager(s.Path()).List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return warning{"no backups yet; run 'activities backup create'"}
	}
	return nil
}
