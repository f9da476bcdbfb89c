package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/activities/internal/cli"
	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/errors"
	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/keyring"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	APIURL    string        `help:"Base URL of the activity API." name:"api-url" default:"${default_api_url}" env:"ACTIVITIES_API_URL"`
	APIToken  string        `help:"Bearer token for the API. Falls back to the OS keyring." name:"api-token" env:"ACTIVITIES_TOKEN"`
	Profile   string        `help:"Keyring profile the token is read from." env:"ACTIVITIES_PROFILE"`
	Timeout   time.Duration `help:"HTTP timeout for API calls." default:"${default_timeout}"`
	Timezone  string        `help:"IANA timezone dates are shown and entered in, or Local." default:"Local" env:"ACTIVITIES_TZ"`
	ConfigDir string        `help:"Directory for logs." type:"path" default:"${default_config_dir}" name:"config-dir"`
	Debug     bool          `help:"Log debug output to stderr as well as the log file." env:"ACTIVITIES_DEBUG"`

	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	List   cli.ListCmd   `cmd:"" help:"List activities grouped by day."`
	Show   cli.ShowCmd   `cmd:"" help:"Show one activity."`
	Create cli.CreateCmd `cmd:"" help:"Create an activity from flags or an interactive form."`
	Edit   cli.EditCmd   `cmd:"" help:"Edit an activity."`
	Delete cli.DeleteCmd `cmd:"" help:"Delete an activity."`
	Serve  cli.ServeCmd  `cmd:"" help:"Run the activity API server."`
	Token  cli.TokenCmd  `cmd:"" help:"Manage the API token."`
	Backup cli.BackupCmd `cmd:"" help:"Back up or restore the server SQLite database."`
	Doctor cli.DoctorCmd `cmd:"" help:"Check API, keyring and database health."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Plan and browse activities from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":            constants.Version,
			"default_api_url":    constants.DefaultAPIURL,
			"default_timeout":    constants.DefaultHTTPTimeout.String(),
			"default_config_dir": constants.DefaultConfigDir,
			"default_addr":       constants.DefaultServerAddr,
			"default_db":         constants.DefaultDBPath,
			"default_issuer":     constants.DefaultJWTIssuer,
			"default_ttl":        constants.DefaultTokenTTL.String(),
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: CLI.ConfigDir}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatalf("invalid timezone %q: %v", CLI.Timezone, err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.NewClient(CLI.APIURL,
		gateway.WithToken(keyring.ResolveToken(CLI.APIToken, keyring.For(CLI.Profile))),
		gateway.WithTimeout(CLI.Timeout),
		gateway.WithLogger(logger.Component("gateway")),
	)

	appCtx := &cli.Context{
		Ctx:      runCtx,
		Gateway:  gw,
		Location: loc,
		Out:      os.Stdout,
	}

	err = ctx.Run(appCtx)
	stop()
	if code := errors.Report(os.Stderr, err); code != 0 {
		os.Exit(code)
	}
}
