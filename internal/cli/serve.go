package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/activities/internal/auth"
	"github.com/julianstephens/activities/internal/backup"
	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/server"
	"github.com/julianstephens/activities/internal/storage"
	"github.com/julianstephens/activities/internal/storage/postgres"
	"github.com/julianstephens/activities/internal/storage/sqlite"
)

type ServeCmd struct {
	Addr         string        `help:"Listen address." default:"${default_addr}"`
	DB           string        `help:"SQLite database path or PostgreSQL connection URL. Passwords must come from PGPASSWORD or .pgpass." default:"${default_db}" env:"ACTIVITIES_DB"`
	Prefix       string        `help:"Route prefix for the API." default:"/api"`
	JWTSecret    string        `help:"HS256 secret for bearer tokens. Auth is disabled when empty." name:"jwt-secret" env:"ACTIVITIES_JWT_SECRET"`
	JWTIssuer    string        `help:"Expected token issuer." name:"jwt-issuer" default:"${default_issuer}"`
	Migrate      bool          `help:"Create or migrate the database before serving."`
	NoBackup     bool          `help:"Skip the SQLite backup taken before migrating." name:"no-backup"`
	WriteTimeout time.Duration `help:"Per-request write timeout." default:"10s"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	p, err := OpenStorage(c.DB)
	if err != nil {
		return err
	}
	defer p.Close()

	if c.Migrate {
		if err := c.backupBeforeMigrate(ctx, p); err != nil {
			return err
		}
		err = p.Init(ctx.Ctx)
	} else {
		err = p.Load(ctx.Ctx)
	}
	if err != nil {
		return fmt.Errorf("storage %s: %w", p.Describe(), err)
	}
	logger.Info("storage ready", "backend", p.Describe())

	srv := server.New(server.Config{
		Address:      c.Addr,
		Prefix:       c.Prefix,
		Auth:         auth.Config{Secret: c.JWTSecret, Issuer: c.JWTIssuer},
		WriteTimeout: c.WriteTimeout,
	}, p)

	authMode := "disabled"
	if c.JWTSecret != "" {
		authMode = "bearer JWT"
	}
	ctx.printf("Serving activities on %s%s (storage %s, auth %s)\n", c.Addr, c.Prefix, p.Describe(), authMode)
	return srv.Run(ctx.Ctx)
}

func (c *ServeCmd) backupBeforeMigrate(ctx *Context, p storage.Provider) error {
	s, ok := p.(*sqlite.Store)
	if !ok || c.NoBackup {
		return nil
	}
	if _, err := os.Stat(s.Path()); err != nil {
		return nil
	}
	path, err := backup.NewManager(s.Path()).Create(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("pre-migration backup: %w", err)
	}
	ctx.printf("Backed up database to %s\n", path)
	return nil
}

// OpenStorage picks the backend from dsn: PostgreSQL for postgres:// URLs,
// SQLite for anything else.
func OpenStorage(dsn string) (storage.Provider, error) {
	if postgres.IsConnString(dsn) {
		if err := postgres.ValidateConnString(dsn); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: use PGPASSWORD or a .pgpass file instead", err)
			}
			return nil, err
		}
		return postgres.New(dsn), nil
	}
	if dsn == "" {
		dsn = constants.DefaultDBPath
	}
	return sqlite.NewStore(kong.ExpandPath(dsn)), nil
}
