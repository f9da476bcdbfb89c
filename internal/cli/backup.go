package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/activities/internal/backup"
	"github.com/julianstephens/activities/internal/constants"
)

// BackupCmd manages snapshots of the server's SQLite database.
type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the database."`
	List    BackupListCmd    `cmd:"" help:"List snapshots, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a snapshot."`
}

// BackupDB selects the SQLite database a backup command works on.
type BackupDB struct {
	DB string `help:"SQLite database path." default:"${default_db}" env:"ACTIVITIES_DB"`
}

func (b BackupDB) manager() (*backup.Manager, error) {
	dsn := b.DB
	if dsn == "" {
		dsn = constants.DefaultDBPath
	}
	p, err := OpenStorage(dsn)
	if err != nil {
		return nil, err
	}
	path, ok := p.(interface{ Path() string })
	if !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite, not %s", p.Describe())
	}
	return backup.NewManager(path.Path()), nil
}

type BackupCreateCmd struct {
	BackupDB `embed:""`
}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	m, err := c.manager()
	if err != nil {
		return err
	}
	path, err := m.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.printf("%s %s\n", okStyle.Render("✓ Backup created"), path)
	return nil
}

type BackupListCmd struct {
	BackupDB `embed:""`
}

func (c *BackupListCmd) Run(ctx *Context) error {
	m, err := c.manager()
	if err != nil {
		return err
	}
	list, err := m.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.printf("%s\n", mutedStyle.Render("No backups in "+m.Dir()))
		return nil
	}
	ctx.printf("%s\n", headerStyle.Render("Backups in "+m.Dir()))
	for _, b := range list {
		ctx.printf("  %s  %8.1f KB  %s\n", b.Timestamp.In(ctx.loc()).Format("2006-01-02 15:04:05"), float64(b.Size)/1024, b.Path)
	}
	return nil
}

type BackupRestoreCmd struct {
	BackupDB `embed:""`
	File     string `arg:"" type:"existingfile" help:"Snapshot to restore."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	m, err := c.manager()
	if err != nil {
		return err
	}
	previous, err := m.Restore(ctx.Ctx, kong.ExpandPath(c.File))
	if err != nil {
		return err
	}
	if previous != "" {
		ctx.printf("%s\n", mutedStyle.Render("Previous database saved to "+previous))
	}
	ctx.printf("%s %s\n", okStyle.Render("✓ Restored"), c.File)
	return nil
}
