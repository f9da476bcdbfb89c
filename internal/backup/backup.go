// Package backup snapshots the server's SQLite database.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/logger"
)

const (
	// DefaultKeep is how many backups survive rotation.
	DefaultKeep = 14
	DirName     = "backups"

	filePrefix = constants.AppName + "-"
	fileSuffix = ".db"
	stampFmt   = "20060102-150405.000"
)

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
	log    *log.Logger
}

// NewManager manages backups of dbPath in a backups directory next to it.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   DefaultKeep,
		now:    time.Now,
		log:    logger.Component("backup"),
	}
}

func (m *Manager) Dir() string { return m.dir }

// Create writes a consistent copy of the database and rotates old copies.
func (m *Manager) Create(ctx context.Context) (string, error) {
	return m.create(ctx, true)
}

func (m *Manager) create(ctx context.Context, rotate bool) (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest := filepath.Join(m.dir, filePrefix+m.now().UTC().Format(stampFmt)+fileSuffix)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup %s already exists", filepath.Base(dest))
	}
	if err := vacuumInto(ctx, m.dbPath, dest); err != nil {
		m.log.Warn("VACUUM INTO failed, copying file", "error", err)
		if err := copyFile(m.dbPath, dest); err != nil {
			return "", fmt.Errorf("failed to back up database: %w", err)
		}
	}

	if rotate {
		if err := m.rotate(); err != nil {
			m.log.Warn("failed to rotate old backups", "error", err)
		}
	}
	m.log.Info("backup created", "path", dest)
	return dest, nil
}

func vacuumInto(ctx context.Context, src, dest string) error {
	db, err := sql.Open("sqlite", src)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := verify(ctx, db); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "VACUUM INTO ?", dest)
	return err
}

func verify(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("not a readable SQLite database: %w", err)
	}
	return nil
}

// List returns the backups newest first. Unrelated files are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		ts, err := time.Parse(stampFmt, stamp)
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(m.dir, name), Timestamp: ts, Size: fi.Size()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with src. The current database is backed up
// first, outside rotation, so a restore can itself be undone.
func (m *Manager) Restore(ctx context.Context, src string) (previous string, err error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("backup %s not found", src)
	}
	db, err := sql.Open("sqlite", src)
	if err != nil {
		return "", err
	}
	verr := verify(ctx, db)
	db.Close()
	if verr != nil {
		return "", fmt.Errorf("backup %s is invalid: %w", src, verr)
	}

	if _, err := os.Stat(m.dbPath); err == nil {
		previous, err = m.create(ctx, false)
		if err != nil {
			return "", fmt.Errorf("failed to back up current database: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(src, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		_ = os.Remove(tmp)
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	return previous, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
