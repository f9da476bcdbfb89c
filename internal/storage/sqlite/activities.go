package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/storage"
)

// timeLayout is fixed width so that ORDER BY date sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

const selectActivity = `SELECT id, title, description, category, date, city, venue FROM activities`

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (models.Activity, error) {
	var a models.Activity
	var category, date string
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &category, &date, &a.City, &a.Venue); err != nil {
		return models.Activity{}, err
	}
	a.Category = constants.Category(category)

	t, err := parseTime(date)
	if err != nil {
		return models.Activity{}, fmt.Errorf("activity %s has invalid date %q: %w", a.ID, date, err)
	}
	a.Date = t
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, selectActivity+` ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *Store) GetActivity(ctx context.Context, id string) (models.Activity, error) {
	a, err := scanActivity(s.db.QueryRowContext(ctx, selectActivity+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, storage.ErrNotFound
	}
	return a, err
}

func (s *Store) AddActivity(ctx context.Context, a models.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, title, description, category, date, city, venue, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Description, string(a.Category), formatTime(a.Date), a.City, a.Venue, now, now,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", storage.ErrConflict, a.ID)
	}
	return err
}

func (s *Store) UpdateActivity(ctx context.Context, a models.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities
		SET title = ?, description = ?, category = ?, date = ?, city = ?, venue = ?, updated_at = ?
		WHERE id = ?`,
		a.Title, a.Description, string(a.Category), formatTime(a.Date), a.City, a.Venue, formatTime(time.Now()), a.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
