package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/storage"
)

const uniqueViolation = pq.ErrorCode("23505")

const selectActivity = `SELECT id, title, description, category, date, city, venue FROM activities`

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (models.Activity, error) {
	var a models.Activity
	var category string
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &category, &a.Date, &a.City, &a.Venue); err != nil {
		return models.Activity{}, err
	}
	a.Category = constants.Category(category)
	a.Date = a.Date.UTC()
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
	a, err := scanActivity(s.db.QueryRowContext(ctx, selectActivity+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, storage.ErrNotFound
	}
	return a, err
}

func (s *Store) AddActivity(ctx context.Context, a models.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, title, description, category, date, city, venue)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Title, a.Description, string(a.Category), a.Date.UTC(), a.City, a.Venue,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
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
		SET title = $1, description = $2, category = $3, date = $4, city = $5, venue = $6, updated_at = now()
		WHERE id = $7`,
		a.Title, a.Description, string(a.Category), a.Date.UTC(), a.City, a.Venue, a.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
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
