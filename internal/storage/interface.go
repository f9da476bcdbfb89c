// Package storage defines the persistence contract behind the activity API.
package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/activities/internal/models"
)

var (
	// ErrNotFound is returned when no activity has the requested id
	ErrNotFound = errors.New("activity not found")
	// ErrConflict is returned when adding an activity whose id already exists
	ErrConflict = errors.New("activity already exists")
)

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Activities
	ListActivities(ctx context.Context) ([]models.Activity, error)
	GetActivity(ctx context.Context, id string) (models.Activity, error)
	AddActivity(ctx context.Context, a models.Activity) error
	UpdateActivity(ctx context.Context, a models.Activity) error
	DeleteActivity(ctx context.Context, id string) error

	// Utils
	// Describe returns a non-sensitive label for logs.
	Describe() string
}

// SchemaReporter is implemented by providers backed by the migration runner.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
