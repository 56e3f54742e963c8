package db

import (
	"context"
	"database/sql"
	"errors"
	"tunevault/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for credential store operations
type UserRepository interface {
	Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CountAll(ctx context.Context) (int, error)
}

// TrackRepository defines the interface for catalog store operations
type TrackRepository interface {
	Repository
	Create(ctx context.Context, track *models.Track) (*models.Track, error)
	FindByID(ctx context.Context, id string) (*models.Track, error)
	FindAll(ctx context.Context) ([]*models.Track, error)
	DeleteByID(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int, error)
}

// RepositoryFactory creates repositories backed by the given database
type RepositoryFactory struct {
	SQLiteDB *sql.DB
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{SQLiteDB: sqliteDB}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	return NewSQLiteUserRepository(f.SQLiteDB)
}

// NewTrackRepository creates a new track repository
func (f *RepositoryFactory) NewTrackRepository() TrackRepository {
	return NewSQLiteTrackRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
