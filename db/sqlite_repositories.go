package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"tunevault/models"
)

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user row. A taken username yields ErrDuplicate.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted user id: %w", err)
	}
	user.ID = id

	return user, nil
}

// FindByID finds a user by ID
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByUsername finds a user by username
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// CountAll counts registered users
func (r *SQLiteUserRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

func (r *SQLiteUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var createdAt sql.NullTime

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}

	return &user, nil
}

// SQLiteTrackRepository implements the TrackRepository interface for SQLite
type SQLiteTrackRepository struct {
	db *sql.DB
}

// NewSQLiteTrackRepository creates a new SQLiteTrackRepository
func NewSQLiteTrackRepository(db *sql.DB) *SQLiteTrackRepository {
	return &SQLiteTrackRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteTrackRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new track row
func (r *SQLiteTrackRepository) Create(ctx context.Context, track *models.Track) (*models.Track, error) {
	if track.ID == "" {
		track.ID = GenerateID()
	}
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now()
	}

	query := `INSERT INTO tracks (id, title, artist, audio_filename, cover_filename, duration_seconds, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		track.ID, track.Title, track.Artist, track.AudioFilename, track.CoverFilename,
		track.DurationSeconds, track.UploadedBy, track.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting track: %w", err)
	}

	track.HasCover = track.CoverFilename != nil
	return track, nil
}

// FindByID finds a track by ID
func (r *SQLiteTrackRepository) FindByID(ctx context.Context, id string) (*models.Track, error) {
	query := `SELECT id, title, artist, audio_filename, cover_filename, duration_seconds, uploaded_by, created_at
		FROM tracks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	track, err := scanTrack(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning track: %w", err)
	}
	return track, nil
}

// FindAll finds all tracks, newest first
func (r *SQLiteTrackRepository) FindAll(ctx context.Context) ([]*models.Track, error) {
	query := `SELECT id, title, artist, audio_filename, cover_filename, duration_seconds, uploaded_by, created_at
		FROM tracks ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}

// DeleteByID deletes a track by ID
func (r *SQLiteTrackRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting track: %w", err)
	}
	return nil
}

// CountAll counts catalog rows
func (r *SQLiteTrackRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting tracks: %w", err)
	}
	return count, nil
}

func scanTrack(scan func(dest ...any) error) (*models.Track, error) {
	var track models.Track
	var cover sql.NullString
	var uploadedBy sql.NullInt64
	var createdAt sql.NullTime

	err := scan(&track.ID, &track.Title, &track.Artist, &track.AudioFilename, &cover,
		&track.DurationSeconds, &uploadedBy, &createdAt)
	if err != nil {
		return nil, err
	}

	if cover.Valid {
		track.CoverFilename = &cover.String
		track.HasCover = true
	}
	if uploadedBy.Valid {
		track.UploadedBy = uploadedBy.Int64
	}
	if createdAt.Valid {
		track.CreatedAt = createdAt.Time
	}

	return &track, nil
}
