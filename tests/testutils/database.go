package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"tunevault/db"
	"tunevault/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) *sql.DB {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	return testDB
}

func SetupTestRepositoryFactory(t *testing.T) *db.RepositoryFactory {
	return db.NewRepositoryFactory(SetupTestDatabase(t))
}

func GetTestConfig(t *testing.T) *config.Config {
	tempDir := t.TempDir()
	cfg := &config.Config{
		Port:           "0",
		Environment:    "test",
		Release:        "test",
		JwtKey:         []byte("test_jwt_secret_key_for_testing_only"),
		SQLitePath:     filepath.Join(tempDir, "test.db"),
		MusicDir:       filepath.Join(tempDir, "music"),
		CoversDir:      filepath.Join(tempDir, "covers"),
		AdminUsername:  "admin",
		AdminPassword:  "admin_password",
		MaxUploadBytes: config.DefaultMaxUploadBytes,
	}
	require.NoError(t, cfg.EnsureDirectories())
	return cfg
}
