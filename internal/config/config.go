package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadBytes caps a single uploaded file at 100 MiB.
const DefaultMaxUploadBytes = 100 << 20

// Config holds the immutable process configuration, built once at startup
// and passed explicitly to every component that needs it.
type Config struct {
	Port           string
	Environment    string
	Release        string
	JwtKey         []byte
	SQLitePath     string
	MusicDir       string
	CoversDir      string
	AdminUsername  string
	AdminPassword  string
	MaxUploadBytes int64
}

// Load reads configuration from a .env file (if present) and the
// environment. The signing secret and bootstrap admin credentials are
// mandatory; everything else has a default.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may carry everything.
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is not set")
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME or ADMIN_PASSWORD is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	environment := os.Getenv("APP_ENV")
	if environment == "" {
		environment = "development"
	}

	release := os.Getenv("RELEASE")
	if release == "" {
		release = "dev"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dataDir, "tunevault.db")
	}

	musicDir := os.Getenv("MUSIC_DIR")
	if musicDir == "" {
		musicDir = filepath.Join(dataDir, "music")
	}

	coversDir := os.Getenv("COVERS_DIR")
	if coversDir == "" {
		coversDir = filepath.Join(dataDir, "covers")
	}

	maxUpload := int64(DefaultMaxUploadBytes)
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %q", raw)
		}
		maxUpload = parsed
	}

	return &Config{
		Port:           port,
		Environment:    environment,
		Release:        release,
		JwtKey:         []byte(jwtSecret),
		SQLitePath:     sqlitePath,
		MusicDir:       musicDir,
		CoversDir:      coversDir,
		AdminUsername:  adminUsername,
		AdminPassword:  adminPassword,
		MaxUploadBytes: maxUpload,
	}, nil
}

// EnsureDirectories creates the media directories. Inability to create them
// is an unrecoverable startup failure.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.MusicDir, c.CoversDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
