package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tunevault/internal/config"
	"tunevault/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func CreateTestUser(t *testing.T, username, password string, isAdmin bool) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}
}

// CreateTestTrack builds a track row and writes its backing audio file into
// the configured music directory.
func CreateTestTrack(t *testing.T, cfg *config.Config, title, artist string) *models.Track {
	audioName := uuid.New().String() + ".mp3"
	err := os.WriteFile(filepath.Join(cfg.MusicDir, audioName), []byte("fake mp3 bytes"), 0644)
	require.NoError(t, err)

	return &models.Track{
		ID:              uuid.New().String(),
		Title:           title,
		Artist:          artist,
		AudioFilename:   audioName,
		DurationSeconds: 180,
		CreatedAt:       time.Now(),
	}
}
