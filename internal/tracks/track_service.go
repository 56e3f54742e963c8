package tracks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tunevault/db"
	"tunevault/internal/config"
	"tunevault/models"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrMissingTitle  = errors.New("title is required")
	ErrMissingArtist = errors.New("artist is required")
	ErrMissingAudio  = errors.New("audio file is required")
	ErrAudioType     = errors.New("audio file must have an audio/* content type")
	ErrCoverType     = errors.New("cover file must have an image/* content type")
	ErrFileTooLarge  = errors.New("file exceeds the maximum upload size")
)

// IsValidationError reports whether err is a client-side upload fault
func IsValidationError(err error) bool {
	for _, v := range []error{
		ErrMissingTitle, ErrMissingArtist, ErrMissingAudio,
		ErrAudioType, ErrCoverType, ErrFileTooLarge,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// TrackService owns the catalog store and the ingestion path
type TrackService struct {
	repo      db.TrackRepository
	dbManager *db.Manager
	cfg       *config.Config
	logger    *log.Logger
}

// NewTrackService creates a new TrackService
func NewTrackService(repo db.TrackRepository, dbManager *db.Manager, cfg *config.Config, logger *log.Logger) *TrackService {
	return &TrackService{repo: repo, dbManager: dbManager, cfg: cfg, logger: logger}
}

// List returns all catalog entries, newest first
func (s *TrackService) List(ctx context.Context) ([]*models.Track, error) {
	tracks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing tracks: %w", err)
	}
	if tracks == nil {
		tracks = []*models.Track{}
	}
	return tracks, nil
}

// FindByID looks up a single catalog entry
func (s *TrackService) FindByID(ctx context.Context, id string) (*models.Track, error) {
	return s.repo.FindByID(ctx, id)
}

// AudioPath resolves the stored audio file for a track
func (s *TrackService) AudioPath(track *models.Track) string {
	return filepath.Join(s.cfg.MusicDir, track.AudioFilename)
}

// CoverPath resolves the stored cover file for a track, if it has one
func (s *TrackService) CoverPath(track *models.Track) (string, bool) {
	if track.CoverFilename == nil {
		return "", false
	}
	return filepath.Join(s.cfg.CoversDir, *track.CoverFilename), true
}

// Ingest consumes a multipart upload part by part. Files are size-checked
// while streaming, never buffered whole, and are stored under fresh random
// names so client-supplied names cannot traverse paths or collide. A catalog
// row is created only once every file is durably on disk; if the insert
// fails afterwards the stored files are removed again.
func (s *TrackService) Ingest(ctx context.Context, callerID int64, mr *multipart.Reader) (*models.Track, error) {
	var (
		title, artist string
		duration      int
		audioName     string
		coverName     string
		stored        []string
	)

	cleanup := func() {
		for _, path := range stored {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to remove stored upload", "path", path, "error", err)
			}
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("error reading multipart stream: %w", err)
		}

		switch part.FormName() {
		case "title":
			title, err = readField(part)
		case "artist":
			artist, err = readField(part)
		case "duration":
			var raw string
			raw, err = readField(part)
			if err == nil && raw != "" {
				// Malformed durations fall back to zero.
				duration, _ = strconv.Atoi(raw)
				if duration < 0 {
					duration = 0
				}
			}
		case "audio":
			var name string
			name, err = s.saveFile(part, s.cfg.MusicDir, "audio/", ErrAudioType)
			if err == nil {
				// A repeated file field supersedes the earlier copy.
				if audioName != "" {
					stored = s.removeStored(stored, filepath.Join(s.cfg.MusicDir, audioName))
				}
				audioName = name
				stored = append(stored, filepath.Join(s.cfg.MusicDir, audioName))
			}
		case "cover":
			var name string
			name, err = s.saveFile(part, s.cfg.CoversDir, "image/", ErrCoverType)
			if err == nil {
				if coverName != "" {
					stored = s.removeStored(stored, filepath.Join(s.cfg.CoversDir, coverName))
				}
				coverName = name
				stored = append(stored, filepath.Join(s.cfg.CoversDir, coverName))
			}
		default:
			// Unknown fields are ignored.
		}
		part.Close()

		if err != nil {
			cleanup()
			return nil, err
		}
	}

	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)

	var missing error
	switch {
	case title == "":
		missing = ErrMissingTitle
	case artist == "":
		missing = ErrMissingArtist
	case audioName == "":
		missing = ErrMissingAudio
	}
	if missing != nil {
		cleanup()
		return nil, missing
	}

	track := &models.Track{
		ID:              uuid.New().String(),
		Title:           title,
		Artist:          artist,
		AudioFilename:   audioName,
		DurationSeconds: duration,
		UploadedBy:      callerID,
	}
	if coverName != "" {
		track.CoverFilename = &coverName
	}

	created, err := s.dbManager.CreateTrack(s.repo, ctx, track)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("error recording track: %w", err)
	}

	s.logger.Info("track ingested", "id", created.ID, "title", created.Title, "artist", created.Artist)
	return created, nil
}

// removeStored deletes a file that will not be referenced by the catalog
// and drops it from the cleanup list.
func (s *TrackService) removeStored(stored []string, path string) []string {
	if err := os.Remove(path); err != nil {
		s.logger.Warn("failed to remove superseded upload", "path", path, "error", err)
	}
	for i, p := range stored {
		if p == path {
			return append(stored[:i], stored[i+1:]...)
		}
	}
	return stored
}

// saveFile streams one uploaded file to dir under a generated name,
// rejecting a wrong declared media type before any bytes are written and an
// oversized body as soon as the cap is crossed.
func (s *TrackService) saveFile(part *multipart.Part, dir, typePrefix string, typeErr error) (string, error) {
	declared := part.Header.Get("Content-Type")
	if !strings.HasPrefix(declared, typePrefix) {
		return "", typeErr
	}

	name := uuid.New().String() + sanitizeExt(part.FileName())
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}

	// Copy one byte past the cap so an exactly-full file passes and an
	// oversized one is caught without buffering the rest.
	written, err := io.Copy(dst, io.LimitReader(part, s.cfg.MaxUploadBytes+1))
	closeErr := dst.Close()

	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("error writing file: %w", err)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("error closing file: %w", closeErr)
	}
	if written > s.cfg.MaxUploadBytes {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return name, nil
}

func readField(part *multipart.Part) (string, error) {
	// Text fields never exceed a few bytes; cap the read.
	data, err := io.ReadAll(io.LimitReader(part, 4096))
	if err != nil {
		return "", fmt.Errorf("error reading form field: %w", err)
	}
	return string(data), nil
}

// sanitizeExt keeps only a plain extension from the client-supplied name
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}
