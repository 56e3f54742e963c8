package tracks_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"tunevault/db"
	"tunevault/internal/config"
	"tunevault/internal/tracks"
	"tunevault/tests/testutils"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service *tracks.TrackService
	repo    db.TrackRepository
	cfg     *config.Config
}

func setupFixture(t *testing.T) *fixture {
	factory := testutils.SetupTestRepositoryFactory(t)
	manager := db.NewManager()
	t.Cleanup(manager.Stop)

	cfg := testutils.GetTestConfig(t)
	repo := factory.NewTrackRepository()
	service := tracks.NewTrackService(repo, manager, cfg, log.New(io.Discard))
	return &fixture{service: service, repo: repo, cfg: cfg}
}

type part struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func buildMultipart(t *testing.T, fields map[string]string, files []part) *multipart.Reader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		header.Set("Content-Type", f.contentType)
		w, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return multipart.NewReader(&buf, writer.Boundary())
}

func dirEntries(t *testing.T, dir string) int {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestIngest(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band", "duration": "215"},
		[]part{
			{"audio", "song.mp3", "audio/mpeg", []byte("mp3 bytes")},
			{"cover", "cover.jpg", "image/jpeg", []byte("jpg bytes")},
		})

	track, err := f.service.Ingest(ctx, 1, mr)
	require.NoError(t, err)
	assert.Equal(t, "Song", track.Title)
	assert.Equal(t, "Band", track.Artist)
	assert.Equal(t, 215, track.DurationSeconds)
	assert.Equal(t, int64(1), track.UploadedBy)
	assert.True(t, track.HasCover)
	assert.NotEmpty(t, track.ID)

	// Files are stored under generated names, not the client-supplied ones.
	assert.NotEqual(t, "song.mp3", track.AudioFilename)
	assert.Equal(t, ".mp3", filepath.Ext(track.AudioFilename))

	data, err := os.ReadFile(filepath.Join(f.cfg.MusicDir, track.AudioFilename))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), data)

	stored, err := f.repo.FindByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, "Song", stored.Title)
}

func TestIngestWithoutCover(t *testing.T) {
	f := setupFixture(t)

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{{"audio", "song.mp3", "audio/mpeg", []byte("mp3 bytes")}})

	track, err := f.service.Ingest(context.Background(), 1, mr)
	require.NoError(t, err)
	assert.False(t, track.HasCover)
	assert.Nil(t, track.CoverFilename)
}

func TestIngestMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		files  []part
		want   error
	}{
		{"no title", map[string]string{"artist": "Band"},
			[]part{{"audio", "song.mp3", "audio/mpeg", []byte("x")}}, tracks.ErrMissingTitle},
		{"no artist", map[string]string{"title": "Song"},
			[]part{{"audio", "song.mp3", "audio/mpeg", []byte("x")}}, tracks.ErrMissingArtist},
		{"no audio", map[string]string{"title": "Song", "artist": "Band"},
			nil, tracks.ErrMissingAudio},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupFixture(t)
			ctx := context.Background()

			mr := buildMultipart(t, tc.fields, tc.files)
			_, err := f.service.Ingest(ctx, 1, mr)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, tracks.IsValidationError(err))

			// No catalog row and no orphaned files
			count, err := f.repo.CountAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
			assert.Equal(t, 0, dirEntries(t, f.cfg.MusicDir))
		})
	}
}

func TestIngestRejectsWrongMediaType(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{{"audio", "song.txt", "text/plain", []byte("not audio")}})

	_, err := f.service.Ingest(ctx, 1, mr)
	assert.ErrorIs(t, err, tracks.ErrAudioType)

	count, err := f.repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, dirEntries(t, f.cfg.MusicDir))
}

func TestIngestRejectsWrongCoverType(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{
			{"audio", "song.mp3", "audio/mpeg", []byte("mp3 bytes")},
			{"cover", "cover.pdf", "application/pdf", []byte("not an image")},
		})

	_, err := f.service.Ingest(ctx, 1, mr)
	assert.ErrorIs(t, err, tracks.ErrCoverType)

	// The already-stored audio file is cleaned up too.
	assert.Equal(t, 0, dirEntries(t, f.cfg.MusicDir))
	assert.Equal(t, 0, dirEntries(t, f.cfg.CoversDir))
}

func TestIngestRejectsOversizedFile(t *testing.T) {
	f := setupFixture(t)
	f.cfg.MaxUploadBytes = 16
	ctx := context.Background()

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{{"audio", "song.mp3", "audio/mpeg", bytes.Repeat([]byte("a"), 17)}})

	_, err := f.service.Ingest(ctx, 1, mr)
	assert.ErrorIs(t, err, tracks.ErrFileTooLarge)

	count, err := f.repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, dirEntries(t, f.cfg.MusicDir))
}

func TestIngestAcceptsExactlyFullFile(t *testing.T) {
	f := setupFixture(t)
	f.cfg.MaxUploadBytes = 16

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{{"audio", "song.mp3", "audio/mpeg", bytes.Repeat([]byte("a"), 16)}})

	_, err := f.service.Ingest(context.Background(), 1, mr)
	require.NoError(t, err)
}

func TestIngestRepeatedFileFieldSupersedesPrior(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	mr := buildMultipart(t,
		map[string]string{"title": "Song", "artist": "Band"},
		[]part{
			{"audio", "first.mp3", "audio/mpeg", []byte("first take")},
			{"audio", "second.mp3", "audio/mpeg", []byte("second take")},
		})

	track, err := f.service.Ingest(ctx, 1, mr)
	require.NoError(t, err)

	// Only the last copy stays on disk and it is the one the row references.
	assert.Equal(t, 1, dirEntries(t, f.cfg.MusicDir))
	data, err := os.ReadFile(filepath.Join(f.cfg.MusicDir, track.AudioFilename))
	require.NoError(t, err)
	assert.Equal(t, []byte("second take"), data)
}

func TestList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tracksList, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracksList)

	track := testutils.CreateTestTrack(t, f.cfg, "Song", "Band")
	_, err = f.repo.Create(ctx, track)
	require.NoError(t, err)

	tracksList, err = f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, tracksList, 1)
	assert.Equal(t, "Song", tracksList[0].Title)
}

func TestFindByIDNotFound(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.FindByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
