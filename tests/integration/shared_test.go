package integration

import (
	"context"
	"io"
	"testing"

	"tunevault/db"
	"tunevault/internal/auth"
	"tunevault/internal/config"
	"tunevault/internal/metrics"
	"tunevault/internal/tracks"
	"tunevault/internal/users"
	"tunevault/internal/web"
	"tunevault/middleware"
	"tunevault/tests/testutils"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	server   *testutils.TestServer
	cfg      *config.Config
	counters *metrics.Counters
	tracks   db.TrackRepository
}

// setupApp wires the full application against a temp database and temp
// media directories, the same way main does.
func setupApp(t *testing.T) *testApp {
	cfg := testutils.GetTestConfig(t)

	sqliteDB := testutils.SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(sqliteDB)
	manager := db.NewManager()
	t.Cleanup(manager.Stop)

	logger := log.New(io.Discard)
	tokenService := auth.NewService(cfg.JwtKey)
	counters := metrics.NewCounters()

	userService := users.NewUserService(factory.NewUserRepository(), manager, logger)
	trackRepo := factory.NewTrackRepository()
	trackService := tracks.NewTrackService(trackRepo, manager, cfg, logger)

	require.NoError(t, userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword))

	router := &web.Router{
		Auth:         users.NewAuthHandlers(userService, tokenService, logger),
		Tracks:       tracks.NewTrackHandlers(trackService, cfg, counters, logger),
		Metrics:      metrics.NewHandlers(counters),
		Middleware:   middleware.NewMiddleware(tokenService),
		LoginLimiter: middleware.NewLoginLimiter(1000, 1000),
		Counters:     counters,
		Logger:       logger,
	}

	return &testApp{
		server:   testutils.NewTestServer(t, router.SetupRoutes()),
		cfg:      cfg,
		counters: counters,
		tracks:   trackRepo,
	}
}

func (app *testApp) register(t *testing.T, username, password string) {
	resp := app.server.POST("/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	var body map[string]bool
	testutils.AssertJSONResponse(t, resp, 200, &body)
	require.True(t, body["success"])
}

func (app *testApp) login(t *testing.T, username, password string) (string, map[string]interface{}) {
	resp := app.server.POST("/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	var body struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	testutils.AssertJSONResponse(t, resp, 200, &body)
	require.NotEmpty(t, body.Token)
	return body.Token, body.User
}
