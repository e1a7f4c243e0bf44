package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gamatrix/internal/controllers"
	"gamatrix/internal/enrichment"
	"gamatrix/internal/ingestion"
	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/query"
	"gamatrix/internal/reconcile"
	"gamatrix/internal/services"
	"gamatrix/internal/storage"
	"gamatrix/internal/structures"
	"gamatrix/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	conf := &structures.Config{
		AppName:   "gamatrix",
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8080},
		Store:     structures.Store{FilePath: filepath.Join(dir, "gamatrix.json"), MaxBackups: 1},
		Ingestion: structures.Ingestion{DBPath: dir},
		Users: []structures.User{
			{ID: 1, Username: "alice", DB: "alice.db"},
			{ID: 2, Username: "bob", DB: "bob.db"},
		},
	}
	logger := &testutil.MockLogger{}
	comp, err := storage.NewZstdCompressor()
	require.NoError(t, err)
	files := storage.NewFileManager(conf, comp, logger)

	store := models.NewDataStore()
	reconcile.Ingest(store, &models.UserRecord{UserID: 1, Username: "alice"}, map[string]*models.GameRecord{
		"steam_1": {Title: "Portal 2", Slug: "portal2", Platforms: []string{"steam"}, Multiplayer: true},
		"gog_2":   {Title: "Baldur's Gate", Slug: "baldursgate", Platforms: []string{"gog"}, Multiplayer: true},
	})
	reconcile.Ingest(store, &models.UserRecord{UserID: 2, Username: "bob"}, map[string]*models.GameRecord{
		"steam_1": {Title: "Portal 2", Slug: "portal2", Platforms: []string{"steam"}, Multiplayer: true},
	})
	require.NoError(t, files.Save(store))

	metrics := providers.NewMetricsProvider(conf)
	extractor := ingestion.NewExtractor(conf, enrichment.NoopSource{}, logger)
	catalog := services.NewCatalogService(conf, extractor, files, query.NewEngine(), metrics, logger)
	require.True(t, catalog.Restore())

	api := controllers.NewApiController(logger, catalog, testutil.NewMockCache(), conf)
	scheduler := storage.NewScheduler(conf, logger, catalog)
	return NewApp(controllers.NewHealthController(catalog), catalog, scheduler, conf, logger, InitRoutes(api), metrics)
}

func serve(app *App, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestInitRoutes_RegistersRoutes(t *testing.T) {
	ac := controllers.NewApiController(&testutil.MockLogger{}, nil, testutil.NewMockCache(), &structures.Config{})
	routes := InitRoutes(ac).GetRoutes()

	patterns := make([]string, 0, len(routes))
	for _, r := range routes {
		patterns = append(patterns, r.Pattern())
	}
	assert.Equal(t, []string{"GET /compare", "POST /upload", "GET /users", "POST /users/remove"}, patterns)
}

func TestApp_Compare(t *testing.T) {
	app := newTestApp(t)

	rr := serve(app, http.MethodGet, "/compare?user=1&user=2")
	require.Equal(t, http.StatusOK, rr.Code)

	var res query.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Games, 1)
	assert.Equal(t, "steam_1", res.Games[0].ReleaseKey)

	rr = serve(app, http.MethodGet, "/compare?user=1&mode=all")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Total)
}

func TestApp_MethodEnforcement(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(app, http.MethodPost, "/compare?user=1").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(app, http.MethodGet, "/users/remove?user=1").Code)
	assert.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/metrics").Code, "metrics disabled")
}

func TestApp_RemoveUserThenHealth(t *testing.T) {
	app := newTestApp(t)

	rr := serve(app, http.MethodPost, "/users/remove?user=1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":1,"removed_games":1}`, rr.Body.String())

	rr = serve(app, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, float64(1), health["users"])
	assert.Equal(t, float64(1), health["games"])

	rr = serve(app, http.MethodGet, "/users")
	require.Equal(t, http.StatusOK, rr.Code)
	var users []models.UserRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, 2, users[0].UserID)
}
