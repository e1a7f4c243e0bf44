package providers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gamatrix/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogTypeByRequestType(t *testing.T) {
	assert.Equal(t, TypePost, GetLogTypeByRequestType("POST"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("GET"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("DELETE"))
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "ingest", TypeIngest.String())
	assert.Equal(t, "store", TypeStore.String())
}

func loggerConfig(dir, level string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: level,
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestNewLogProvider_SplitsAppAndAccessLogs(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir, "info"))
	require.NoError(t, err)

	logger.Infof(TypeIngest, "extracted %d games", 12)
	logger.Infof(TypeGet, "GET /compare")
	logger.Debugf(TypeStore, "below level")
	logger.Close()

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	access, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)

	assert.Contains(t, string(app), "extracted 12 games")
	assert.Contains(t, string(app), `"type":"ingest"`)
	assert.NotContains(t, string(app), "below level")
	assert.NotContains(t, string(app), "GET /compare")
	assert.Equal(t, 1, strings.Count(string(access), "GET /compare"))
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	_, err := NewLogProvider(loggerConfig("/nonexistent/directory/path", "info"))
	assert.Error(t, err)
}

func TestNewLogProvider_DirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := NewLogProvider(loggerConfig(file, "info"))
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	_, err := NewLogProvider(loggerConfig(t.TempDir(), "verbose"))
	assert.Error(t, err)
}
