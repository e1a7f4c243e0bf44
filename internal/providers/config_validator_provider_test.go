package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gamatrix/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: structures.Store{
			FilePath:   "/tmp/gamatrix.json",
			MaxBackups: 3,
		},
		Ingestion: structures.Ingestion{
			DBPath:         "/tmp/gamatrix-dbs",
			RescanInterval: 10 * time.Minute,
		},
		Users: []structures.User{
			{ID: 1, Username: "alice", DB: "alice.db"},
			{ID: 2, Username: "bob", DB: "bob.db"},
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *structures.Config)
	}{
		{"empty host", func(c *structures.Config) { c.WebServer.Host = "" }},
		{"zero port", func(c *structures.Config) { c.WebServer.Port = 0 }},
		{"empty log level", func(c *structures.Config) { c.Logger.Level = "" }},
		{"invalid log level", func(c *structures.Config) { c.Logger.Level = "verbose" }},
		{"missing store path", func(c *structures.Config) { c.Store.FilePath = "" }},
		{"too many backups", func(c *structures.Config) { c.Store.MaxBackups = 500 }},
		{"user without id", func(c *structures.Config) { c.Users[0].ID = 0 }},
		{"user without name", func(c *structures.Config) { c.Users[1].Username = "" }},
		{"duplicate user", func(c *structures.Config) { c.Users[1].ID = 1 }},
		{"negative rescan", func(c *structures.Config) { c.Ingestion.RescanInterval = -time.Second }},
		{"negative max players", func(c *structures.Config) {
			n := -1
			c.Metadata = map[string]structures.MetadataOverride{"Doom": {MaxPlayers: &n}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, NewCnfValidator(c).Validate())
		})
	}
}

const sampleConfig = `
webServer:
  host: 127.0.0.1
  port: 9090
store:
  filePath: /tmp/gamatrix.json
  maxBackups: 5
  compress: true
ingestion:
  dbPath: /tmp/dbs
  rescanInterval: 15m
users:
  - id: 1
    username: alice
    db: alice.db
  - id: 2
    username: bob
    db: bob.db
hidden:
  - Some Demo
metadata:
  Portal 2:
    comment: co-op campaign
    max_players: 2
logger:
  level: debug
  mode: 0644
  dir: /tmp/logs
cache:
  enabled: true
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfigProvider(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.Equal(t, 5, conf.Store.MaxBackups)
	assert.True(t, conf.Store.Compress)
	assert.Equal(t, 15*time.Minute, conf.Ingestion.RescanInterval)
	assert.Equal(t, int64(64<<20), conf.Ingestion.UploadMaxSize)
	require.Len(t, conf.Users, 2)
	assert.Equal(t, "bob", conf.Users[1].Username)
	assert.Equal(t, []string{"Some Demo"}, conf.Hidden)
	assert.Equal(t, 16, conf.Cache.Size)

	require.Len(t, conf.Metadata, 1)
	for _, meta := range conf.Metadata {
		assert.Equal(t, "co-op campaign", meta.Comment)
		require.NotNil(t, meta.MaxPlayers)
		assert.Equal(t, 2, *meta.MaxPlayers)
	}
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("GAMATRIX_STORE_PATH", "/var/lib/gamatrix/store.json")
	t.Setenv("GAMATRIX_MAX_BACKUPS", "7")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/gamatrix/store.json", conf.Store.FilePath)
	assert.Equal(t, 7, conf.Store.MaxBackups)
}

func TestNewConfigProvider_Missing(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_Invalid(t *testing.T) {
	path := writeConfig(t, "webServer:\n  host: \"\"\n")
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}
