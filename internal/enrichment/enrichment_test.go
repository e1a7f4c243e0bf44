package enrichment

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/models"
	"gamatrix/internal/structures"
	"gamatrix/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMultiplayerStatus(t *testing.T) {
	tests := []struct {
		name      string
		preset    *int
		info      Info
		found     bool
		wantMax   *int
		wantMulti bool
	}{
		{"override wins", models.IntPtr(4), Info{MaxPlayers: models.IntPtr(1)}, true, models.IntPtr(4), true},
		{"override single", models.IntPtr(1), Info{GameModes: []GameMode{ModeCoop}}, true, models.IntPtr(1), false},
		{"not found", nil, Info{}, false, nil, false},
		{"service count", nil, Info{MaxPlayers: models.IntPtr(8)}, true, models.IntPtr(8), true},
		{"service count of one", nil, Info{MaxPlayers: models.IntPtr(1)}, true, models.IntPtr(1), false},
		{"single player only", nil, Info{GameModes: []GameMode{ModeSinglePlayer}}, true, models.IntPtr(1), false},
		{"coop mode", nil, Info{GameModes: []GameMode{ModeSinglePlayer, ModeCoop}}, true, nil, true},
		{"zero count falls back to modes", nil, Info{MaxPlayers: models.IntPtr(0), GameModes: []GameMode{ModeMMO}}, true, nil, true},
		{"no info", nil, Info{}, true, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &models.GameRecord{ReleaseKey: "steam_1", MaxPlayers: tt.preset}
			ApplyMultiplayerStatus(g, tt.info, tt.found)
			assert.Equal(t, tt.wantMax, g.MaxPlayers)
			assert.Equal(t, tt.wantMulti, g.Multiplayer)
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"games":{"steam_620":{"max_players":2,"game_modes":["singleplayer","coop"]}}}`), 0644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())

	info, found, err := src.Lookup("steam_620")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, *info.MaxPlayers)
	assert.Equal(t, []GameMode{ModeSinglePlayer, ModeCoop}, info.GameModes)

	_, found, err = src.Lookup("gog_1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestFileSource_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileSource(path)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestNewSource(t *testing.T) {
	logger := &testutil.MockLogger{}

	src := NewSource(&structures.Config{}, logger)
	assert.IsType(t, NoopSource{}, src)

	missing := &structures.Config{Enrichment: structures.Enrichment{CacheFile: filepath.Join(t.TempDir(), "none.json")}}
	src = NewSource(missing, logger)
	assert.IsType(t, NoopSource{}, src)
	assert.Equal(t, 1, logger.Count("warn"))

	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"games":{"steam_620":{"max_players":2}}}`), 0o644))
	src = NewSource(&structures.Config{Enrichment: structures.Enrichment{CacheFile: path}}, logger)
	assert.IsType(t, &FileSource{}, src)
	info, found, err := src.Lookup("steam_620")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, *info.MaxPlayers)
}
