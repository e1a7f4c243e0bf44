package enrichment

import (
	"os"

	apperrors "gamatrix/internal/errors"

	json "github.com/goccy/go-json"
)

type cacheFile struct {
	Games map[string]Info `json:"games"`
}

// FileSource serves lookups from a JSON metadata cache written by an
// earlier enrichment run:
//
//	{"games": {"steam_620": {"max_players": 2, "game_modes": ["singleplayer", "coop"]}}}
type FileSource struct {
	games map[string]Info
}

func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("metadata cache", path, err)
		}
		return nil, err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, apperrors.NewValidationError("games", "unreadable metadata cache: "+err.Error())
	}
	if cf.Games == nil {
		cf.Games = make(map[string]Info)
	}
	return &FileSource{games: cf.Games}, nil
}

func (f *FileSource) Lookup(key string) (Info, bool, error) {
	info, ok := f.games[key]
	return info, ok, nil
}

func (f *FileSource) Len() int {
	return len(f.games)
}
