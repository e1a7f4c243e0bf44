// Package enrichment reads game metadata (player counts, game modes) from an
// external lookup service and folds it into catalog records.
package enrichment

import (
	"slices"

	"gamatrix/internal/models"
)

type GameMode string

const (
	ModeSinglePlayer GameMode = "singleplayer"
	ModeMultiplayer  GameMode = "multiplayer"
	ModeCoop         GameMode = "coop"
	ModeSplitScreen  GameMode = "splitscreen"
	ModeMMO          GameMode = "mmo"
	ModeBattleRoyale GameMode = "battleroyale"
)

var multiplayerModes = []GameMode{ModeMultiplayer, ModeCoop, ModeSplitScreen, ModeMMO, ModeBattleRoyale}

// Info is what the metadata service knows about one reference key. A nil
// MaxPlayers means unknown.
type Info struct {
	MaxPlayers *int       `json:"max_players"`
	GameModes  []GameMode `json:"game_modes"`
}

// Source answers metadata lookups by external reference key. found is false
// when the service has no entry for the key.
type Source interface {
	Lookup(key string) (info Info, found bool, err error)
}

// NoopSource knows nothing; records keep whatever ingestion gave them.
type NoopSource struct{}

func (NoopSource) Lookup(string) (Info, bool, error) { return Info{}, false, nil }

// ApplyMultiplayerStatus sets MaxPlayers and Multiplayer on g. A player
// count already on the record (an author override) wins. Otherwise a
// positive count from the service is used; failing that, a title whose only
// mode is single player gets a count of 1, and any multiplayer mode marks it
// multiplayer with the count left unknown.
func ApplyMultiplayerStatus(g *models.GameRecord, info Info, found bool) {
	if g.MaxPlayers != nil {
		g.Multiplayer = g.Multiplayer || *g.MaxPlayers > 1
		return
	}
	if !found {
		return
	}
	if info.MaxPlayers != nil && *info.MaxPlayers > 0 {
		g.MaxPlayers = models.IntPtr(*info.MaxPlayers)
		g.Multiplayer = *info.MaxPlayers > 1
		return
	}
	if len(info.GameModes) == 1 && info.GameModes[0] == ModeSinglePlayer {
		g.MaxPlayers = models.IntPtr(1)
		return
	}
	for _, mode := range info.GameModes {
		if slices.Contains(multiplayerModes, mode) {
			g.Multiplayer = true
			return
		}
	}
}
