package models

import (
	"slices"

	apperrors "gamatrix/internal/errors"
)

// GameRecord is one released title on one or more platforms, keyed in the
// catalog by its release key.
type GameRecord struct {
	ReleaseKey  string   `json:"release_key"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Platforms   []string `json:"platforms"`
	Owners      []int    `json:"owners"`
	Installed   []int    `json:"installed"`
	IgdbKey     string   `json:"igdb_key"`
	Multiplayer bool     `json:"multiplayer"`
	MaxPlayers  *int     `json:"max_players"`
	Comment     *string  `json:"comment"`
	URL         *string  `json:"url"`
}

func (g *GameRecord) HasOwner(userID int) bool {
	return hasID(g.Owners, userID)
}

func (g *GameRecord) IsInstalledBy(userID int) bool {
	return hasID(g.Installed, userID)
}

func (g *GameRecord) AddOwner(userID int) {
	g.Owners = addID(g.Owners, userID)
}

// MarkInstalled records userID as having the game installed. The user is
// added as an owner too so installed never escapes owners.
func (g *GameRecord) MarkInstalled(userID int) {
	g.Owners = addID(g.Owners, userID)
	g.Installed = addID(g.Installed, userID)
}

// DropUser removes userID from owners and installed.
func (g *GameRecord) DropUser(userID int) {
	g.Owners = removeID(g.Owners, userID)
	g.Installed = removeID(g.Installed, userID)
}

// Orphaned reports whether nobody owns the game anymore.
func (g *GameRecord) Orphaned() bool {
	return len(g.Owners) == 0
}

func (g *GameRecord) Clone() *GameRecord {
	c := *g
	c.Platforms = slices.Clone(g.Platforms)
	c.Owners = slices.Clone(g.Owners)
	c.Installed = slices.Clone(g.Installed)
	if g.MaxPlayers != nil {
		v := *g.MaxPlayers
		c.MaxPlayers = &v
	}
	if g.Comment != nil {
		v := *g.Comment
		c.Comment = &v
	}
	if g.URL != nil {
		v := *g.URL
		c.URL = &v
	}
	return &c
}

// Normalize sorts and deduplicates the set fields and replaces nil slices
// with empty ones.
func (g *GameRecord) Normalize() {
	g.Platforms = NormalizePlatforms(g.Platforms)
	g.Owners = NormalizeIDs(g.Owners)
	g.Installed = NormalizeIDs(g.Installed)
}

// Validate checks the catalog invariants of a single record.
func (g *GameRecord) Validate() error {
	switch {
	case g.ReleaseKey == "":
		return apperrors.NewValidationError("release_key", "is empty")
	case len(g.Platforms) == 0:
		return apperrors.NewValidationError("platforms", g.ReleaseKey+" has no platforms")
	case len(g.Owners) == 0:
		return apperrors.NewValidationError("owners", g.ReleaseKey+" has no owners")
	case !SubsetIDs(g.Installed, g.Owners):
		return apperrors.NewValidationError("installed", g.ReleaseKey+" is installed by a user who does not own it")
	case g.MaxPlayers != nil && *g.MaxPlayers < 0:
		return apperrors.NewValidationError("max_players", g.ReleaseKey+" has a negative player count")
	}
	return nil
}

// IntPtr and StringPtr build optional field values.
func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
