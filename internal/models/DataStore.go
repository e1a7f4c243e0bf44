package models

import (
	"fmt"
	"sort"
	"strconv"

	apperrors "gamatrix/internal/errors"
)

// StoreVersion is the only document version this build reads and writes.
const StoreVersion = "1.0"

// DataStore is the persisted aggregate: every ingested user and the
// reconciled catalog of games keyed by release key.
type DataStore struct {
	Users       map[int]*UserRecord    `json:"users"`
	Games       map[string]*GameRecord `json:"games"`
	LastUpdated string                 `json:"last_updated"`
	Version     string                 `json:"version"`
}

func NewDataStore() *DataStore {
	return &DataStore{
		Users:   make(map[int]*UserRecord),
		Games:   make(map[string]*GameRecord),
		Version: StoreVersion,
	}
}

// Clone returns a deep copy, so readers can filter a snapshot while the
// writer keeps mutating the original.
func (ds *DataStore) Clone() *DataStore {
	c := &DataStore{
		Users:       make(map[int]*UserRecord, len(ds.Users)),
		Games:       make(map[string]*GameRecord, len(ds.Games)),
		LastUpdated: ds.LastUpdated,
		Version:     ds.Version,
	}
	for id, u := range ds.Users {
		c.Users[id] = u.Clone()
	}
	for k, g := range ds.Games {
		c.Games[k] = g.Clone()
	}
	return c
}

// UserIDs returns every known user id in ascending order.
func (ds *DataStore) UserIDs() []int {
	ids := make([]int, 0, len(ds.Users))
	for id := range ds.Users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Username returns the stored username, or a placeholder for unknown ids.
func (ds *DataStore) Username(userID int) string {
	if u, ok := ds.Users[userID]; ok && u.Username != "" {
		return u.Username
	}
	return "User_" + strconv.Itoa(userID)
}

// SortedGames returns the catalog ordered by slug, ties broken by release key.
func (ds *DataStore) SortedGames() []*GameRecord {
	games := make([]*GameRecord, 0, len(ds.Games))
	for _, g := range ds.Games {
		games = append(games, g)
	}
	SortBySlug(games)
	return games
}

func SortBySlug(games []*GameRecord) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Slug != games[j].Slug {
			return games[i].Slug < games[j].Slug
		}
		return games[i].ReleaseKey < games[j].ReleaseKey
	})
}

// Validate checks the document shape and every catalog invariant.
func (ds *DataStore) Validate() error {
	if ds.Version != StoreVersion {
		return apperrors.NewValidationError("version", fmt.Sprintf("unsupported version %q", ds.Version))
	}
	if ds.Users == nil {
		return apperrors.NewValidationError("users", "missing")
	}
	if ds.Games == nil {
		return apperrors.NewValidationError("games", "missing")
	}
	for id, u := range ds.Users {
		if u == nil {
			return apperrors.NewValidationError("users", fmt.Sprintf("user %d is null", id))
		}
		if u.UserID != id {
			return apperrors.NewValidationError("users", fmt.Sprintf("key %d holds user %d", id, u.UserID))
		}
	}
	for key, g := range ds.Games {
		if g == nil {
			return apperrors.NewValidationError("games", fmt.Sprintf("game %s is null", key))
		}
		if g.ReleaseKey != key {
			return apperrors.NewValidationError("games", fmt.Sprintf("key %s holds game %s", key, g.ReleaseKey))
		}
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}
