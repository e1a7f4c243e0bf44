// Package reconcile merges per-user game sets into the shared catalog and
// answers the set comparisons the query layer is built from.
package reconcile

import (
	"slices"

	"gamatrix/internal/models"
)

// Ingest replaces the user's record wholesale and merges their games into
// the catalog. A nil store starts a fresh one.
func Ingest(store *models.DataStore, user *models.UserRecord, incoming map[string]*models.GameRecord) *models.DataStore {
	if store == nil {
		store = models.NewDataStore()
	}
	store.Users[user.UserID] = user.Clone()
	return Merge(store, user.UserID, incoming)
}

// Merge folds one user's incoming records into the catalog. Applying the
// same input twice is a no-op, and the union fields end up identical
// whatever order users are merged in.
func Merge(store *models.DataStore, userID int, incoming map[string]*models.GameRecord) *models.DataStore {
	if store == nil {
		store = models.NewDataStore()
	}
	for key, in := range incoming {
		if in == nil {
			continue
		}
		existing, ok := store.Games[key]
		if !ok {
			store.Games[key] = insertable(userID, key, in)
			continue
		}
		mergeInto(existing, userID, in)
	}
	return store
}

func insertable(userID int, key string, in *models.GameRecord) *models.GameRecord {
	g := in.Clone()
	g.ReleaseKey = key
	g.Normalize()
	g.AddOwner(userID)
	g.Installed = slices.DeleteFunc(g.Installed, func(id int) bool { return !g.HasOwner(id) })
	return g
}

func mergeInto(existing *models.GameRecord, userID int, in *models.GameRecord) {
	existing.AddOwner(userID)
	if in.IsInstalledBy(userID) {
		existing.MarkInstalled(userID)
	}
	existing.Platforms = models.UnionPlatforms(existing.Platforms, in.Platforms)
	existing.Multiplayer = existing.Multiplayer || in.Multiplayer

	if in.MaxPlayers != nil && (existing.MaxPlayers == nil || *in.MaxPlayers > *existing.MaxPlayers) {
		existing.MaxPlayers = models.IntPtr(*in.MaxPlayers)
	}
	if existing.Comment == nil && in.Comment != nil {
		existing.Comment = models.StringPtr(*in.Comment)
	}
	if existing.URL == nil && in.URL != nil {
		existing.URL = models.StringPtr(*in.URL)
	}
}

// RemoveUser deletes the user record and strips the user from every game.
// Games left without owners are deleted; their count is returned.
func RemoveUser(store *models.DataStore, userID int) int {
	if store == nil {
		return 0
	}
	delete(store.Users, userID)

	removed := 0
	for key, g := range store.Games {
		g.DropUser(userID)
		if g.Orphaned() {
			delete(store.Games, key)
			removed++
		}
	}
	return removed
}
