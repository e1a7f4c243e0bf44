package reconcile

import (
	"testing"

	"gamatrix/internal/models"

	"github.com/stretchr/testify/assert"
)

func owned(owners ...int) *models.GameRecord {
	return &models.GameRecord{ReleaseKey: "steam_1", Platforms: []string{"steam"}, Owners: owners, Installed: []int{}}
}

func TestOwnedExclusively(t *testing.T) {
	all := []int{1, 2, 3}
	target := []int{1}

	assert.True(t, OwnedExclusively(owned(1), target, all))
	assert.False(t, OwnedExclusively(owned(1, 2), target, all))
	assert.False(t, OwnedExclusively(owned(2), target, all))
	assert.True(t, OwnedExclusively(owned(1, 2), []int{1, 2}, all))
	assert.True(t, OwnedExclusively(owned(2), []int{1, 2}, all))
}

func TestOwnedByAll(t *testing.T) {
	assert.True(t, OwnedByAll(owned(1, 2, 3), []int{1, 3}))
	assert.False(t, OwnedByAll(owned(1, 2), []int{1, 3}))
	assert.True(t, OwnedByAll(owned(1), nil))
}

func TestOwnedByAny(t *testing.T) {
	assert.True(t, OwnedByAny(owned(3), []int{1, 3}))
	assert.False(t, OwnedByAny(owned(2), []int{1, 3}))
}

func TestOnlyOnExcludedPlatforms(t *testing.T) {
	g := &models.GameRecord{Platforms: []string{"gog", "steam"}}

	assert.False(t, OnlyOnExcludedPlatforms(g, nil))
	assert.False(t, OnlyOnExcludedPlatforms(g, []string{"steam"}))
	assert.True(t, OnlyOnExcludedPlatforms(g, []string{"steam", "gog", "epic"}))
}

func TestInstalledByAll(t *testing.T) {
	g := &models.GameRecord{Owners: []int{1, 2, 3}, Installed: []int{1, 2}}

	assert.True(t, InstalledByAll(g, []int{1, 2}))
	assert.False(t, InstalledByAll(g, []int{1, 3}))
}

func TestAudit(t *testing.T) {
	store := models.NewDataStore()
	store.Users[1] = user(1, "alice")
	store.Users[2] = user(2, "bob")
	store.Games["steam_1"] = &models.GameRecord{ReleaseKey: "steam_1", Slug: "a", Platforms: []string{"steam"}, Owners: []int{1, 9}, Installed: []int{1}}
	store.Games["gog_2"] = &models.GameRecord{ReleaseKey: "gog_2", Slug: "b", Platforms: []string{"gog"}, Owners: []int{2}, Installed: []int{1}}

	issues := Audit(store, []int{1})

	assert.Len(t, issues, 3)
	assert.Equal(t, "warning", issues[0].Severity)
	assert.Equal(t, 2, issues[0].UserID)
	assert.Equal(t, "game steam_1 owned by non-existent user 9", issues[1].Message)
	assert.Equal(t, "game gog_2 installed by user 1 who doesn't own it", issues[2].Message)
}

func TestAudit_CleanStore(t *testing.T) {
	store := Ingest(nil, user(1, "alice"), batch(game("steam_1", "Portal", 1, true)))
	assert.Empty(t, Audit(store, []int{1}))
}
