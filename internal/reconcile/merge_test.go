package reconcile

import (
	"testing"

	"gamatrix/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(key, title string, owner int, installed bool) *models.GameRecord {
	g := &models.GameRecord{
		ReleaseKey: key,
		Title:      title,
		Slug:       models.Slug(title),
		Platforms:  []string{models.PlatformOf(key)},
		Owners:     []int{owner},
		Installed:  []int{},
		IgdbKey:    key,
	}
	if installed {
		g.Installed = []int{owner}
	}
	return g
}

func batch(games ...*models.GameRecord) map[string]*models.GameRecord {
	out := make(map[string]*models.GameRecord, len(games))
	for _, g := range games {
		out[g.ReleaseKey] = g
	}
	return out
}

func user(id int, name string) *models.UserRecord {
	return &models.UserRecord{UserID: id, Username: name}
}

// incoming batches for three users with overlapping libraries
func userBatches() map[int]map[string]*models.GameRecord {
	a1 := game("steam_1", "Portal", 1, true)
	a2 := game("gog_2", "Witcher", 1, false)
	a2.Multiplayer = false
	a2.MaxPlayers = models.IntPtr(1)

	b1 := game("steam_1", "Portal", 2, false)
	b1.Multiplayer = true
	b1.MaxPlayers = models.IntPtr(2)
	b2 := game("epic_3", "Rocket", 2, true)

	c1 := game("steam_1", "Portal", 3, true)
	c1.Platforms = []string{"steam", "unknown"}
	c1.MaxPlayers = nil
	c2 := game("gog_2", "Witcher", 3, true)
	c2.MaxPlayers = models.IntPtr(4)

	return map[int]map[string]*models.GameRecord{
		1: batch(a1, a2),
		2: batch(b1, b2),
		3: batch(c1, c2),
	}
}

func assertInvariants(t *testing.T, store *models.DataStore) {
	t.Helper()
	for key, g := range store.Games {
		assert.NotEmpty(t, g.Owners, key)
		assert.True(t, models.SubsetIDs(g.Installed, g.Owners), key)
	}
}

func TestMerge_InsertsAbsentGame(t *testing.T) {
	store := Merge(nil, 1, batch(game("steam_1", "Portal", 1, true)))

	require.Contains(t, store.Games, "steam_1")
	g := store.Games["steam_1"]
	assert.Equal(t, []int{1}, g.Owners)
	assert.Equal(t, []int{1}, g.Installed)
	assertInvariants(t, store)
}

func TestMerge_UnionRules(t *testing.T) {
	batches := userBatches()
	store := models.NewDataStore()
	for _, id := range []int{1, 2, 3} {
		Merge(store, id, batches[id])
	}

	portal := store.Games["steam_1"]
	assert.Equal(t, []int{1, 2, 3}, portal.Owners)
	assert.Equal(t, []int{1, 3}, portal.Installed)
	assert.Equal(t, []string{"steam", "unknown"}, portal.Platforms)
	assert.True(t, portal.Multiplayer)
	require.NotNil(t, portal.MaxPlayers)
	assert.Equal(t, 2, *portal.MaxPlayers)

	witcher := store.Games["gog_2"]
	assert.Equal(t, []int{1, 3}, witcher.Owners)
	assert.Equal(t, 4, *witcher.MaxPlayers)
	assertInvariants(t, store)
}

func TestMerge_InstalledIsNeverRemovedByMerge(t *testing.T) {
	store := Merge(nil, 1, batch(game("steam_1", "Portal", 1, true)))
	Merge(store, 1, batch(game("steam_1", "Portal", 1, false)))

	assert.Equal(t, []int{1}, store.Games["steam_1"].Installed)
}

func TestMerge_CommentAndURLFirstWriteWins(t *testing.T) {
	first := game("steam_1", "Portal", 1, false)
	second := game("steam_1", "Portal", 2, false)
	second.Comment = models.StringPtr("second")
	second.URL = models.StringPtr("https://example.com/portal")

	store := Merge(nil, 1, batch(first))
	Merge(store, 2, batch(second))
	g := store.Games["steam_1"]
	require.NotNil(t, g.Comment)
	assert.Equal(t, "second", *g.Comment)

	third := game("steam_1", "Portal", 3, false)
	third.Comment = models.StringPtr("third")
	Merge(store, 3, batch(third))
	assert.Equal(t, "second", *g.Comment)
	assert.Equal(t, "https://example.com/portal", *g.URL)
}

func TestMerge_UnknownMaxPlayersDoesNotOverride(t *testing.T) {
	withCount := game("steam_1", "Portal", 1, false)
	withCount.MaxPlayers = models.IntPtr(0)
	store := Merge(nil, 1, batch(withCount))

	Merge(store, 2, batch(game("steam_1", "Portal", 2, false)))
	require.NotNil(t, store.Games["steam_1"].MaxPlayers)
	assert.Equal(t, 0, *store.Games["steam_1"].MaxPlayers)
}

func TestMerge_Idempotent(t *testing.T) {
	batches := userBatches()
	once := models.NewDataStore()
	twice := models.NewDataStore()
	for _, id := range []int{1, 2, 3} {
		Merge(once, id, batches[id])
		Merge(twice, id, batches[id])
		Merge(twice, id, batches[id])
	}
	assert.Equal(t, once.Games, twice.Games)
}

func TestMerge_OrderIndependent(t *testing.T) {
	orders := [][]int{{1, 2, 3}, {3, 2, 1}, {2, 1, 3}, {3, 1, 2}}

	var reference *models.DataStore
	for _, order := range orders {
		batches := userBatches()
		store := models.NewDataStore()
		for _, id := range order {
			Merge(store, id, batches[id])
		}
		assertInvariants(t, store)

		if reference == nil {
			reference = store
			continue
		}
		require.Len(t, store.Games, len(reference.Games))
		for key, want := range reference.Games {
			got := store.Games[key]
			require.NotNil(t, got, key)
			assert.Equal(t, want.Owners, got.Owners, key)
			assert.Equal(t, want.Installed, got.Installed, key)
			assert.Equal(t, want.Platforms, got.Platforms, key)
			assert.Equal(t, want.Multiplayer, got.Multiplayer, key)
			assert.Equal(t, want.MaxPlayers, got.MaxPlayers, key)
		}
	}
}

func TestMerge_DoesNotAliasIncoming(t *testing.T) {
	in := game("steam_1", "Portal", 1, false)
	store := Merge(nil, 1, batch(in))
	Merge(store, 2, batch(game("steam_1", "Portal", 2, false)))

	assert.Equal(t, []int{1}, in.Owners)
}

func TestIngest_ReplacesUserRecord(t *testing.T) {
	store := Ingest(nil, &models.UserRecord{UserID: 1, Username: "alice", TotalGames: 1}, batch(game("steam_1", "Portal", 1, false)))
	Ingest(store, &models.UserRecord{UserID: 1, Username: "alice", TotalGames: 5}, nil)

	assert.Equal(t, 5, store.Users[1].TotalGames)
}

func TestRemoveUser_Cascades(t *testing.T) {
	batches := userBatches()
	store := models.NewDataStore()
	for _, id := range []int{1, 2, 3} {
		Ingest(store, user(id, "u"), batches[id])
	}

	removed := RemoveUser(store, 2)

	assert.Equal(t, 1, removed)
	assert.NotContains(t, store.Users, 2)
	assert.NotContains(t, store.Games, "epic_3")
	assert.Equal(t, []int{1, 3}, store.Games["steam_1"].Owners)
	assertInvariants(t, store)

	RemoveUser(store, 1)
	RemoveUser(store, 3)
	assert.Empty(t, store.Games)
	assert.Empty(t, store.Users)
}

func TestRemoveUser_NilStore(t *testing.T) {
	assert.Equal(t, 0, RemoveUser(nil, 1))
}
