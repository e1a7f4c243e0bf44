package reconcile

import (
	"fmt"
	"slices"

	"gamatrix/internal/models"
)

// Issue is one integrity problem found by Audit.
type Issue struct {
	Severity   string `json:"severity"`
	ReleaseKey string `json:"release_key,omitempty"`
	UserID     int    `json:"user_id"`
	Message    string `json:"message"`
}

// Audit cross-checks a loaded store: every owner and installer must be a
// known user, installers must own the game, and stored users should still
// be configured. Results are sorted for stable reports.
func Audit(store *models.DataStore, configured []int) []Issue {
	var issues []Issue

	for _, id := range store.UserIDs() {
		if !slices.Contains(configured, id) {
			issues = append(issues, Issue{
				Severity: "warning",
				UserID:   id,
				Message:  fmt.Sprintf("user %d is in the data store but not in the config", id),
			})
		}
	}

	for _, g := range store.SortedGames() {
		for _, id := range g.Owners {
			if _, ok := store.Users[id]; !ok {
				issues = append(issues, Issue{
					Severity:   "error",
					ReleaseKey: g.ReleaseKey,
					UserID:     id,
					Message:    fmt.Sprintf("game %s owned by non-existent user %d", g.ReleaseKey, id),
				})
			}
		}
		for _, id := range g.Installed {
			switch {
			case store.Users[id] == nil:
				issues = append(issues, Issue{
					Severity:   "error",
					ReleaseKey: g.ReleaseKey,
					UserID:     id,
					Message:    fmt.Sprintf("game %s installed by non-existent user %d", g.ReleaseKey, id),
				})
			case !g.HasOwner(id):
				issues = append(issues, Issue{
					Severity:   "error",
					ReleaseKey: g.ReleaseKey,
					UserID:     id,
					Message:    fmt.Sprintf("game %s installed by user %d who doesn't own it", g.ReleaseKey, id),
				})
			}
		}
	}
	return issues
}
