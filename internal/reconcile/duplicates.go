package reconcile

import (
	"slices"

	"gamatrix/internal/models"
)

// MergeDuplicateTitles folds cross-platform releases of the same title into
// one record. The games are sorted by slug and scanned once, left to right:
// an entry whose slug and owner set equal those of the entry kept just
// before it is merged into that entry (platforms and installed are unioned)
// and its key is dropped. Only neighbours are compared, so two releases of a
// title separated by a differently-owned release stay apart.
//
// The input records are not modified; the result holds copies.
func MergeDuplicateTitles(games []*models.GameRecord) []*models.GameRecord {
	sorted := slices.Clone(games)
	models.SortBySlug(sorted)

	out := make([]*models.GameRecord, 0, len(sorted))
	for _, g := range sorted {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if g.Slug != "" && prev.Slug == g.Slug && slices.Equal(prev.Owners, g.Owners) {
				prev.Platforms = models.UnionPlatforms(prev.Platforms, g.Platforms)
				prev.Installed = models.UnionIDs(prev.Installed, g.Installed)
				continue
			}
		}
		out = append(out, g.Clone())
	}
	return out
}
