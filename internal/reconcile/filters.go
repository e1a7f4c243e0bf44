package reconcile

import (
	"slices"

	"gamatrix/internal/models"
)

// OwnedByAll keeps a game iff every target user owns it.
func OwnedByAll(g *models.GameRecord, targets []int) bool {
	return models.SubsetIDs(targets, g.Owners)
}

// OwnedByAny keeps a game iff at least one target user owns it.
func OwnedByAny(g *models.GameRecord, targets []int) bool {
	return slices.ContainsFunc(targets, g.HasOwner)
}

// OwnedExclusively keeps a game iff some target user owns it and no known
// user outside the targets does.
func OwnedExclusively(g *models.GameRecord, targets, allUsers []int) bool {
	if !OwnedByAny(g, targets) {
		return false
	}
	for _, id := range allUsers {
		if !slices.Contains(targets, id) && g.HasOwner(id) {
			return false
		}
	}
	return true
}

// OnlyOnExcludedPlatforms reports whether every platform of the game is
// excluded. A game with one remaining platform survives.
func OnlyOnExcludedPlatforms(g *models.GameRecord, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, p := range g.Platforms {
		if !slices.Contains(excluded, p) {
			return false
		}
	}
	return true
}

// InstalledByAll keeps a game iff every target user has it installed.
func InstalledByAll(g *models.GameRecord, targets []int) bool {
	return models.SubsetIDs(targets, g.Installed)
}
