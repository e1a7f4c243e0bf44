// Package query answers comparison questions over the catalog: which games
// a group of users have in common, optionally narrowed by platform,
// multiplayer support and install state.
package query

import (
	"math/rand/v2"
	"slices"

	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/models"
	"gamatrix/internal/reconcile"
)

type Mode string

const (
	// ModeCommon lists games every target user owns.
	ModeCommon Mode = "common"
	// ModeAll lists every game any target user owns.
	ModeAll Mode = "all"
)

// ParseMode maps the empty string to ModeCommon.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCommon:
		return ModeCommon, nil
	case ModeAll:
		return ModeAll, nil
	}
	return "", apperrors.NewValidationError("mode", "unknown comparison mode "+s)
}

// Options is one comparison request. It is built per request and never
// mutated by the engine.
type Options struct {
	TargetUsers         []int
	Mode                Mode
	ExcludedPlatforms   []string
	IncludeSinglePlayer bool
	InstalledOnly       bool
	Exclusive           bool
	Randomize           bool
}

func (o Options) Validate() error {
	if len(o.TargetUsers) == 0 {
		return apperrors.NewValidationError("user", "at least one user is required")
	}
	if o.Mode != ModeCommon && o.Mode != ModeAll {
		return apperrors.NewValidationError("mode", "unknown comparison mode "+string(o.Mode))
	}
	return nil
}

// Result is the filtered, ordered game list. Total counts the matches
// before a random pick collapses Games to one entry.
type Result struct {
	Caption string               `json:"caption"`
	Games   []*models.GameRecord `json:"games"`
	Total   int                  `json:"total"`
}

type Engine struct {
	pick func(n int) int
}

func NewEngine() *Engine {
	return &Engine{pick: rand.IntN}
}

// NewEngineWithPicker uses pick to choose the index of the random game.
func NewEngineWithPicker(pick func(n int) int) *Engine {
	return &Engine{pick: pick}
}

// Compare runs the comparison pipeline: duplicate-title merge, ownership,
// platform exclusion, single-player and installed-only filters, then sort
// and the optional random pick. The store is not modified.
func (e *Engine) Compare(store *models.DataStore, opts Options) Result {
	if opts.Mode == "" {
		opts.Mode = ModeCommon
	}
	if store == nil {
		store = models.NewDataStore()
	}
	opts.TargetUsers = uniqueUsers(opts.TargetUsers)

	allUsers := store.UserIDs()
	view := reconcile.MergeDuplicateTitles(store.SortedGames())

	games := make([]*models.GameRecord, 0, len(view))
	for _, g := range view {
		if keep(g, opts, allUsers) {
			games = append(games, g)
		}
	}
	models.SortBySlug(games)

	total := len(games)
	if opts.Randomize && total > 0 {
		games = []*models.GameRecord{games[e.pick(total)]}
	}

	return Result{
		Caption: Caption(store, opts, total),
		Games:   games,
		Total:   total,
	}
}

func keep(g *models.GameRecord, opts Options, allUsers []int) bool {
	switch {
	case opts.Mode == ModeAll:
		if !reconcile.OwnedByAny(g, opts.TargetUsers) {
			return false
		}
	case opts.Exclusive:
		if !reconcile.OwnedExclusively(g, opts.TargetUsers, allUsers) {
			return false
		}
	default:
		if !reconcile.OwnedByAll(g, opts.TargetUsers) {
			return false
		}
	}

	if reconcile.OnlyOnExcludedPlatforms(g, opts.ExcludedPlatforms) {
		return false
	}
	if !opts.IncludeSinglePlayer && !g.Multiplayer {
		return false
	}
	if opts.InstalledOnly && opts.Mode != ModeAll && !reconcile.InstalledByAll(g, opts.TargetUsers) {
		return false
	}
	return true
}

// uniqueUsers drops repeated ids, keeping first-seen order. The input is
// not modified.
func uniqueUsers(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// excludedUsers are the known users outside the targets, ascending.
func excludedUsers(store *models.DataStore, targets []int) []int {
	var out []int
	for _, id := range store.UserIDs() {
		if !slices.Contains(targets, id) {
			out = append(out, id)
		}
	}
	return out
}
