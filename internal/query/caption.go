package query

import (
	"strconv"
	"strings"

	"gamatrix/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Caption summarizes a comparison, e.g.
// "12 games in common between alice, bob and not owned by carol (Steam excluded) (installed only)".
// The exclusive and installed-only parts are left out in ModeAll, where
// those options have no effect.
func Caption(store *models.DataStore, opts Options, count int) string {
	var b strings.Builder

	if opts.Randomize {
		b.WriteString("Random game selected from ")
	}
	b.WriteString(strconv.Itoa(count))
	b.WriteByte(' ')

	switch {
	case opts.Mode == ModeAll:
		b.WriteString("total games owned by")
	case len(opts.TargetUsers) == 1:
		b.WriteString("games owned by")
	default:
		b.WriteString("games in common between")
	}
	b.WriteByte(' ')
	b.WriteString(strings.Join(usernames(store, opts.TargetUsers), ", "))

	if opts.Exclusive && opts.Mode != ModeAll {
		if excluded := excludedUsers(store, opts.TargetUsers); len(excluded) > 0 {
			b.WriteString(" and not owned by ")
			b.WriteString(strings.Join(usernames(store, excluded), ", "))
		}
	}

	if len(opts.ExcludedPlatforms) > 0 {
		title := cases.Title(language.English)
		b.WriteString(" (")
		b.WriteString(title.String(strings.Join(opts.ExcludedPlatforms, ", ")))
		b.WriteString(" excluded)")
	}

	if opts.InstalledOnly && opts.Mode != ModeAll {
		b.WriteString(" (installed only)")
	}
	return b.String()
}

func usernames(store *models.DataStore, ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, store.Username(id))
	}
	return names
}
