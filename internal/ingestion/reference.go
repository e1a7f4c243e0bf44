package ingestion

import (
	"strings"

	"gamatrix/internal/models"
)

// UnknownPlatform replaces a missing or unrecognised platform tag.
const UnknownPlatform = "unknown"

// KnownPlatforms are the platform tags Galaxy uses as release key prefixes.
var KnownPlatforms = []string{
	"amazon", "battlenet", "bethesda", "epic", "gog", "humble", "itch",
	"origin", "psn", "rockstar", "steam", "uplay", "xboxone",
}

// TrustOrder ranks platforms by how reliably their keys resolve in the
// metadata service: Steam keys almost always do, GOG keys about half the
// time, anything else never.
var TrustOrder = []string{"steam", "gog"}

// ResolveReferenceKey picks the release key used for metadata lookups. A key
// already on the most trusted platform is returned as is. Otherwise aliases
// are scanned in order for each trusted platform in turn, skipping nested
// duplicates like "steam_steam_55" that the source data sometimes carries.
// With no trusted alias the original key is returned.
func ResolveReferenceKey(releaseKey string, aliases []string) string {
	if len(TrustOrder) > 0 && models.PlatformOf(releaseKey) == TrustOrder[0] {
		return releaseKey
	}
	for _, platform := range TrustOrder {
		prefix := platform + "_"
		nested := prefix + prefix
		for _, alias := range aliases {
			if strings.HasPrefix(alias, prefix) && !strings.HasPrefix(alias, nested) {
				return alias
			}
		}
	}
	return releaseKey
}

func platformTag(releaseKey string) (string, bool) {
	tag := models.PlatformOf(releaseKey)
	if tag == "" {
		return UnknownPlatform, false
	}
	for _, known := range KnownPlatforms {
		if tag == known {
			return tag, true
		}
	}
	return UnknownPlatform, false
}
