package ingestion

import (
	"strings"

	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/structures"

	json "github.com/goccy/go-json"
)

// RawRow is one row handed back by the extraction adapter: release keys of
// the same title joined by commas, and the JSON title piece.
type RawRow struct {
	ReleaseKeys string
	TitleBlob   string
}

// Extraction is everything the adapter read from one user's source.
type Extraction struct {
	Rows      []RawRow
	Installed []string
	// Aliases maps a release key to every release key of the same game
	// across platforms, in source order.
	Aliases map[string][]string
}

// Override is author-supplied metadata for a title.
type Override struct {
	Comment    *string
	URL        *string
	MaxPlayers *int
}

// Normalizer turns raw rows into catalog records. It is built once per
// operation from config and never mutated afterwards.
type Normalizer struct {
	hidden    map[string]struct{}
	overrides map[string]Override
	logger    providers.Logger
}

// NewNormalizer indexes hidden titles and metadata overrides by slug.
func NewNormalizer(conf *structures.Config, logger providers.Logger) Normalizer {
	n := Normalizer{
		hidden:    make(map[string]struct{}, len(conf.Hidden)),
		overrides: make(map[string]Override, len(conf.Metadata)),
		logger:    logger,
	}
	for _, title := range conf.Hidden {
		n.hidden[models.Slug(title)] = struct{}{}
	}
	for title, meta := range conf.Metadata {
		var o Override
		if meta.Comment != "" {
			o.Comment = models.StringPtr(meta.Comment)
		}
		if meta.URL != "" {
			o.URL = models.StringPtr(meta.URL)
		}
		if meta.MaxPlayers != nil {
			o.MaxPlayers = models.IntPtr(*meta.MaxPlayers)
		}
		n.overrides[models.Slug(title)] = o
	}
	return n
}

type titlePiece struct {
	Title string `json:"title"`
}

// Normalize converts one user's extraction into records keyed by release
// key. Rows without a usable title are skipped with a warning.
func (n Normalizer) Normalize(ex *Extraction, userID int) map[string]*models.GameRecord {
	games := make(map[string]*models.GameRecord)
	if ex == nil {
		return games
	}

	installed := make(map[string]struct{}, len(ex.Installed))
	for _, key := range ex.Installed {
		installed[strings.TrimSpace(key)] = struct{}{}
	}

	for _, row := range ex.Rows {
		title, ok := n.title(row)
		if !ok {
			continue
		}
		slug := models.Slug(title)
		if _, hidden := n.hidden[slug]; hidden {
			n.logger.Debugf(providers.TypeIngest, "Skipping %s as it's in the hidden list", title)
			continue
		}

		for _, key := range strings.Split(row.ReleaseKeys, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, seen := games[key]; seen {
				continue
			}

			platform, known := platformTag(key)
			if !known {
				n.logger.Warnf(providers.TypeIngest, "Unknown platform for %s (%s), using %q", key, title, UnknownPlatform)
			}

			g := &models.GameRecord{
				ReleaseKey: key,
				Title:      title,
				Slug:       slug,
				Platforms:  []string{platform},
				Owners:     []int{userID},
				Installed:  []int{},
				IgdbKey:    ResolveReferenceKey(key, ex.Aliases[key]),
			}
			if _, ok := installed[key]; ok {
				g.Installed = []int{userID}
			}
			n.applyOverride(g)
			games[key] = g
		}
	}
	return games
}

func (n Normalizer) title(row RawRow) (string, bool) {
	if strings.TrimSpace(row.TitleBlob) == "" {
		n.logger.Warnf(providers.TypeIngest, "Release %s has no title, skipping", row.ReleaseKeys)
		return "", false
	}
	var piece titlePiece
	if err := json.Unmarshal([]byte(row.TitleBlob), &piece); err != nil {
		n.logger.Warnf(providers.TypeIngest, "Release %s has an unreadable title (%s), skipping", row.ReleaseKeys, err)
		return "", false
	}
	if strings.TrimSpace(piece.Title) == "" {
		n.logger.Warnf(providers.TypeIngest, "Release %s has no title, skipping", row.ReleaseKeys)
		return "", false
	}
	return piece.Title, true
}

func (n Normalizer) applyOverride(g *models.GameRecord) {
	o, ok := n.overrides[g.Slug]
	if !ok {
		return
	}
	if o.Comment != nil {
		g.Comment = models.StringPtr(*o.Comment)
	}
	if o.URL != nil {
		g.URL = models.StringPtr(*o.URL)
	}
	if o.MaxPlayers != nil {
		g.MaxPlayers = models.IntPtr(*o.MaxPlayers)
		g.Multiplayer = *o.MaxPlayers > 1
	}
}
