package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gamatrix/internal/enrichment"
	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/structures"
)

// SQLiteSignature is the header every SQLite 3 database file starts with.
const SQLiteSignature = "SQLite format 3\x00"

// MtimeFormat is how a source file's modification time is recorded.
const MtimeFormat = "2006-01-02 15:04:05 MST"

// UserData is one user's successfully extracted library.
type UserData struct {
	User  *models.UserRecord
	Games map[string]*models.GameRecord
}

type Extractor struct {
	conf       *structures.Config
	normalizer Normalizer
	enricher   enrichment.Source
	open       SourceOpener
	logger     providers.Logger
}

// NewExtractor builds an extractor over Galaxy databases. A nil enricher
// disables metadata enrichment.
func NewExtractor(conf *structures.Config, enricher enrichment.Source, logger providers.Logger) *Extractor {
	return NewExtractorWithOpener(conf, enricher, OpenGalaxySource, logger)
}

func NewExtractorWithOpener(conf *structures.Config, enricher enrichment.Source, open SourceOpener, logger providers.Logger) *Extractor {
	if enricher == nil {
		enricher = enrichment.NoopSource{}
	}
	return &Extractor{
		conf:       conf,
		normalizer: NewNormalizer(conf, logger),
		enricher:   enricher,
		open:       open,
		logger:     logger,
	}
}

// SourcePath is where the uploaded database of a configured user lives.
func (e *Extractor) SourcePath(u structures.User) string {
	return filepath.Join(e.conf.Ingestion.DBPath, u.DB)
}

// CheckSignature verifies that path is an SQLite 3 database.
func CheckSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError("source database", path, err)
		}
		return apperrors.NewInvalidSourceError(path, err.Error())
	}
	defer f.Close()

	header := make([]byte, len(SQLiteSignature))
	if _, err := io.ReadFull(f, header); err != nil {
		return apperrors.NewInvalidSourceError(path, "file too short to be a database")
	}
	if !bytes.Equal(header, []byte(SQLiteSignature)) {
		return apperrors.NewInvalidSourceError(path, "not an SQLite 3 database")
	}
	return nil
}

// ExtractUserData reads one user's library and returns the refreshed user
// record together with that user's catalog records.
func (e *Extractor) ExtractUserData(ctx context.Context, userID int, sourcePath string) (*models.UserRecord, map[string]*models.GameRecord, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, nil, apperrors.NewNotFoundError("source database", sourcePath, err)
	}
	if err := CheckSignature(sourcePath); err != nil {
		return nil, nil, err
	}

	src, err := e.open(sourcePath)
	if err != nil {
		return nil, nil, apperrors.NewInvalidSourceError(sourcePath, err.Error())
	}
	defer src.Close()

	ex, err := src.Extract(ctx)
	if err != nil {
		return nil, nil, apperrors.NewInvalidSourceError(sourcePath, err.Error())
	}

	games := e.normalizer.Normalize(ex, userID)
	if len(games) == 0 {
		e.logger.Warnf(providers.TypeIngest, "No games found for user %d", userID)
	}

	installed := 0
	for _, g := range games {
		e.enrich(g)
		if g.IsInstalledBy(userID) {
			installed++
		}
	}

	user := &models.UserRecord{
		UserID:         userID,
		Username:       fmt.Sprintf("User_%d", userID),
		SourceFilename: filepath.Base(sourcePath),
		SourceMtime:    info.ModTime().Format(MtimeFormat),
		TotalGames:     len(games),
		InstalledGames: installed,
	}
	if u, ok := e.conf.User(userID); ok {
		user.Username = u.Username
		if u.DB != "" {
			user.SourceFilename = u.DB
		}
	}

	e.logger.Infof(providers.TypeIngest, "Extracted %d games for user %d (%d installed)", len(games), userID, installed)
	return user, games, nil
}

func (e *Extractor) enrich(g *models.GameRecord) {
	info, found, err := e.enricher.Lookup(g.IgdbKey)
	if err != nil {
		e.logger.Warnf(providers.TypeIngest, "Metadata lookup for %s failed: %s", g.IgdbKey, err)
		found = false
	}
	enrichment.ApplyMultiplayerStatus(g, info, found)
}

// ExtractUsers extracts every given user. A failing user is logged and left
// out of the result; its error is returned keyed by user id.
func (e *Extractor) ExtractUsers(ctx context.Context, users []structures.User) ([]UserData, map[int]error) {
	var out []UserData
	failed := make(map[int]error)

	for _, u := range users {
		if u.DB == "" {
			e.logger.Warnf(providers.TypeIngest, "User %d has no database file configured", u.ID)
			failed[u.ID] = apperrors.NewNotFoundError("source database", "", nil)
			continue
		}
		if err := ctx.Err(); err != nil {
			failed[u.ID] = err
			continue
		}

		user, games, err := e.ExtractUserData(ctx, u.ID, e.SourcePath(u))
		if err != nil {
			e.logger.Errorf(providers.TypeIngest, "Failed to extract data for user %d: %s", u.ID, err)
			failed[u.ID] = err
			continue
		}
		out = append(out, UserData{User: user, Games: games})
	}
	return out, failed
}
