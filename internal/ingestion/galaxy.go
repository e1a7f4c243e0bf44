package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// Source is an extraction adapter over one user's library database.
type Source interface {
	Extract(ctx context.Context) (*Extraction, error)
	Close() error
}

// SourceOpener opens the adapter for a database file.
type SourceOpener func(path string) (Source, error)

const ownedGamesQuery = `
WITH MasterList AS (
	SELECT GamePieces.releaseKey, GamePieces.gamePieceTypeId, GamePieces.value
	FROM ProductPurchaseDates
	JOIN GamePieces ON ProductPurchaseDates.gameReleaseKey = GamePieces.releaseKey
),
MasterDB AS (
	SELECT DISTINCT MasterList.releaseKey AS releaseKey, MasterList.value AS title, PLATFORMS.value AS platformList
	FROM MasterList, MasterList AS PLATFORMS
	WHERE (MasterList.gamePieceTypeId = ? OR MasterList.gamePieceTypeId = ?)
		AND PLATFORMS.releaseKey = MasterList.releaseKey
		AND PLATFORMS.gamePieceTypeId = ?
)
SELECT GROUP_CONCAT(DISTINCT MasterDB.releaseKey), MasterDB.title
FROM MasterDB
GROUP BY MasterDB.platformList
ORDER BY MasterDB.title`

const installedGamesQuery = `
SELECT trim(GamePieces.releaseKey) FROM GamePieces
JOIN GamePieceTypes ON GamePieces.gamePieceTypeId = GamePieceTypes.id
WHERE releaseKey IN (
	SELECT Platforms.name || '_' || InstalledExternalProducts.productId
	FROM InstalledExternalProducts
	JOIN Platforms ON InstalledExternalProducts.platformId = Platforms.id
	UNION
	SELECT 'gog_' || productId FROM InstalledProducts
)
AND GamePieceTypes.type = 'originalTitle'`

const aliasesQuery = `SELECT releaseKey, value FROM GamePieces WHERE gamePieceTypeId = ?`

// GalaxySource reads a GOG Galaxy 2.0 library database.
type GalaxySource struct {
	db   *sql.DB
	path string
}

// OpenGalaxySource opens path read-only.
func OpenGalaxySource(path string) (Source, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &GalaxySource{db: db, path: path}, nil
}

func (g *GalaxySource) Close() error {
	return g.db.Close()
}

func (g *GalaxySource) Extract(ctx context.Context) (*Extraction, error) {
	originalTitle, err := g.pieceTypeID(ctx, "originalTitle")
	if err != nil {
		return nil, err
	}
	title, err := g.pieceTypeID(ctx, "title")
	if err != nil {
		return nil, err
	}
	allReleases, err := g.pieceTypeID(ctx, "allGameReleases")
	if err != nil {
		return nil, err
	}

	ex := &Extraction{Aliases: make(map[string][]string)}

	if ex.Rows, err = g.ownedRows(ctx, originalTitle, title, allReleases); err != nil {
		return nil, err
	}
	if ex.Installed, err = g.installedKeys(ctx); err != nil {
		return nil, err
	}
	if err := g.loadAliases(ctx, allReleases, ex.Aliases); err != nil {
		return nil, err
	}
	return ex, nil
}

func (g *GalaxySource) pieceTypeID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := g.db.QueryRowContext(ctx, `SELECT id FROM GamePieceTypes WHERE type = ?`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: game piece type %s: %w", g.path, name, err)
	}
	return id, nil
}

func (g *GalaxySource) ownedRows(ctx context.Context, originalTitle, title, allReleases int64) ([]RawRow, error) {
	rows, err := g.db.QueryContext(ctx, ownedGamesQuery, originalTitle, title, allReleases)
	if err != nil {
		return nil, fmt.Errorf("%s: owned games: %w", g.path, err)
	}
	defer rows.Close()

	var out []RawRow
	for rows.Next() {
		var keys, blob sql.NullString
		if err := rows.Scan(&keys, &blob); err != nil {
			return nil, fmt.Errorf("%s: owned games: %w", g.path, err)
		}
		out = append(out, RawRow{ReleaseKeys: keys.String, TitleBlob: blob.String})
	}
	return out, rows.Err()
}

func (g *GalaxySource) installedKeys(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, installedGamesQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: installed games: %w", g.path, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: installed games: %w", g.path, err)
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

type releaseList struct {
	Releases []string `json:"releases"`
}

// loadAliases reads the allGameReleases pieces. Unreadable pieces are
// ignored; the affected keys fall back to themselves as reference key.
func (g *GalaxySource) loadAliases(ctx context.Context, typeID int64, into map[string][]string) error {
	rows, err := g.db.QueryContext(ctx, aliasesQuery, typeID)
	if err != nil {
		return fmt.Errorf("%s: release aliases: %w", g.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("%s: release aliases: %w", g.path, err)
		}
		var list releaseList
		if err := json.Unmarshal([]byte(value.String), &list); err != nil {
			continue
		}
		into[strings.TrimSpace(key)] = list.Releases
	}
	return rows.Err()
}
