package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/ingestion"
	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/query"
	"gamatrix/internal/reconcile"
	"gamatrix/internal/structures"
)

var ErrStoreExists = errors.New("data store already exists, use --force to rebuild anyway")

// ErrNothingIngested means no configured user could be extracted.
var ErrNothingIngested = errors.New("no users were processed successfully")

type Extractor interface {
	ExtractUserData(ctx context.Context, userID int, sourcePath string) (*models.UserRecord, map[string]*models.GameRecord, error)
	ExtractUsers(ctx context.Context, users []structures.User) ([]ingestion.UserData, map[int]error)
	SourcePath(u structures.User) string
}

type Persister interface {
	Read() (*models.DataStore, error)
	Load() *models.DataStore
	Save(store *models.DataStore) error
	Exists() bool
}

type CatalogServiceInterface interface {
	Restore() bool
	Loaded() bool
	Snapshot() *models.DataStore
	Generation() uint64
	Compare(ctx context.Context, opts query.Options) (query.Result, error)
	IngestUser(ctx context.Context, userID int) (*models.UserRecord, error)
	ReplaceSource(userID int, data io.Reader) error
	RemoveUser(userID int) (int, error)
	Rebuild(ctx context.Context, force bool) (RebuildReport, error)
	Rescan(ctx context.Context) (int, error)
	Verify() (*models.DataStore, []reconcile.Issue, error)
	Users() []*models.UserRecord
}

type RebuildReport struct {
	Users  int
	Games  int
	Failed map[int]error
}

// CatalogService owns the in-memory data store. Every mutation works on a
// copy, saves it, and swaps it in only once the save succeeded, all under
// the write lock, so at most one save is in flight and readers never see
// an unsaved catalog.
type CatalogService struct {
	mu         sync.RWMutex
	store      *models.DataStore
	generation uint64

	conf      *structures.Config
	extractor Extractor
	files     Persister
	engine    *query.Engine
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
}

func NewCatalogService(conf *structures.Config, extractor Extractor, files Persister, engine *query.Engine, metrics providers.MetricsProviderInterface, logger providers.Logger) *CatalogService {
	return &CatalogService{
		conf:      conf,
		extractor: extractor,
		files:     files,
		engine:    engine,
		metrics:   metrics,
		logger:    logger,
	}
}

// Restore loads the persisted store. It reports false when there is none,
// in which case comparisons fall back to direct extraction.
func (cs *CatalogService) Restore() bool {
	store := cs.files.Load()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.store = store
	cs.generation++
	cs.reportSize()
	return store != nil
}

// Loaded reports whether a store is held, without copying it.
func (cs *CatalogService) Loaded() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.store != nil
}

// Snapshot returns a deep copy of the current store, or nil when none is
// loaded.
func (cs *CatalogService) Snapshot() *models.DataStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.store == nil {
		return nil
	}
	return cs.store.Clone()
}

// Generation changes every time the store is replaced.
func (cs *CatalogService) Generation() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.generation
}

func (cs *CatalogService) Users() []*models.UserRecord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.store == nil {
		return []*models.UserRecord{}
	}
	users := make([]*models.UserRecord, 0, len(cs.store.Users))
	for _, id := range cs.store.UserIDs() {
		users = append(users, cs.store.Users[id].Clone())
	}
	return users
}

func (cs *CatalogService) Compare(ctx context.Context, opts query.Options) (query.Result, error) {
	if err := opts.Validate(); err != nil {
		return query.Result{}, err
	}

	store := cs.Snapshot()
	if store == nil {
		cs.logger.Infof(providers.TypeApp, "Falling back to direct extraction")
		store = cs.extractAll(ctx)
	}
	return cs.engine.Compare(store, opts), nil
}

// extractAll builds a throwaway store straight from the configured
// sources. It is never saved.
func (cs *CatalogService) extractAll(ctx context.Context) *models.DataStore {
	store := models.NewDataStore()
	batch, failed := cs.extractor.ExtractUsers(ctx, cs.conf.Users)
	for _, data := range batch {
		reconcile.Ingest(store, data.User, data.Games)
	}
	cs.countIngestions(len(batch), len(failed))
	return store
}

// IngestUser re-reads one configured user's source, merges it into the
// catalog and saves.
func (cs *CatalogService) IngestUser(ctx context.Context, userID int) (*models.UserRecord, error) {
	u, ok := cs.conf.User(userID)
	if !ok {
		return nil, apperrors.NewNotFoundError("user", strconv.Itoa(userID), nil)
	}

	user, games, err := cs.extractor.ExtractUserData(ctx, userID, cs.extractor.SourcePath(u))
	if err != nil {
		cs.metrics.IncIngestions(providers.IngestionFailed)
		cs.logger.Errorf(providers.TypeIngest, "Failed to ingest user %d: %s", userID, err)
		return nil, err
	}
	cs.metrics.IncIngestions(providers.IngestionSucceeded)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	next := models.NewDataStore()
	if cs.store != nil {
		next = cs.store.Clone()
	}
	reconcile.Ingest(next, user, games)
	if err := cs.commit(next); err != nil {
		return nil, err
	}

	cs.logger.Infof(providers.TypeIngest, "Ingested %d games for user %d", len(games), userID)
	return user.Clone(), nil
}

// ReplaceSource stores an uploaded library database for userID. The upload
// must pass the signature check; the previous file is kept as <name>.bak.
func (cs *CatalogService) ReplaceSource(userID int, data io.Reader) error {
	u, ok := cs.conf.User(userID)
	if !ok {
		return apperrors.NewNotFoundError("user", strconv.Itoa(userID), nil)
	}
	if u.DB == "" {
		return apperrors.NewValidationError("db", "user "+strconv.Itoa(userID)+" has no database file configured")
	}
	path := cs.extractor.SourcePath(u)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".upload-*")
	if err != nil {
		return apperrors.NewPersistenceError("write", path, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("write", tmpName, err)
	}

	if err := ingestion.CheckSignature(tmpName); err != nil {
		os.Remove(tmpName)
		return apperrors.NewInvalidSourceError(filepath.Base(path), "uploaded file is not an SQLite 3 database")
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			os.Remove(tmpName)
			return apperrors.NewPersistenceError("rename", path, err)
		}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError("rename", path, err)
	}

	cs.logger.Infof(providers.TypeIngest, "Stored new database for user %d at %s", userID, path)
	return nil
}

// RemoveUser deletes the user and every game only they owned, then saves.
// It returns the number of deleted games.
func (cs *CatalogService) RemoveUser(userID int) (int, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.store == nil {
		return 0, apperrors.NewNotFoundError("data store", cs.conf.Store.FilePath, nil)
	}
	if _, ok := cs.store.Users[userID]; !ok {
		return 0, apperrors.NewNotFoundError("user", strconv.Itoa(userID), nil)
	}

	next := cs.store.Clone()
	removed := reconcile.RemoveUser(next, userID)
	if err := cs.commit(next); err != nil {
		return 0, err
	}

	cs.logger.Infof(providers.TypeStore, "Removed user %d and %d games only they owned", userID, removed)
	return removed, nil
}

// Rebuild ingests every configured user into a fresh store. It refuses to
// replace an existing store unless force is set, and fails if no user could
// be extracted.
func (cs *CatalogService) Rebuild(ctx context.Context, force bool) (RebuildReport, error) {
	if cs.files.Exists() && !force {
		return RebuildReport{}, ErrStoreExists
	}

	store := models.NewDataStore()
	batch, failed := cs.extractor.ExtractUsers(ctx, cs.conf.Users)
	cs.countIngestions(len(batch), len(failed))
	for _, data := range batch {
		reconcile.Ingest(store, data.User, data.Games)
	}

	report := RebuildReport{Users: len(batch), Games: len(store.Games), Failed: failed}
	if len(batch) == 0 {
		return report, ErrNothingIngested
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.commit(store); err != nil {
		return report, err
	}

	cs.logger.Infof(providers.TypeStore, "Rebuilt data store with %d users and %d games", report.Users, report.Games)
	return report, nil
}

// Rescan re-ingests every configured user whose source file changed since
// it was last ingested, or who was never ingested.
func (cs *CatalogService) Rescan(ctx context.Context) (int, error) {
	refreshed := 0
	var errs []error

	for _, u := range cs.conf.Users {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		info, err := os.Stat(cs.extractor.SourcePath(u))
		if err != nil {
			continue
		}
		if !cs.changed(u.ID, info.ModTime()) {
			continue
		}
		if _, err := cs.IngestUser(ctx, u.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (cs *CatalogService) changed(userID int, mtime time.Time) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.store == nil {
		return true
	}
	u, ok := cs.store.Users[userID]
	return !ok || u.SourceMtime != mtime.Format(ingestion.MtimeFormat)
}

// Verify strictly reads the persisted store and audits it against the
// configured users.
func (cs *CatalogService) Verify() (*models.DataStore, []reconcile.Issue, error) {
	store, err := cs.files.Read()
	if err != nil {
		return nil, nil, err
	}
	return store, reconcile.Audit(store, cs.conf.UserIDs()), nil
}

// commit saves next and makes it current. Callers hold the write lock.
func (cs *CatalogService) commit(next *models.DataStore) error {
	start := time.Now()
	err := cs.files.Save(next)
	cs.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		cs.logger.Errorf(providers.TypeStore, "Failed to save data store: %s", err)
		return err
	}

	cs.store = next
	cs.generation++
	cs.reportSize()
	return nil
}

func (cs *CatalogService) reportSize() {
	if cs.store == nil {
		cs.metrics.SetCatalogSize(0, 0)
		return
	}
	cs.metrics.SetCatalogSize(len(cs.store.Users), len(cs.store.Games))
}

func (cs *CatalogService) countIngestions(ok, failed int) {
	for i := 0; i < ok; i++ {
		cs.metrics.IncIngestions(providers.IngestionSucceeded)
	}
	for i := 0; i < failed; i++ {
		cs.metrics.IncIngestions(providers.IngestionFailed)
	}
}
