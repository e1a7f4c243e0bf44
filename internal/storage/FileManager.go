package storage

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	apperrors "gamatrix/internal/errors"
	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/storage/interfaces"
	"gamatrix/internal/structures"

	json "github.com/goccy/go-json"
)

// FileManager persists the data store to a single JSON document with
// numbered backups next to it. One mutex covers every file operation, so
// at most one save is in flight.
type FileManager struct {
	mu         sync.Mutex
	path       string
	maxBackups int
	compress   bool
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		path:       conf.Store.FilePath,
		maxBackups: conf.Store.MaxBackups,
		compress:   conf.Store.Compress,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the time source used to stamp last_updated.
func (f *FileManager) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *FileManager) Path() string {
	return f.path
}

func (f *FileManager) BackupPath(n int) string {
	return fmt.Sprintf("%s.backup.%d", f.path, n)
}

func (f *FileManager) MaxBackups() int {
	return f.maxBackups
}

func (f *FileManager) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Read loads and validates the live document. A missing file is a
// NotFoundError; anything that doesn't decode into a valid store is a
// ValidationError.
func (f *FileManager) Read() (*models.DataStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readFile(f.path)
}

// Load is Read for callers that fall back to direct extraction: every
// failure is logged and reported as no store.
func (f *FileManager) Load() *models.DataStore {
	store, err := f.Read()
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			f.logger.Infof(providers.TypeStore, "No data store at %s", f.path)
		} else {
			f.logger.Errorf(providers.TypeStore, "Failed to load data store %s: %s", f.path, err)
		}
		return nil
	}
	f.logger.Infof(providers.TypeStore, "Loaded data store with %d users and %d games", len(store.Users), len(store.Games))
	return store
}

func (f *FileManager) readFile(path string) (*models.DataStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("data store", path, err)
		}
		return nil, apperrors.NewPersistenceError("read", path, err)
	}
	return f.decode(data)
}

func (f *FileManager) decode(data []byte) (*models.DataStore, error) {
	if IsCompressed(data) {
		plain, err := f.compressor.Decompress(data)
		if err != nil {
			return nil, apperrors.NewValidationError("", "corrupt compressed document: "+err.Error())
		}
		data = plain
	}

	var store models.DataStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, apperrors.NewValidationError("", "malformed document: "+err.Error())
	}
	if store.Version == "" {
		store.Version = models.StoreVersion
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	return &store, nil
}

// Save stamps last_updated on store and replaces the live document. The new
// content goes to <path>.tmp first and is synced; backups are rotated only
// then, and the rename is the last step. Any failure returns a
// PersistenceError and leaves the live file as it was.
func (f *FileManager) Save(store *models.DataStore) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	store.LastUpdated = f.now().Format(time.RFC3339)
	if store.Version == "" {
		store.Version = models.StoreVersion
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return apperrors.NewPersistenceError("marshal", f.path, err)
	}
	if f.compress {
		if data, err = f.compressor.Compress(data); err != nil {
			return apperrors.NewPersistenceError("compress", f.path, err)
		}
	}

	tmpFile := f.path + ".tmp"
	if err := writeSynced(tmpFile, data); err != nil {
		return err
	}

	if err := f.rotateBackups(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err := os.Rename(tmpFile, f.path); err != nil {
		os.Remove(tmpFile)
		return apperrors.NewPersistenceError("rename", f.path, err)
	}

	f.logger.Infof(providers.TypeStore, "Saved data store to %s", f.path)
	return nil
}

func writeSynced(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewPersistenceError("write", path, err)
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return apperrors.NewPersistenceError("write", path, err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return apperrors.NewPersistenceError("sync", path, err)
	}

	if err = file.Close(); err != nil {
		os.Remove(path)
		return apperrors.NewPersistenceError("write", path, err)
	}
	return nil
}

// RotateBackups shifts backup i to i+1 for i = max-1 down to 1, dropping
// the oldest, then copies the live file to slot 1. Without a live file
// nothing happens.
func (f *FileManager) RotateBackups() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rotateBackups()
}

func (f *FileManager) rotateBackups() error {
	if f.maxBackups <= 0 || !f.Exists() {
		return nil
	}

	for i := f.maxBackups - 1; i >= 1; i-- {
		src := f.BackupPath(i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, f.BackupPath(i+1)); err != nil {
			return apperrors.NewPersistenceError("rotate", src, err)
		}
	}

	if err := copyFile(f.path, f.BackupPath(1)); err != nil {
		return apperrors.NewPersistenceError("rotate", f.path, err)
	}
	f.logger.Debugf(providers.TypeStore, "Rotated backups of %s", f.path)
	return nil
}

// Restore replaces the live document with backup n after checking that the
// backup decodes into a valid store. The current live file is not backed up.
func (f *FileManager) Restore(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n < 1 || n > f.maxBackups {
		return apperrors.NewValidationError("backup_number", fmt.Sprintf("must be between 1 and %d", f.maxBackups))
	}

	src := f.BackupPath(n)
	if _, err := f.readFile(src); err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	if err := copyFile(src, tmpFile); err != nil {
		os.Remove(tmpFile)
		return apperrors.NewPersistenceError("write", tmpFile, err)
	}
	if err := os.Rename(tmpFile, f.path); err != nil {
		os.Remove(tmpFile)
		return apperrors.NewPersistenceError("rename", f.path, err)
	}

	f.logger.Infof(providers.TypeStore, "Restored %s from backup %d", f.path, n)
	return nil
}

// Backups lists the existing backup slots in ascending order.
func (f *FileManager) Backups() []int {
	var slots []int
	for i := 1; i <= f.maxBackups; i++ {
		if _, err := os.Stat(f.BackupPath(i)); err == nil {
			slots = append(slots, i)
		}
	}
	return slots
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
