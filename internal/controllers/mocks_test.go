package controllers

import (
	"context"
	"io"
	"sync"

	"gamatrix/internal/models"
	"gamatrix/internal/providers"
	"gamatrix/internal/query"
	"gamatrix/internal/reconcile"
	"gamatrix/internal/services"
)

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

// mockCatalog implements services.CatalogServiceInterface with
// canned answers and records mutating calls.
type mockCatalog struct {
	mu sync.Mutex

	Store      *models.DataStore
	Gen        uint64
	Result     query.Result
	CompareErr error
	IngestErr  error
	UploadErr  error
	RemoveErr  error
	Removed    int
	Report     services.RebuildReport
	RebuildErr error
	Issues     []reconcile.Issue

	CompareCalls  []query.Options
	IngestCalls   []int
	Uploads       map[int][]byte
	RemoveCalls   []int
	SnapshotCalls int
}

func (m *mockCatalog) Restore() bool { return m.Store != nil }

func (m *mockCatalog) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Store != nil
}

func (m *mockCatalog) Snapshot() *models.DataStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotCalls++
	if m.Store == nil {
		return nil
	}
	return m.Store.Clone()
}

func (m *mockCatalog) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gen
}

func (m *mockCatalog) Compare(_ context.Context, opts query.Options) (query.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompareCalls = append(m.CompareCalls, opts)
	if m.CompareErr != nil {
		return query.Result{}, m.CompareErr
	}
	if err := opts.Validate(); err != nil {
		return query.Result{}, err
	}
	return m.Result, nil
}

func (m *mockCatalog) IngestUser(_ context.Context, userID int) (*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IngestCalls = append(m.IngestCalls, userID)
	if m.IngestErr != nil {
		return nil, m.IngestErr
	}
	m.Gen++
	return &models.UserRecord{UserID: userID, Username: "user"}, nil
}

func (m *mockCatalog) ReplaceSource(userID int, data io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return m.UploadErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.Uploads == nil {
		m.Uploads = make(map[int][]byte)
	}
	m.Uploads[userID] = body
	return nil
}

func (m *mockCatalog) RemoveUser(userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls = append(m.RemoveCalls, userID)
	if m.RemoveErr != nil {
		return 0, m.RemoveErr
	}
	m.Gen++
	return m.Removed, nil
}

func (m *mockCatalog) Rebuild(_ context.Context, _ bool) (services.RebuildReport, error) {
	return m.Report, m.RebuildErr
}

func (m *mockCatalog) Rescan(_ context.Context) (int, error) { return 0, nil }

func (m *mockCatalog) Verify() (*models.DataStore, []reconcile.Issue, error) {
	return m.Snapshot(), m.Issues, nil
}

func (m *mockCatalog) Users() []*models.UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Store == nil {
		return []*models.UserRecord{}
	}
	users := make([]*models.UserRecord, 0, len(m.Store.Users))
	for _, id := range m.Store.UserIDs() {
		users = append(users, m.Store.Users[id].Clone())
	}
	return users
}
