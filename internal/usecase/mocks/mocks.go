package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/iho/gofinance/internal/domain"
)

// MemorySnapshotStore is an in-memory SnapshotStore. Set a Func field to override the
// stored behaviour of the matching method.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
	saves     map[string]int

	LoadFunc            func(ctx context.Context, login string) (*domain.Snapshot, error)
	SaveFunc            func(ctx context.Context, snapshot *domain.Snapshot) error
	ListCredentialsFunc func(ctx context.Context) ([]domain.Credential, error)
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[string]*domain.Snapshot),
		saves:     make(map[string]int),
	}
}

func (m *MemorySnapshotStore) Load(ctx context.Context, login string) (*domain.Snapshot, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, login)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[login]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return cloneSnapshot(snap), nil
}

func (m *MemorySnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Login] = cloneSnapshot(snapshot)
	m.saves[snapshot.Login]++
	return nil
}

func (m *MemorySnapshotStore) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	if m.ListCredentialsFunc != nil {
		return m.ListCredentialsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	creds := make([]domain.Credential, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		creds = append(creds, snap.Credential())
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].Login < creds[j].Login })
	return creds, nil
}

// Put stores snapshot directly, bypassing SaveFunc.
func (m *MemorySnapshotStore) Put(snapshot *domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Login] = cloneSnapshot(snapshot)
}

// Get returns the stored snapshot for login, if any.
func (m *MemorySnapshotStore) Get(login string) (*domain.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[login]
	if !ok {
		return nil, false
	}
	return cloneSnapshot(snap), true
}

// Saves returns how many times login was saved.
func (m *MemorySnapshotStore) Saves(login string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[login]
}

func cloneSnapshot(s *domain.Snapshot) *domain.Snapshot {
	c := *s
	c.Operations = append([]domain.Operation(nil), s.Operations...)
	c.Budgets = append([]domain.Budget(nil), s.Budgets...)
	return &c
}
