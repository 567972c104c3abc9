package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/storage"
	"github.com/google/uuid"
)

// ErrMockStore is returned by FailingLedgerRepository
var ErrMockStore = errors.New("mock store failure")

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of recorded events
func (m *MockEventPublisher) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.events))
	copy(out, m.events)
	return out
}

// FailingLedgerRepository fails every operation with ErrMockStore
type FailingLedgerRepository struct {
	SystemID uuid.UUID
}

func (f *FailingLedgerRepository) AddAccount(*domain.Account) error         { return ErrMockStore }
func (f *FailingLedgerRepository) AddCategory(*domain.Category) error       { return ErrMockStore }
func (f *FailingLedgerRepository) AddTransaction(*domain.Transaction) error { return ErrMockStore }
func (f *FailingLedgerRepository) AddCategoryTransfer(*domain.CategoryTransfer) error {
	return ErrMockStore
}
func (f *FailingLedgerRepository) AddAccountTransfer(*domain.AccountTransfer) error {
	return ErrMockStore
}
func (f *FailingLedgerRepository) AddCategoryGroup(*domain.CategoryGroup) error {
	return ErrMockStore
}
func (f *FailingLedgerRepository) ListAccounts() ([]domain.Account, error) { return nil, ErrMockStore }
func (f *FailingLedgerRepository) ListCategories() ([]domain.Category, error) {
	return nil, ErrMockStore
}
func (f *FailingLedgerRepository) ListTransactions() ([]domain.Transaction, error) {
	return nil, ErrMockStore
}
func (f *FailingLedgerRepository) ListCategoryTransfers() ([]domain.CategoryTransfer, error) {
	return nil, ErrMockStore
}
func (f *FailingLedgerRepository) ListAccountTransfers() ([]domain.AccountTransfer, error) {
	return nil, ErrMockStore
}
func (f *FailingLedgerRepository) ListCategoryGroups() ([]domain.CategoryGroup, error) {
	return nil, ErrMockStore
}
func (f *FailingLedgerRepository) Snapshot() (*domain.Budget, error)    { return nil, ErrMockStore }
func (f *FailingLedgerRepository) SystemAvailableCategoryID() uuid.UUID { return f.SystemID }
func (f *FailingLedgerRepository) Policy() domain.ReferencePolicy       { return domain.ReferencePolicyLax }

// MockSnapshotRepository keeps written snapshots in memory
type MockSnapshotRepository struct {
	mu      sync.Mutex
	Prefix  string
	Written map[string][]storage.SnapshotObject
	WriteFn func(ctx context.Context, snapshotID string, objects []storage.SnapshotObject) (string, error)
}

// NewMockSnapshotRepository creates a new MockSnapshotRepository
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		Prefix:  "snapshots",
		Written: make(map[string][]storage.SnapshotObject),
	}
}

// Write stores the objects under <Prefix>/<snapshotID>
func (m *MockSnapshotRepository) Write(ctx context.Context, snapshotID string, objects []storage.SnapshotObject) (string, error) {
	if m.WriteFn != nil {
		return m.WriteFn(ctx, snapshotID, objects)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	location := storage.SnapshotPrefix(m.Prefix, snapshotID)
	m.Written[location] = objects
	return location, nil
}
