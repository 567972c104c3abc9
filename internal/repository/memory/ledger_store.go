package memory

import (
	"sync"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
)

// Ensure LedgerStore implements domain.LedgerRepository
var _ domain.LedgerRepository = (*LedgerStore)(nil)

// LedgerStore is the in-memory ledger store. It is safe for concurrent use:
// writers hold the lock only for the append, readers only for the copy.
type LedgerStore struct {
	mu     sync.RWMutex
	budget *domain.Budget
	policy domain.ReferencePolicy
	ids    idIndex
}

// idIndex records every stored id per collection. It is only touched with
// the store's write lock held.
type idIndex struct {
	systemID uuid.UUID
	byKind   map[domain.EntityKind]map[uuid.UUID]struct{}
}

// Exists implements domain.ReferenceIndex
func (i idIndex) Exists(kind domain.EntityKind, id uuid.UUID) (bool, error) {
	if kind == domain.EntityCategory && id == i.systemID {
		return true, nil
	}
	_, ok := i.byKind[kind][id]
	return ok, nil
}

func (i idIndex) add(kind domain.EntityKind, id uuid.UUID) {
	i.byKind[kind][id] = struct{}{}
}

// NewLedgerStore creates an empty store whose system available category has the given id
func NewLedgerStore(systemAvailableCategoryID uuid.UUID, policy domain.ReferencePolicy) *LedgerStore {
	ids := idIndex{
		systemID: systemAvailableCategoryID,
		byKind:   make(map[domain.EntityKind]map[uuid.UUID]struct{}, len(domain.EntityKinds)),
	}
	for _, kind := range domain.EntityKinds {
		ids.byKind[kind] = make(map[uuid.UUID]struct{})
	}
	return &LedgerStore{
		budget: domain.NewBudget(systemAvailableCategoryID),
		policy: policy,
		ids:    ids,
	}
}

func (s *LedgerStore) AddAccount(account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckAccount(s.ids, account); err != nil {
		return err
	}
	s.budget.Accounts = append(s.budget.Accounts, *account)
	s.ids.add(domain.EntityAccount, account.ID)
	return nil
}

func (s *LedgerStore) AddCategory(category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckCategory(s.ids, category); err != nil {
		return err
	}
	s.budget.Categories = append(s.budget.Categories, domain.CloneCategories([]domain.Category{*category})...)
	s.ids.add(domain.EntityCategory, category.ID)
	return nil
}

func (s *LedgerStore) AddTransaction(transaction *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckTransaction(s.ids, transaction); err != nil {
		return err
	}
	s.budget.Transactions = append(s.budget.Transactions, domain.CloneTransactions([]domain.Transaction{*transaction})...)
	s.ids.add(domain.EntityTransaction, transaction.ID)
	return nil
}

func (s *LedgerStore) AddCategoryTransfer(transfer *domain.CategoryTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckCategoryTransfer(s.ids, transfer); err != nil {
		return err
	}
	s.budget.CategoryTransfers = append(s.budget.CategoryTransfers, domain.CloneCategoryTransfers([]domain.CategoryTransfer{*transfer})...)
	s.ids.add(domain.EntityCategoryTransfer, transfer.ID)
	return nil
}

func (s *LedgerStore) AddAccountTransfer(transfer *domain.AccountTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckAccountTransfer(s.ids, transfer); err != nil {
		return err
	}
	s.budget.AccountTransfers = append(s.budget.AccountTransfers, domain.CloneAccountTransfers([]domain.AccountTransfer{*transfer})...)
	s.ids.add(domain.EntityAccountTransfer, transfer.ID)
	return nil
}

func (s *LedgerStore) AddCategoryGroup(group *domain.CategoryGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.policy.CheckCategoryGroup(s.ids, group); err != nil {
		return err
	}
	s.budget.CategoryGroups = append(s.budget.CategoryGroups, *group)
	s.ids.add(domain.EntityCategoryGroup, group.ID)
	return nil
}

func (s *LedgerStore) ListAccounts() ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAccounts(s.budget.Accounts), nil
}

func (s *LedgerStore) ListCategories() ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneCategories(s.budget.Categories), nil
}

func (s *LedgerStore) ListTransactions() ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneTransactions(s.budget.Transactions), nil
}

func (s *LedgerStore) ListCategoryTransfers() ([]domain.CategoryTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneCategoryTransfers(s.budget.CategoryTransfers), nil
}

func (s *LedgerStore) ListAccountTransfers() ([]domain.AccountTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAccountTransfers(s.budget.AccountTransfers), nil
}

func (s *LedgerStore) ListCategoryGroups() ([]domain.CategoryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneCategoryGroups(s.budget.CategoryGroups), nil
}

// Snapshot returns a consistent deep copy of the whole budget
func (s *LedgerStore) Snapshot() (*domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget.Clone(), nil
}

// SystemAvailableCategoryID returns the id fixed at construction
func (s *LedgerStore) SystemAvailableCategoryID() uuid.UUID {
	return s.budget.SystemAvailableCategoryID
}

// Policy returns the reference policy applied by Add operations
func (s *LedgerStore) Policy() domain.ReferencePolicy {
	return s.policy
}
