package service

import (
	"fmt"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationService derives balances from a consistent ledger snapshot.
// The store lock is held only while the snapshot is copied.
type CalculationService struct {
	ledgerRepo domain.LedgerRepository
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(ledgerRepo domain.LedgerRepository) *CalculationService {
	return &CalculationService{ledgerRepo: ledgerRepo}
}

// AccountBalanceResult holds calculated balance information for an account
type AccountBalanceResult struct {
	AccountID            uuid.UUID
	Name                 string
	StartingBalance      decimal.Decimal
	Balance              decimal.Decimal
	TransferNet          decimal.Decimal
	BalanceWithTransfers decimal.Decimal
}

// CategoryBalanceResult holds the balance of one category
type CategoryBalanceResult struct {
	CategoryID uuid.UUID
	Name       string
	GroupID    *uuid.UUID
	Balance    decimal.Decimal
	System     bool
}

// GroupBalanceResult totals the categories filed under one group. GroupID is
// nil for the bucket of ungrouped categories.
type GroupBalanceResult struct {
	GroupID    *uuid.UUID
	Name       string
	Balance    decimal.Decimal
	Categories []CategoryBalanceResult
}

// UngroupedName labels categories without a known group
const UngroupedName = "Ungrouped"

func (s *CalculationService) snapshot() (*domain.Budget, error) {
	b, err := s.ledgerRepo.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return b, nil
}

// CategoryBalance returns the balance of one category; unknown ids yield zero
func (s *CalculationService) CategoryBalance(categoryID uuid.UUID) (decimal.Decimal, error) {
	b, err := s.snapshot()
	if err != nil {
		return decimal.Zero, err
	}
	return domain.CategoryBalance(b, categoryID), nil
}

// AccountBalance returns the baseline balance of one account (transfers excluded)
func (s *CalculationService) AccountBalance(accountID uuid.UUID) (decimal.Decimal, error) {
	b, err := s.snapshot()
	if err != nil {
		return decimal.Zero, err
	}
	return domain.AccountBalance(b, accountID), nil
}

// AvailableToBudget returns the balance of the system available category
func (s *CalculationService) AvailableToBudget() (decimal.Decimal, error) {
	b, err := s.snapshot()
	if err != nil {
		return decimal.Zero, err
	}
	return domain.AvailableToBudget(b), nil
}

// CalculateCategoryBalances returns the system available category first,
// followed by user categories in insertion order. Rows collapse by id: the
// first definition of a repeated id wins, and a user category reusing the
// system id is not listed again.
func (s *CalculationService) CalculateCategoryBalances() ([]CategoryBalanceResult, error) {
	b, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	system := domain.SystemAvailableCategory(b.SystemAvailableCategoryID)
	balances := domain.CategoryBalances(b)
	results := make([]CategoryBalanceResult, 0, len(b.Categories)+1)
	results = append(results, CategoryBalanceResult{
		CategoryID: system.ID,
		Name:       system.Name,
		Balance:    balances[system.ID],
		System:     true,
	})
	for _, c := range uniqueCategories(b) {
		results = append(results, CategoryBalanceResult{
			CategoryID: c.ID,
			Name:       c.Name,
			GroupID:    c.GroupID,
			Balance:    balances[c.ID],
		})
	}
	return results, nil
}

// CalculateGroupBalances returns one entry per category group in insertion
// order, each listing its categories and their total. Categories without a
// known group are collected in a trailing Ungrouped entry, present only when
// non-empty. The system available category belongs to no group.
func (s *CalculationService) CalculateGroupBalances() ([]GroupBalanceResult, error) {
	b, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	balances := domain.CategoryBalances(b)
	results := make([]GroupBalanceResult, 0, len(b.CategoryGroups)+1)
	position := make(map[uuid.UUID]int, len(b.CategoryGroups))
	for _, g := range b.CategoryGroups {
		if _, ok := position[g.ID]; ok {
			continue
		}
		id := g.ID
		position[id] = len(results)
		results = append(results, GroupBalanceResult{
			GroupID:    &id,
			Name:       g.Name,
			Balance:    decimal.Zero,
			Categories: []CategoryBalanceResult{},
		})
	}

	ungrouped := GroupBalanceResult{Name: UngroupedName, Balance: decimal.Zero, Categories: []CategoryBalanceResult{}}
	for _, c := range uniqueCategories(b) {
		row := CategoryBalanceResult{CategoryID: c.ID, Name: c.Name, GroupID: c.GroupID, Balance: balances[c.ID]}

		target := &ungrouped
		if c.GroupID != nil {
			if i, ok := position[*c.GroupID]; ok {
				target = &results[i]
			}
		}
		target.Categories = append(target.Categories, row)
		target.Balance = target.Balance.Add(row.Balance)
	}

	if len(ungrouped.Categories) > 0 {
		results = append(results, ungrouped)
	}
	return results, nil
}

// CalculateAccountBalances returns every account's baseline balance next to
// its transfer-adjusted figures, in insertion order. Rows collapse by id with
// the first definition winning, so each row's starting balance is the one its
// balance was computed from.
func (s *CalculationService) CalculateAccountBalances() ([]AccountBalanceResult, error) {
	b, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	balances := domain.AccountBalances(b)
	results := make([]AccountBalanceResult, 0, len(b.Accounts))
	seen := make(map[uuid.UUID]bool, len(b.Accounts))
	for _, a := range b.Accounts {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true

		net := domain.AccountTransferNet(b, a.ID)
		balance := balances[a.ID]
		results = append(results, AccountBalanceResult{
			AccountID:            a.ID,
			Name:                 a.Name,
			StartingBalance:      a.StartingBalance,
			Balance:              balance,
			TransferNet:          net,
			BalanceWithTransfers: balance.Add(net),
		})
	}
	return results, nil
}

// NetWorth returns assets, liabilities and net worth over all accounts
func (s *CalculationService) NetWorth() (domain.NetWorthSummary, error) {
	b, err := s.snapshot()
	if err != nil {
		return domain.NetWorthSummary{}, err
	}
	return domain.NetWorth(b), nil
}

// uniqueCategories drops repeated ids (first wins) and any user category
// that reuses the system available id.
func uniqueCategories(b *domain.Budget) []domain.Category {
	out := make([]domain.Category, 0, len(b.Categories))
	seen := map[uuid.UUID]bool{b.SystemAvailableCategoryID: true}
	for _, c := range b.Categories {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
