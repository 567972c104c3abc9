package domain

import "github.com/google/uuid"

// Budget is the aggregate root holding every ledger collection of one budget.
// The system available category is not part of Categories; its id is kept
// separately so it never depends on name matching.
type Budget struct {
	SystemAvailableCategoryID uuid.UUID          `json:"system_available_category_id"`
	Accounts                  []Account          `json:"accounts"`
	Categories                []Category         `json:"categories"`
	Transactions              []Transaction      `json:"transactions"`
	CategoryTransfers         []CategoryTransfer `json:"category_transfers"`
	AccountTransfers          []AccountTransfer  `json:"account_transfers"`
	CategoryGroups            []CategoryGroup    `json:"category_groups"`
}

// NewBudget creates an empty budget whose system available category has the given id
func NewBudget(systemAvailableCategoryID uuid.UUID) *Budget {
	return &Budget{
		SystemAvailableCategoryID: systemAvailableCategoryID,
		Accounts:                  []Account{},
		Categories:                []Category{},
		Transactions:              []Transaction{},
		CategoryTransfers:         []CategoryTransfer{},
		AccountTransfers:          []AccountTransfer{},
		CategoryGroups:            []CategoryGroup{},
	}
}

// SystemAvailableCategory returns the reserved category with the given id
func SystemAvailableCategory(id uuid.UUID) Category {
	return Category{ID: id, Name: SystemAvailableCategoryName}
}

// Clone returns a deep copy that shares no memory with b
func (b *Budget) Clone() *Budget {
	return &Budget{
		SystemAvailableCategoryID: b.SystemAvailableCategoryID,
		Accounts:                  CloneAccounts(b.Accounts),
		Categories:                CloneCategories(b.Categories),
		Transactions:              CloneTransactions(b.Transactions),
		CategoryTransfers:         CloneCategoryTransfers(b.CategoryTransfers),
		AccountTransfers:          CloneAccountTransfers(b.AccountTransfers),
		CategoryGroups:            CloneCategoryGroups(b.CategoryGroups),
	}
}

// LedgerRepository is the ledger store contract. Add operations append;
// List operations return copies in insertion order.
type LedgerRepository interface {
	AddAccount(account *Account) error
	AddCategory(category *Category) error
	AddTransaction(transaction *Transaction) error
	AddCategoryTransfer(transfer *CategoryTransfer) error
	AddAccountTransfer(transfer *AccountTransfer) error
	AddCategoryGroup(group *CategoryGroup) error
	ListAccounts() ([]Account, error)
	ListCategories() ([]Category, error)
	ListTransactions() ([]Transaction, error)
	ListCategoryTransfers() ([]CategoryTransfer, error)
	ListAccountTransfers() ([]AccountTransfer, error)
	ListCategoryGroups() ([]CategoryGroup, error)
	Snapshot() (*Budget, error)
	SystemAvailableCategoryID() uuid.UUID
	Policy() ReferencePolicy
}

// CloneAccounts copies a slice of accounts
func CloneAccounts(in []Account) []Account {
	out := make([]Account, len(in))
	copy(out, in)
	return out
}

// CloneCategories copies a slice of categories, including their group ids
func CloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	for i, c := range in {
		c.GroupID = cloneUUID(c.GroupID)
		out[i] = c
	}
	return out
}

// CloneCategoryGroups copies a slice of category groups
func CloneCategoryGroups(in []CategoryGroup) []CategoryGroup {
	out := make([]CategoryGroup, len(in))
	copy(out, in)
	return out
}

// CloneTransactions deep-copies transactions so optional fields share no memory
func CloneTransactions(in []Transaction) []Transaction {
	out := make([]Transaction, len(in))
	for i, t := range in {
		t.Payee = cloneString(t.Payee)
		t.Memo = cloneString(t.Memo)
		t.CategoryID = cloneUUID(t.CategoryID)
		out[i] = t
	}
	return out
}

// CloneCategoryTransfers deep-copies category transfers
func CloneCategoryTransfers(in []CategoryTransfer) []CategoryTransfer {
	out := make([]CategoryTransfer, len(in))
	for i, t := range in {
		t.Memo = cloneString(t.Memo)
		out[i] = t
	}
	return out
}

// CloneAccountTransfers deep-copies account transfers
func CloneAccountTransfers(in []AccountTransfer) []AccountTransfer {
	out := make([]AccountTransfer, len(in))
	for i, t := range in {
		t.Memo = cloneString(t.Memo)
		out[i] = t
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
