package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EntityKind names one of the ledger collections
type EntityKind string

const (
	EntityAccount          EntityKind = "account"
	EntityCategory         EntityKind = "category"
	EntityTransaction      EntityKind = "transaction"
	EntityCategoryTransfer EntityKind = "category_transfer"
	EntityAccountTransfer  EntityKind = "account_transfer"
	EntityCategoryGroup    EntityKind = "category_group"
)

// EntityKinds lists every collection in a stable order
var EntityKinds = []EntityKind{
	EntityAccount,
	EntityCategory,
	EntityTransaction,
	EntityCategoryTransfer,
	EntityAccountTransfer,
	EntityCategoryGroup,
}

// ReferencePolicy decides how Add treats dangling references and duplicate ids.
//
// ReferencePolicyLax accepts both silently; the balance engine then absorbs
// dangling references as zero contributions. ReferencePolicyStrict rejects them
// with ErrInvalidReference and ErrDuplicateIdentifier.
type ReferencePolicy string

const (
	ReferencePolicyLax    ReferencePolicy = "lax"
	ReferencePolicyStrict ReferencePolicy = "strict"
)

// ParseReferencePolicy parses a policy name; empty means lax
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch ReferencePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReferencePolicyLax:
		return ReferencePolicyLax, nil
	case ReferencePolicyStrict:
		return ReferencePolicyStrict, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// ReferenceIndex answers existence questions for reference checks.
// For EntityCategory it must report the system available category as existing.
type ReferenceIndex interface {
	Exists(kind EntityKind, id uuid.UUID) (bool, error)
}

func (p ReferencePolicy) CheckAccount(idx ReferenceIndex, a *Account) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	return checkUnique(idx, EntityAccount, a.ID)
}

func (p ReferencePolicy) CheckCategory(idx ReferenceIndex, c *Category) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	if err := checkUnique(idx, EntityCategory, c.ID); err != nil {
		return err
	}
	if c.GroupID != nil {
		return checkExists(idx, EntityCategoryGroup, "group_id", *c.GroupID)
	}
	return nil
}

func (p ReferencePolicy) CheckCategoryGroup(idx ReferenceIndex, g *CategoryGroup) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	return checkUnique(idx, EntityCategoryGroup, g.ID)
}

func (p ReferencePolicy) CheckTransaction(idx ReferenceIndex, t *Transaction) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	if err := checkUnique(idx, EntityTransaction, t.ID); err != nil {
		return err
	}
	if err := checkExists(idx, EntityAccount, "account_id", t.AccountID); err != nil {
		return err
	}
	if t.CategoryID != nil {
		return checkExists(idx, EntityCategory, "category_id", *t.CategoryID)
	}
	return nil
}

func (p ReferencePolicy) CheckCategoryTransfer(idx ReferenceIndex, t *CategoryTransfer) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	if err := checkUnique(idx, EntityCategoryTransfer, t.ID); err != nil {
		return err
	}
	if err := checkExists(idx, EntityCategory, "from_category_id", t.FromCategoryID); err != nil {
		return err
	}
	return checkExists(idx, EntityCategory, "to_category_id", t.ToCategoryID)
}

func (p ReferencePolicy) CheckAccountTransfer(idx ReferenceIndex, t *AccountTransfer) error {
	if p != ReferencePolicyStrict {
		return nil
	}
	if err := checkUnique(idx, EntityAccountTransfer, t.ID); err != nil {
		return err
	}
	if err := checkExists(idx, EntityAccount, "from_account_id", t.FromAccountID); err != nil {
		return err
	}
	return checkExists(idx, EntityAccount, "to_account_id", t.ToAccountID)
}

func checkUnique(idx ReferenceIndex, kind EntityKind, id uuid.UUID) error {
	exists, err := idx.Exists(kind, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateIdentifier, kind, id)
	}
	return nil
}

func checkExists(idx ReferenceIndex, kind EntityKind, field string, id uuid.UUID) error {
	exists, err := idx.Exists(kind, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", ErrInvalidReference, field, id)
	}
	return nil
}
