package service

import (
	"fmt"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryService handles budget categories and transfers between them
type CategoryService struct {
	ledgerRepo domain.LedgerRepository
	publisher  events.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(ledgerRepo domain.LedgerRepository, publisher events.EventPublisher) *CategoryService {
	return &CategoryService{
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	ID      uuid.UUID
	Name    string
	GroupID *uuid.UUID
}

// CreateCategory validates and stores a category. The system available
// category's id is reserved under every reference policy.
func (s *CategoryService) CreateCategory(input CreateCategoryInput) (*domain.Category, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.ID != uuid.Nil && input.ID == s.ledgerRepo.SystemAvailableCategoryID() {
		return nil, fmt.Errorf("%w: category %s is the system available category", domain.ErrDuplicateIdentifier, input.ID)
	}

	category := &domain.Category{
		ID:      newIDIfNil(input.ID),
		Name:    name,
		GroupID: input.GroupID,
	}

	if err := s.ledgerRepo.AddCategory(category); err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityCategory, category))
	return category, nil
}

// GetCategories lists user-created categories in insertion order.
// The system available category is not included.
func (s *CategoryService) GetCategories() ([]domain.Category, error) {
	return s.ledgerRepo.ListCategories()
}

// GetSystemAvailableCategory returns the reserved category holding unallocated funds
func (s *CategoryService) GetSystemAvailableCategory() domain.Category {
	return domain.SystemAvailableCategory(s.ledgerRepo.SystemAvailableCategoryID())
}

// CreateCategoryGroupInput holds the input for creating a category group
type CreateCategoryGroupInput struct {
	ID   uuid.UUID
	Name string
}

// CreateCategoryGroup validates and stores a category group
func (s *CategoryService) CreateCategoryGroup(input CreateCategoryGroupInput) (*domain.CategoryGroup, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	group := &domain.CategoryGroup{
		ID:   newIDIfNil(input.ID),
		Name: name,
	}

	if err := s.ledgerRepo.AddCategoryGroup(group); err != nil {
		return nil, fmt.Errorf("add category group: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityCategoryGroup, group))
	return group, nil
}

// GetCategoryGroups lists category groups in insertion order
func (s *CategoryService) GetCategoryGroups() ([]domain.CategoryGroup, error) {
	return s.ledgerRepo.ListCategoryGroups()
}

// GetReferencePolicy returns the policy the ledger store enforces
func (s *CategoryService) GetReferencePolicy() domain.ReferencePolicy {
	return s.ledgerRepo.Policy()
}

// CreateCategoryTransferInput holds the input for reassigning budgeted funds
type CreateCategoryTransferInput struct {
	ID             uuid.UUID
	Date           string
	FromCategoryID uuid.UUID
	ToCategoryID   uuid.UUID
	Amount         decimal.Decimal
	Memo           *string
}

// CreateCategoryTransfer validates and stores a category transfer
func (s *CategoryService) CreateCategoryTransfer(input CreateCategoryTransferInput) (*domain.CategoryTransfer, error) {
	date, err := validateDate(input.Date)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	memo, err := normalizeText(input.Memo)
	if err != nil {
		return nil, err
	}

	transfer := &domain.CategoryTransfer{
		ID:             newIDIfNil(input.ID),
		Date:           date,
		FromCategoryID: input.FromCategoryID,
		ToCategoryID:   input.ToCategoryID,
		Amount:         input.Amount,
		Memo:           memo,
	}

	if err := s.ledgerRepo.AddCategoryTransfer(transfer); err != nil {
		return nil, fmt.Errorf("add category transfer: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityCategoryTransfer, transfer))
	return transfer, nil
}

// GetCategoryTransfers lists category transfers in insertion order
func (s *CategoryService) GetCategoryTransfers() ([]domain.CategoryTransfer, error) {
	return s.ledgerRepo.ListCategoryTransfers()
}
