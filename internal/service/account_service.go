package service

import (
	"fmt"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService handles accounts and transfers between them
type AccountService struct {
	ledgerRepo domain.LedgerRepository
	publisher  events.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(ledgerRepo domain.LedgerRepository, publisher events.EventPublisher) *AccountService {
	return &AccountService{
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	ID              uuid.UUID
	Name            string
	StartingBalance decimal.Decimal
}

// CreateAccount validates and stores an account. A nil ID is replaced with a new one.
func (s *AccountService) CreateAccount(input CreateAccountInput) (*domain.Account, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(input.StartingBalance); err != nil {
		return nil, fmt.Errorf("starting_balance: %w", err)
	}

	account := &domain.Account{
		ID:              newIDIfNil(input.ID),
		Name:            name,
		StartingBalance: input.StartingBalance,
	}

	if err := s.ledgerRepo.AddAccount(account); err != nil {
		return nil, fmt.Errorf("add account: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityAccount, account))
	return account, nil
}

// GetAccounts lists accounts in insertion order
func (s *AccountService) GetAccounts() ([]domain.Account, error) {
	return s.ledgerRepo.ListAccounts()
}

// CreateAccountTransferInput holds the input for moving money between accounts
type CreateAccountTransferInput struct {
	ID            uuid.UUID
	Date          string
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Memo          *string
}

// CreateAccountTransfer validates and stores an account transfer
func (s *AccountService) CreateAccountTransfer(input CreateAccountTransferInput) (*domain.AccountTransfer, error) {
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

	transfer := &domain.AccountTransfer{
		ID:            newIDIfNil(input.ID),
		Date:          date,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Memo:          memo,
	}

	if err := s.ledgerRepo.AddAccountTransfer(transfer); err != nil {
		return nil, fmt.Errorf("add account transfer: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityAccountTransfer, transfer))
	return transfer, nil
}

// GetAccountTransfers lists account transfers in insertion order
func (s *AccountService) GetAccountTransfers() ([]domain.AccountTransfer, error) {
	return s.ledgerRepo.ListAccountTransfers()
}
