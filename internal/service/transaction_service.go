package service

import (
	"fmt"
	"strings"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	ledgerRepo domain.LedgerRepository
	publisher  events.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(ledgerRepo domain.LedgerRepository, publisher events.EventPublisher) *TransactionService {
	return &TransactionService{
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	ID         uuid.UUID
	Date       string
	Payee      *string
	Memo       *string
	AccountID  uuid.UUID
	CategoryID *uuid.UUID
	Inflow     decimal.Decimal
	Outflow    decimal.Decimal
	Status     string
}

// CreateTransaction validates and stores a transaction. Inflow and outflow
// must each be non-negative; an empty status defaults to settled.
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*domain.Transaction, error) {
	date, err := validateDate(input.Date)
	if err != nil {
		return nil, err
	}
	if err := validateNonNegative(input.Inflow); err != nil {
		return nil, fmt.Errorf("inflow: %w", err)
	}
	if err := validateNonNegative(input.Outflow); err != nil {
		return nil, fmt.Errorf("outflow: %w", err)
	}
	payee, err := normalizeText(input.Payee)
	if err != nil {
		return nil, fmt.Errorf("payee: %w", err)
	}
	memo, err := normalizeText(input.Memo)
	if err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}

	status := domain.TransactionStatus(strings.TrimSpace(input.Status))
	if status == "" {
		status = domain.TransactionStatusSettled
	}

	transaction := &domain.Transaction{
		ID:         newIDIfNil(input.ID),
		Date:       date,
		Payee:      payee,
		Memo:       memo,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Inflow:     input.Inflow,
		Outflow:    input.Outflow,
		Status:     status,
	}

	if err := s.ledgerRepo.AddTransaction(transaction); err != nil {
		return nil, fmt.Errorf("add transaction: %w", err)
	}

	s.publisher.Publish(events.Created(domain.EntityTransaction, transaction))
	return transaction, nil
}

// GetTransactions lists transactions in insertion order
func (s *TransactionService) GetTransactions() ([]domain.Transaction, error) {
	return s.ledgerRepo.ListTransactions()
}
