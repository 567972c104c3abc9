package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/memory"
	"github.com/dafibh/envelope/envelope-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestStore(policy domain.ReferencePolicy) *memory.LedgerStore {
	return memory.NewLedgerStore(uuid.New(), policy)
}

func TestCreateAccount_Success(t *testing.T) {
	store := newTestStore(domain.ReferencePolicyLax)
	publisher := testutil.NewMockEventPublisher()
	accountService := NewAccountService(store, publisher)

	account, err := accountService.CreateAccount(CreateAccountInput{
		Name:            "  Checking ",
		StartingBalance: decimal.RequireFromString("100.50"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if account.Name != "Checking" {
		t.Errorf("Expected trimmed name 'Checking', got %q", account.Name)
	}
	if account.ID == uuid.Nil {
		t.Error("Expected an id to be assigned")
	}
	if !account.StartingBalance.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("Expected starting balance 100.50, got %s", account.StartingBalance)
	}

	accounts, _ := accountService.GetAccounts()
	if len(accounts) != 1 || accounts[0].ID != account.ID {
		t.Errorf("Expected stored account, got %+v", accounts)
	}

	published := publisher.Events()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}
	if published[0].Type != "account.created" {
		t.Errorf("Expected type 'account.created', got %s", published[0].Type)
	}
}

func TestCreateAccount_KeepsSuppliedID(t *testing.T) {
	accountService := NewAccountService(newTestStore(domain.ReferencePolicyLax), &events.NoOpPublisher{})
	id := uuid.New()

	account, err := accountService.CreateAccount(CreateAccountInput{ID: id, Name: "Savings"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if account.ID != id {
		t.Errorf("Expected id %s, got %s", id, account.ID)
	}
}

func TestCreateAccount_NameValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", domain.ErrNameRequired},
		{"whitespace only", "   ", domain.ErrNameRequired},
		{"too long", strings.Repeat("a", domain.MaxNameLength+1), domain.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := testutil.NewMockEventPublisher()
			accountService := NewAccountService(newTestStore(domain.ReferencePolicyLax), publisher)

			_, err := accountService.CreateAccount(CreateAccountInput{Name: tt.input})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if len(publisher.Events()) != 0 {
				t.Error("Expected no event for rejected input")
			}
		})
	}
}

func TestCreateAccount_StrictDuplicate(t *testing.T) {
	accountService := NewAccountService(newTestStore(domain.ReferencePolicyStrict), &events.NoOpPublisher{})
	id := uuid.New()

	if _, err := accountService.CreateAccount(CreateAccountInput{ID: id, Name: "A"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := accountService.CreateAccount(CreateAccountInput{ID: id, Name: "B"})
	if !errors.Is(err, domain.ErrDuplicateIdentifier) {
		t.Errorf("Expected ErrDuplicateIdentifier, got %v", err)
	}
}

func TestCreateAccount_RepositoryError(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	accountService := NewAccountService(&testutil.FailingLedgerRepository{}, publisher)

	_, err := accountService.CreateAccount(CreateAccountInput{Name: "Checking"})
	if !errors.Is(err, testutil.ErrMockStore) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
	if len(publisher.Events()) != 0 {
		t.Error("Expected no event when the store fails")
	}
}

func TestCreateAccountTransfer_Success(t *testing.T) {
	store := newTestStore(domain.ReferencePolicyStrict)
	publisher := testutil.NewMockEventPublisher()
	accountService := NewAccountService(store, publisher)

	from, _ := accountService.CreateAccount(CreateAccountInput{Name: "Checking"})
	to, _ := accountService.CreateAccount(CreateAccountInput{Name: "Savings"})
	memo := "  rainy day "

	transfer, err := accountService.CreateAccountTransfer(CreateAccountTransferInput{
		Date:          "2024-03-01",
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(25),
		Memo:          &memo,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if transfer.Memo == nil || *transfer.Memo != "rainy day" {
		t.Errorf("Expected trimmed memo, got %v", transfer.Memo)
	}

	transfers, _ := accountService.GetAccountTransfers()
	if len(transfers) != 1 {
		t.Errorf("Expected 1 transfer, got %d", len(transfers))
	}

	published := publisher.Events()
	if last := published[len(published)-1]; last.Type != "account_transfer.created" {
		t.Errorf("Expected 'account_transfer.created', got %s", last.Type)
	}
}

func TestCreateAccountTransfer_InvalidDate(t *testing.T) {
	accountService := NewAccountService(newTestStore(domain.ReferencePolicyLax), &events.NoOpPublisher{})

	for _, date := range []string{"", "2024-13-01", "01/03/2024", "2024-02-30"} {
		_, err := accountService.CreateAccountTransfer(CreateAccountTransferInput{
			Date:          date,
			FromAccountID: uuid.New(),
			ToAccountID:   uuid.New(),
			Amount:        decimal.NewFromInt(1),
		})
		if !errors.Is(err, domain.ErrInvalidDate) {
			t.Errorf("date %q: expected ErrInvalidDate, got %v", date, err)
		}
	}
}

func TestCreateAccountTransfer_StrictDanglingAccount(t *testing.T) {
	accountService := NewAccountService(newTestStore(domain.ReferencePolicyStrict), &events.NoOpPublisher{})
	from, _ := accountService.CreateAccount(CreateAccountInput{Name: "Checking"})

	_, err := accountService.CreateAccountTransfer(CreateAccountTransferInput{
		Date:          "2024-03-01",
		FromAccountID: from.ID,
		ToAccountID:   uuid.New(),
		Amount:        decimal.NewFromInt(5),
	})
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference, got %v", err)
	}
}
