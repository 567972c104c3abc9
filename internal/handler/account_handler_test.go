package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/memory"
	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/dafibh/envelope/envelope-backend/internal/testutil"
	"github.com/dafibh/envelope/envelope-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type testServer struct {
	e         *echo.Echo
	store     *memory.LedgerStore
	publisher *testutil.MockEventPublisher
	snapshots *testutil.MockSnapshotRepository
}

func newTestServer(policy domain.ReferencePolicy) *testServer {
	store := memory.NewLedgerStore(uuid.New(), policy)
	publisher := testutil.NewMockEventPublisher()
	snapshots := testutil.NewMockSnapshotRepository()
	return newTestServerWith(store, publisher, snapshots)
}

func newTestServerWith(store domain.LedgerRepository, publisher events.EventPublisher, snapshots *testutil.MockSnapshotRepository) *testServer {
	accountService := service.NewAccountService(store, publisher)
	categoryService := service.NewCategoryService(store, publisher)
	transactionService := service.NewTransactionService(store, publisher)
	calculationService := service.NewCalculationService(store)

	var exportService *service.ExportService
	if snapshots != nil {
		exportService = service.NewExportService(store, snapshots)
	} else {
		exportService = service.NewExportService(store, nil)
	}

	e := echo.New()
	RegisterRoutes(e, Handlers{
		Account:     NewAccountHandler(accountService, calculationService),
		Category:    NewCategoryHandler(categoryService, calculationService),
		Transaction: NewTransactionHandler(transactionService),
		Transfer:    NewTransferHandler(categoryService, accountService),
		Budget:      NewBudgetHandler(categoryService, calculationService),
		Export:      NewExportHandler(exportService),
		WebSocket:   NewWebSocketHandler(websocket.NewHub(), nil),
	})

	s := &testServer{e: e, snapshots: snapshots}
	if m, ok := store.(*memory.LedgerStore); ok {
		s.store = m
	}
	if p, ok := publisher.(*testutil.MockEventPublisher); ok {
		s.publisher = p
	}
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createAccount(t *testing.T, name string) domain.Account {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "`+name+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var account domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("Failed to unmarshal account: %v", err)
	}
	return account
}

func (s *testServer) createCategory(t *testing.T, name string) domain.Category {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/categories", `{"name": "`+name+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var category domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &category); err != nil {
		t.Fatalf("Failed to unmarshal category: %v", err)
	}
	return category
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return problem
}

func TestCreateAccount_Success(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Checking", "starting_balance": "100.50"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Checking" {
		t.Errorf("Expected name 'Checking', got %s", response.Name)
	}
	if response.ID == uuid.Nil {
		t.Error("Expected assigned id")
	}
	if !response.StartingBalance.Equal(decimal.RequireFromString("100.5")) {
		t.Errorf("Expected starting balance 100.50, got %s", response.StartingBalance)
	}
	if len(s.publisher.Events()) != 1 {
		t.Errorf("Expected 1 event, got %d", len(s.publisher.Events()))
	}
}

func TestCreateAccount_NumericStartingBalance(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Cash", "starting_balance": 12.25}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"starting_balance":"12.25"`) {
		t.Errorf("Expected starting balance emitted as string, got %s", rec.Body.String())
	}
}

func TestCreateAccount_WithID(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)
	id := uuid.New()

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"id": "`+id.String()+`", "name": "Checking"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), id.String()) {
		t.Errorf("Expected response to carry id %s, got %s", id, rec.Body.String())
	}
}

func TestCreateAccount_EmptyName(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	problem := decodeProblem(t, rec)
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected validation error type, got %s", problem.Type)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "name" {
		t.Errorf("Expected name field error, got %+v", problem.Errors)
	}
}

func TestCreateAccount_InvalidJSON(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	for _, body := range []string{`{"name": `, `{"name": "A", "starting_balance": "abc"}`, `{"id": "nope", "name": "A"}`} {
		rec := s.do(http.MethodPost, "/api/v1/accounts", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateAccount_StrictDuplicateID(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyStrict)
	id := uuid.New().String()

	first := s.do(http.MethodPost, "/api/v1/accounts", `{"id": "`+id+`", "name": "A"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", first.Code)
	}

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"id": "`+id+`", "name": "B"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}
	if problem := decodeProblem(t, rec); problem.Type != ErrorTypeConflict {
		t.Errorf("Expected conflict error type, got %s", problem.Type)
	}
}

func TestCreateAccount_StoreFailure(t *testing.T) {
	s := newTestServerWith(&testutil.FailingLedgerRepository{}, &events.NoOpPublisher{}, nil)

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Checking"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
	if problem := decodeProblem(t, rec); problem.Type != ErrorTypeInternal {
		t.Errorf("Expected internal error type, got %s", problem.Type)
	}
}

func TestGetAccounts_InsertionOrder(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	rec := s.do(http.MethodGet, "/api/v1/accounts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %s", rec.Body.String())
	}

	s.createAccount(t, "First")
	s.createAccount(t, "Second")

	rec = s.do(http.MethodGet, "/api/v1/accounts", "")
	var accounts []domain.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Name != "First" || accounts[1].Name != "Second" {
		t.Errorf("Expected accounts in insertion order, got %+v", accounts)
	}
}

func TestGetAccountBalances(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)
	checking := s.createAccount(t, "Checking")
	savings := s.createAccount(t, "Savings")

	s.do(http.MethodPost, "/api/v1/transactions",
		`{"date": "2024-01-01", "account_id": "`+checking.ID.String()+`", "inflow": "100"}`)
	s.do(http.MethodPost, "/api/v1/account-transfers",
		`{"date": "2024-01-02", "from_account_id": "`+checking.ID.String()+`", "to_account_id": "`+savings.ID.String()+`", "amount": "40"}`)

	rec := s.do(http.MethodGet, "/api/v1/accounts/balances", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []AccountBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 balances, got %d", len(response))
	}
	if response[0].Balance != "100.00" {
		t.Errorf("Expected checking balance 100.00, got %s", response[0].Balance)
	}
	if response[0].TransferNet != "-40.00" || response[0].BalanceWithTransfers != "60.00" {
		t.Errorf("Expected checking transfer figures -40.00/60.00, got %s/%s",
			response[0].TransferNet, response[0].BalanceWithTransfers)
	}
	if response[1].Balance != "0.00" || response[1].BalanceWithTransfers != "40.00" {
		t.Errorf("Expected savings 0.00/40.00, got %s/%s", response[1].Balance, response[1].BalanceWithTransfers)
	}
}

func TestCreateAccount_AmountOutOfRange(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	for _, balance := range []string{`"1e15"`, `"-1e15"`, `"0.123456789"`, `"1e-7000000"`} {
		rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Checking", "starting_balance": `+balance+`}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("balance %s: expected status 400, got %d", balance, rec.Code)
		}
	}
}

func TestGetAccountBalances_LaxRepeatedIDListedOnce(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)
	id := uuid.New().String()

	for _, body := range []string{
		`{"id": "` + id + `", "name": "First", "starting_balance": "10"}`,
		`{"id": "` + id + `", "name": "Second", "starting_balance": "99"}`,
	} {
		if rec := s.do(http.MethodPost, "/api/v1/accounts", body); rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", rec.Code)
		}
	}

	rec := s.do(http.MethodGet, "/api/v1/accounts/balances", "")
	var response []AccountBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 balance row, got %d", len(response))
	}
	if response[0].Name != "First" || response[0].StartingBalance != response[0].Balance {
		t.Errorf("Expected first definition with matching balance, got %+v", response[0])
	}
}
