package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/dafibh/envelope/envelope-backend/internal/testutil"
)

func TestGetBudget(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyStrict)

	rec := s.do(http.MethodGet, "/api/v1/budget", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response BudgetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.SystemAvailableCategoryID != s.store.SystemAvailableCategoryID() {
		t.Errorf("Expected system id %s, got %s", s.store.SystemAvailableCategoryID(), response.SystemAvailableCategoryID)
	}
	if response.SystemAvailableCategoryName != domain.SystemAvailableCategoryName {
		t.Errorf("Expected name %q, got %q", domain.SystemAvailableCategoryName, response.SystemAvailableCategoryName)
	}
	if response.ReferencePolicy != domain.ReferencePolicyStrict {
		t.Errorf("Expected strict policy, got %s", response.ReferencePolicy)
	}
}

func TestDashboard_EmptyBudget(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)

	rec := s.do(http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.AvailableToBudget != "0.00" {
		t.Errorf("Expected '0.00', got %s", response.AvailableToBudget)
	}
}

// Checking starts at 100, 20 spent on groceries, 50 moved from available to groceries.
func TestDashboard_ReferenceScenario(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyStrict)
	systemID := s.store.SystemAvailableCategoryID().String()

	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Checking", "starting_balance": 100.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	var checking domain.Account
	_ = json.Unmarshal(rec.Body.Bytes(), &checking)
	groceries := s.createCategory(t, "Groceries")

	rec = s.do(http.MethodPost, "/api/v1/transactions",
		`{"date": "2025-06-20", "account_id": "`+checking.ID.String()+`", "category_id": "`+groceries.ID.String()+`", "inflow": 0, "outflow": 20.0, "status": "settled"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPost, "/api/v1/category-transfers",
		`{"date": "2025-06-20", "from_category_id": "`+systemID+`", "to_category_id": "`+groceries.ID.String()+`", "amount": 50.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/dashboard", "")
	var dashboard DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dashboard); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if dashboard.AvailableToBudget != "-50.00" {
		t.Errorf("Expected '-50.00', got %s", dashboard.AvailableToBudget)
	}

	rec = s.do(http.MethodGet, "/api/v1/available", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "-50" {
		t.Errorf("Expected bare number -50, got %s", got)
	}

	rec = s.do(http.MethodGet, "/api/v1/categories/balances", "")
	var categories []CategoryBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(categories) != 2 || categories[1].Balance != "30.00" {
		t.Errorf("Expected groceries 30.00, got %+v", categories)
	}

	rec = s.do(http.MethodGet, "/api/v1/accounts/balances", "")
	var accounts []AccountBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Balance != "80.00" {
		t.Errorf("Expected checking 80.00, got %+v", accounts)
	}
}

func TestDashboard_StoreFailure(t *testing.T) {
	s := newTestServerWith(&testutil.FailingLedgerRepository{}, &events.NoOpPublisher{}, nil)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/available", "/api/v1/categories/balances", "/api/v1/category-groups/balances", "/api/v1/net-worth"} {
		rec := s.do(http.MethodGet, path, "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected status 500, got %d", path, rec.Code)
		}
	}
}

func TestGetNetWorth(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyLax)
	checking := s.createAccount(t, "Checking")
	s.do(http.MethodPost, "/api/v1/transactions",
		`{"date": "2024-01-01", "account_id": "`+checking.ID.String()+`", "inflow": "100"}`)
	rec := s.do(http.MethodPost, "/api/v1/accounts", `{"name": "Card", "starting_balance": "-30.5"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/net-worth", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response NetWorthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	want := NetWorthResponse{Assets: "100.00", Liabilities: "30.50", NetWorth: "69.50"}
	if response != want {
		t.Errorf("Expected %+v, got %+v", want, response)
	}
}

func TestGetNetWorth_EmptyBudget(t *testing.T) {
	s := newTestServer(domain.ReferencePolicyStrict)

	rec := s.do(http.MethodGet, "/api/v1/net-worth", "")
	if !strings.Contains(rec.Body.String(), `"net_worth":"0.00"`) {
		t.Errorf("Expected zero net worth, got %s", rec.Body.String())
	}
}
