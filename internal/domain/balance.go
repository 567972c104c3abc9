package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryBalance is the net of every transaction assigned to the category
// plus transfers into it minus transfers out of it. Unknown ids yield zero.
func CategoryBalance(b *Budget, categoryID uuid.UUID) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range b.Transactions {
		if tx.InCategory(categoryID) {
			balance = balance.Add(tx.Net())
		}
	}
	for _, tr := range b.CategoryTransfers {
		if tr.ToCategoryID == categoryID {
			balance = balance.Add(tr.Amount)
		}
		if tr.FromCategoryID == categoryID {
			balance = balance.Sub(tr.Amount)
		}
	}
	return balance
}

// AccountBalance is the account's starting balance plus the net of its
// transactions. Account transfers are deliberately not included; see
// AccountBalanceWithTransfers.
func AccountBalance(b *Budget, accountID uuid.UUID) decimal.Decimal {
	balance := startingBalance(b, accountID)
	for _, tx := range b.Transactions {
		if tx.AccountID == accountID {
			balance = balance.Add(tx.Net())
		}
	}
	return balance
}

// AvailableToBudget is the balance of the system available category.
// Negative means more was allocated out of it than exists.
func AvailableToBudget(b *Budget) decimal.Decimal {
	return CategoryBalance(b, b.SystemAvailableCategoryID)
}

// AccountTransferNet is money received by the account through account
// transfers minus money sent out of it.
func AccountTransferNet(b *Budget, accountID uuid.UUID) decimal.Decimal {
	net := decimal.Zero
	for _, tr := range b.AccountTransfers {
		if tr.ToAccountID == accountID {
			net = net.Add(tr.Amount)
		}
		if tr.FromAccountID == accountID {
			net = net.Sub(tr.Amount)
		}
	}
	return net
}

// AccountBalanceWithTransfers is AccountBalance adjusted by AccountTransferNet
func AccountBalanceWithTransfers(b *Budget, accountID uuid.UUID) decimal.Decimal {
	return AccountBalance(b, accountID).Add(AccountTransferNet(b, accountID))
}

// CategoryBalances computes the balance of every known category, including
// the system available category, in a single pass over the budget.
func CategoryBalances(b *Budget) map[uuid.UUID]decimal.Decimal {
	balances := make(map[uuid.UUID]decimal.Decimal, len(b.Categories)+1)
	balances[b.SystemAvailableCategoryID] = decimal.Zero
	for _, c := range b.Categories {
		balances[c.ID] = decimal.Zero
	}

	for _, tx := range b.Transactions {
		if tx.CategoryID == nil {
			continue
		}
		if cur, ok := balances[*tx.CategoryID]; ok {
			balances[*tx.CategoryID] = cur.Add(tx.Net())
		}
	}
	for _, tr := range b.CategoryTransfers {
		if cur, ok := balances[tr.ToCategoryID]; ok {
			balances[tr.ToCategoryID] = cur.Add(tr.Amount)
		}
		if cur, ok := balances[tr.FromCategoryID]; ok {
			balances[tr.FromCategoryID] = cur.Sub(tr.Amount)
		}
	}
	return balances
}

// AccountBalances computes AccountBalance for every known account in a single pass
func AccountBalances(b *Budget) map[uuid.UUID]decimal.Decimal {
	balances := make(map[uuid.UUID]decimal.Decimal, len(b.Accounts))
	for _, a := range b.Accounts {
		// First account wins when ids repeat, matching startingBalance.
		if _, ok := balances[a.ID]; !ok {
			balances[a.ID] = a.StartingBalance
		}
	}
	for _, tx := range b.Transactions {
		if cur, ok := balances[tx.AccountID]; ok {
			balances[tx.AccountID] = cur.Add(tx.Net())
		}
	}
	return balances
}

// NetWorthSummary splits transfer-adjusted account balances into what is owned
// and what is owed. Liabilities is a positive magnitude.
type NetWorthSummary struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	NetWorth    decimal.Decimal
}

// NetWorth totals AccountBalanceWithTransfers over every known account, each
// id counted once. Accounts with a negative balance count as liabilities.
func NetWorth(b *Budget) NetWorthSummary {
	balances := AccountBalances(b)
	summary := NetWorthSummary{Assets: decimal.Zero, Liabilities: decimal.Zero}

	seen := make(map[uuid.UUID]bool, len(balances))
	for _, a := range b.Accounts {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true

		total := balances[a.ID].Add(AccountTransferNet(b, a.ID))
		if total.IsNegative() {
			summary.Liabilities = summary.Liabilities.Sub(total)
		} else {
			summary.Assets = summary.Assets.Add(total)
		}
	}
	summary.NetWorth = summary.Assets.Sub(summary.Liabilities)
	return summary
}

func startingBalance(b *Budget, accountID uuid.UUID) decimal.Decimal {
	for _, a := range b.Accounts {
		if a.ID == accountID {
			return a.StartingBalance
		}
	}
	return decimal.Zero
}
