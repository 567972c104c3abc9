package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Ensure LedgerRepository implements domain.LedgerRepository
var _ domain.LedgerRepository = (*LedgerRepository)(nil)

// writeLockKey serializes ledger writers so strict reference checks and the
// insert they guard see the same state.
const writeLockKey = 0x6c6564676572

// LedgerRepository implements domain.LedgerRepository using PostgreSQL
type LedgerRepository struct {
	pool     *pgxpool.Pool
	policy   domain.ReferencePolicy
	systemID uuid.UUID
}

// NewLedgerRepository creates a LedgerRepository. The system available
// category id is read from the budget row; candidateSystemID is stored there
// the first time the database is used.
func NewLedgerRepository(ctx context.Context, pool *pgxpool.Pool, policy domain.ReferencePolicy, candidateSystemID uuid.UUID) (*LedgerRepository, error) {
	_, err := pool.Exec(ctx,
		`INSERT INTO budget (system_available_category_id) VALUES ($1) ON CONFLICT (singleton) DO NOTHING`,
		candidateSystemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize budget: %w", err)
	}

	var systemID uuid.UUID
	if err := pool.QueryRow(ctx, `SELECT system_available_category_id FROM budget`).Scan(&systemID); err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	return &LedgerRepository{
		pool:     pool,
		policy:   policy,
		systemID: systemID,
	}, nil
}

// SystemAvailableCategoryID returns the persisted system available category id
func (r *LedgerRepository) SystemAvailableCategoryID() uuid.UUID {
	return r.systemID
}

// Policy returns the reference policy applied by Add operations
func (r *LedgerRepository) Policy() domain.ReferencePolicy {
	return r.policy
}

// txIndex answers reference checks inside a write transaction
type txIndex struct {
	ctx      context.Context
	tx       pgx.Tx
	systemID uuid.UUID
}

var existsQueries = map[domain.EntityKind]string{
	domain.EntityAccount:          `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`,
	domain.EntityCategory:         `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`,
	domain.EntityTransaction:      `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`,
	domain.EntityCategoryTransfer: `SELECT EXISTS(SELECT 1 FROM category_transfers WHERE id = $1)`,
	domain.EntityAccountTransfer:  `SELECT EXISTS(SELECT 1 FROM account_transfers WHERE id = $1)`,
	domain.EntityCategoryGroup:    `SELECT EXISTS(SELECT 1 FROM category_groups WHERE id = $1)`,
}

func (i *txIndex) Exists(kind domain.EntityKind, id uuid.UUID) (bool, error) {
	if kind == domain.EntityCategory && id == i.systemID {
		return true, nil
	}
	query, ok := existsQueries[kind]
	if !ok {
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}
	var exists bool
	if err := i.tx.QueryRow(i.ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// write runs check and insert in one transaction under the writer lock
func (r *LedgerRepository) write(check func(idx domain.ReferenceIndex) error, insert func(ctx context.Context, tx pgx.Tx) error) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(writeLockKey)); err != nil {
		return err
	}
	if err := check(&txIndex{ctx: ctx, tx: tx, systemID: r.systemID}); err != nil {
		return err
	}
	if err := insert(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddAccount appends an account
func (r *LedgerRepository) AddAccount(account *domain.Account) error {
	startingBalance, err := decimalToPgNumeric(account.StartingBalance)
	if err != nil {
		return fmt.Errorf("invalid starting balance: %w", err)
	}
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckAccount(idx, account) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO accounts (id, name, starting_balance) VALUES ($1, $2, $3)`,
				account.ID, account.Name, startingBalance,
			)
			return err
		},
	)
}

// AddCategory appends a category
func (r *LedgerRepository) AddCategory(category *domain.Category) error {
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckCategory(idx, category) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO categories (id, name, group_id) VALUES ($1, $2, $3)`,
				category.ID, category.Name, uuidPtrToPg(category.GroupID),
			)
			return err
		},
	)
}

// AddCategoryGroup appends a category group
func (r *LedgerRepository) AddCategoryGroup(group *domain.CategoryGroup) error {
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckCategoryGroup(idx, group) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO category_groups (id, name) VALUES ($1, $2)`,
				group.ID, group.Name,
			)
			return err
		},
	)
}

// AddTransaction appends a transaction
func (r *LedgerRepository) AddTransaction(t *domain.Transaction) error {
	inflow, err := decimalToPgNumeric(t.Inflow)
	if err != nil {
		return fmt.Errorf("invalid inflow: %w", err)
	}
	outflow, err := decimalToPgNumeric(t.Outflow)
	if err != nil {
		return fmt.Errorf("invalid outflow: %w", err)
	}
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckTransaction(idx, t) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO transactions (id, date, payee, memo, account_id, category_id, inflow, outflow, status)
				 VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)`,
				t.ID, t.Date, t.Payee, t.Memo, t.AccountID, uuidPtrToPg(t.CategoryID), inflow, outflow, string(t.Status),
			)
			return err
		},
	)
}

// AddCategoryTransfer appends a category transfer
func (r *LedgerRepository) AddCategoryTransfer(t *domain.CategoryTransfer) error {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckCategoryTransfer(idx, t) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO category_transfers (id, date, from_category_id, to_category_id, amount, memo)
				 VALUES ($1, $2::date, $3, $4, $5, $6)`,
				t.ID, t.Date, t.FromCategoryID, t.ToCategoryID, amount, t.Memo,
			)
			return err
		},
	)
}

// AddAccountTransfer appends an account transfer
func (r *LedgerRepository) AddAccountTransfer(t *domain.AccountTransfer) error {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	return r.write(
		func(idx domain.ReferenceIndex) error { return r.policy.CheckAccountTransfer(idx, t) },
		func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO account_transfers (id, date, from_account_id, to_account_id, amount, memo)
				 VALUES ($1, $2::date, $3, $4, $5, $6)`,
				t.ID, t.Date, t.FromAccountID, t.ToAccountID, amount, t.Memo,
			)
			return err
		},
	)
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listAccounts(ctx context.Context, q querier) ([]domain.Account, error) {
	rows, err := q.Query(ctx, `SELECT id, name, starting_balance FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var a domain.Account
		var startingBalance pgtype.Numeric
		if err := rows.Scan(&a.ID, &a.Name, &startingBalance); err != nil {
			return nil, err
		}
		a.StartingBalance = pgNumericToDecimal(startingBalance)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func listCategories(ctx context.Context, q querier) ([]domain.Category, error) {
	rows, err := q.Query(ctx, `SELECT id, name, group_id FROM categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		var groupID pgtype.UUID
		if err := rows.Scan(&c.ID, &c.Name, &groupID); err != nil {
			return nil, err
		}
		c.GroupID = pgToUUIDPtr(groupID)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func listCategoryGroups(ctx context.Context, q querier) ([]domain.CategoryGroup, error) {
	rows, err := q.Query(ctx, `SELECT id, name FROM category_groups ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []domain.CategoryGroup{}
	for rows.Next() {
		var g domain.CategoryGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func listTransactions(ctx context.Context, q querier) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx,
		`SELECT id, to_char(date, 'YYYY-MM-DD'), payee, memo, account_id, category_id, inflow, outflow, status
		 FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		var categoryID pgtype.UUID
		var inflow, outflow pgtype.Numeric
		var status string
		if err := rows.Scan(&t.ID, &t.Date, &t.Payee, &t.Memo, &t.AccountID, &categoryID, &inflow, &outflow, &status); err != nil {
			return nil, err
		}
		t.CategoryID = pgToUUIDPtr(categoryID)
		t.Inflow = pgNumericToDecimal(inflow)
		t.Outflow = pgNumericToDecimal(outflow)
		t.Status = domain.TransactionStatus(status)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func listCategoryTransfers(ctx context.Context, q querier) ([]domain.CategoryTransfer, error) {
	rows, err := q.Query(ctx,
		`SELECT id, to_char(date, 'YYYY-MM-DD'), from_category_id, to_category_id, amount, memo
		 FROM category_transfers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []domain.CategoryTransfer{}
	for rows.Next() {
		var t domain.CategoryTransfer
		var amount pgtype.Numeric
		if err := rows.Scan(&t.ID, &t.Date, &t.FromCategoryID, &t.ToCategoryID, &amount, &t.Memo); err != nil {
			return nil, err
		}
		t.Amount = pgNumericToDecimal(amount)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func listAccountTransfers(ctx context.Context, q querier) ([]domain.AccountTransfer, error) {
	rows, err := q.Query(ctx,
		`SELECT id, to_char(date, 'YYYY-MM-DD'), from_account_id, to_account_id, amount, memo
		 FROM account_transfers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []domain.AccountTransfer{}
	for rows.Next() {
		var t domain.AccountTransfer
		var amount pgtype.Numeric
		if err := rows.Scan(&t.ID, &t.Date, &t.FromAccountID, &t.ToAccountID, &amount, &t.Memo); err != nil {
			return nil, err
		}
		t.Amount = pgNumericToDecimal(amount)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *LedgerRepository) ListAccounts() ([]domain.Account, error) {
	return listAccounts(context.Background(), r.pool)
}

func (r *LedgerRepository) ListCategories() ([]domain.Category, error) {
	return listCategories(context.Background(), r.pool)
}

func (r *LedgerRepository) ListTransactions() ([]domain.Transaction, error) {
	return listTransactions(context.Background(), r.pool)
}

func (r *LedgerRepository) ListCategoryTransfers() ([]domain.CategoryTransfer, error) {
	return listCategoryTransfers(context.Background(), r.pool)
}

func (r *LedgerRepository) ListAccountTransfers() ([]domain.AccountTransfer, error) {
	return listAccountTransfers(context.Background(), r.pool)
}

func (r *LedgerRepository) ListCategoryGroups() ([]domain.CategoryGroup, error) {
	return listCategoryGroups(context.Background(), r.pool)
}

// Snapshot reads every collection in one repeatable-read transaction
func (r *LedgerRepository) Snapshot() (*domain.Budget, error) {
	ctx := context.Background()
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b := domain.NewBudget(r.systemID)
	if b.Accounts, err = listAccounts(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot accounts: %w", err)
	}
	if b.Categories, err = listCategories(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot categories: %w", err)
	}
	if b.Transactions, err = listTransactions(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	if b.CategoryTransfers, err = listCategoryTransfers(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot category transfers: %w", err)
	}
	if b.AccountTransfers, err = listAccountTransfers(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot account transfers: %w", err)
	}
	if b.CategoryGroups, err = listCategoryGroups(ctx, tx); err != nil {
		return nil, fmt.Errorf("snapshot category groups: %w", err)
	}

	if err := tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return nil, err
	}
	return b, nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func uuidPtrToPg(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func pgToUUIDPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := uuid.UUID(id.Bytes)
	return &v
}
