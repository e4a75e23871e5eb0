// Package storage persists the ledger in SQLite. It implements
// ledger.Store; schema changes go through the embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, ledger_id, type, amount, category, source, target, description, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.LedgerID, string(t.Type), t.Amount, t.Category, t.Source, t.Target, t.Description, t.Date)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	return t.ID, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ledgerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, ledger_id, type, amount, category, source, target, description, date
		 FROM transactions WHERE ledger_id = ? AND id = ?`, ledgerID, id)
	var t core.Transaction
	var typ string
	err := row.Scan(&t.ID, &t.LedgerID, &typ, &t.Amount, &t.Category, &t.Source, &t.Target, &t.Description, &t.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.Type = core.TxType(typ)
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, category = ?, source = ?, target = ?, description = ?, date = ?
		 WHERE ledger_id = ? AND id = ?`,
		string(t.Type), t.Amount, t.Category, t.Source, t.Target, t.Description, t.Date, t.LedgerID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ledgerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE ledger_id = ? AND id = ?`, ledgerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ledgerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, type, amount, category, source, target, description, date
		 FROM transactions WHERE ledger_id = ? ORDER BY date, id`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.LedgerID, &typ, &t.Amount, &t.Category, &t.Source, &t.Target, &t.Description, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TxType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListWallets(ctx context.Context, ledgerID string) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, name, type, color, icon, initial_balance
		 FROM wallets WHERE ledger_id = ? ORDER BY rowid`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	out := []core.Wallet{}
	for rows.Next() {
		var w core.Wallet
		if err := rows.Scan(&w.ID, &w.LedgerID, &w.Name, &w.Type, &w.Color, &w.Icon, &w.InitialBalance); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveWallet(ctx context.Context, w core.Wallet) (string, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (id, ledger_id, name, type, color, icon, initial_balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (ledger_id, id) DO UPDATE SET
		   name = excluded.name, type = excluded.type, color = excluded.color,
		   icon = excluded.icon, initial_balance = excluded.initial_balance`,
		w.ID, w.LedgerID, w.Name, w.Type, w.Color, w.Icon, w.InitialBalance)
	if err != nil {
		return "", fmt.Errorf("save wallet: %w", err)
	}
	return w.ID, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, ledgerID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, category, limit_amount
		 FROM budgets WHERE ledger_id = ? ORDER BY category`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.LedgerID, &b.Category, &b.Limit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, ledger_id, category, limit_amount)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (ledger_id, category) DO UPDATE SET limit_amount = excluded.limit_amount`,
		b.ID, b.LedgerID, b.Category, b.Limit)
	if err != nil {
		return "", fmt.Errorf("upsert budget: %w", err)
	}
	// The insert ID loses to the existing row on conflict; read it back.
	row := r.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE ledger_id = ? AND category = ?`, b.LedgerID, b.Category)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("read budget id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ledgerID, category string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE ledger_id = ? AND category = ?`, ledgerID, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, ledgerID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, title, target_amount, saved_amount, emoji, color
		 FROM goals WHERE ledger_id = ? ORDER BY rowid`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	out := []core.Goal{}
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.LedgerID, &g.Title, &g.TargetAmount, &g.SavedAmount, &g.Emoji, &g.Color); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, ledgerID, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, ledger_id, title, target_amount, saved_amount, emoji, color
		 FROM goals WHERE ledger_id = ? AND id = ?`, ledgerID, id)
	var g core.Goal
	err := row.Scan(&g.ID, &g.LedgerID, &g.Title, &g.TargetAmount, &g.SavedAmount, &g.Emoji, &g.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, ledger_id, title, target_amount, saved_amount, emoji, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.LedgerID, g.Title, g.TargetAmount, g.SavedAmount, g.Emoji, g.Color)
	if err != nil {
		return "", fmt.Errorf("insert goal: %w", err)
	}
	return g.ID, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, target_amount = ?, saved_amount = ?, emoji = ?, color = ?
		 WHERE ledger_id = ? AND id = ?`,
		g.Title, g.TargetAmount, g.SavedAmount, g.Emoji, g.Color, g.LedgerID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ledgerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE ledger_id = ? AND id = ?`, ledgerID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, ledgerID string) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, name, cost, due_day, type, color, detected
		 FROM subscriptions WHERE ledger_id = ? ORDER BY rowid`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	out := []core.Subscription{}
	for rows.Next() {
		var s core.Subscription
		if err := rows.Scan(&s.ID, &s.LedgerID, &s.Name, &s.Cost, &s.DueDay, &s.Type, &s.Color, &s.Detected); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveSubscription(ctx context.Context, s core.Subscription) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, ledger_id, name, cost, due_day, type, color, detected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.LedgerID, s.Name, s.Cost, s.DueDay, s.Type, s.Color, s.Detected)
	if err != nil {
		return "", fmt.Errorf("insert subscription: %w", err)
	}
	return s.ID, nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, ledgerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE ledger_id = ? AND id = ?`, ledgerID, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, uid string) (core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT uid, email, display_name, ledger_id FROM profiles WHERE uid = ?`, uid)
	var p core.Profile
	err := row.Scan(&p.UID, &p.Email, &p.DisplayName, &p.LedgerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, core.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (uid, email, display_name, ledger_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (uid) DO UPDATE SET
		   email = excluded.email, display_name = excluded.display_name, ledger_id = excluded.ledger_id`,
		p.UID, p.Email, p.DisplayName, p.LedgerID)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetInvitation(ctx context.Context, id string) (core.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, from_uid, from_name, to_email, ledger_id, status FROM invitations WHERE id = ?`, id)
	var inv core.Invitation
	err := row.Scan(&inv.ID, &inv.FromUID, &inv.FromName, &inv.ToEmail, &inv.LedgerID, &inv.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invitation{}, core.ErrNotFound
	}
	if err != nil {
		return core.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) SaveInvitation(ctx context.Context, inv core.Invitation) (string, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, from_uid, from_name, to_email, ledger_id, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.FromUID, inv.FromName, inv.ToEmail, inv.LedgerID, inv.Status)
	if err != nil {
		return "", fmt.Errorf("insert invitation: %w", err)
	}
	return inv.ID, nil
}

func (r *SQLiteRepository) UpdateInvitation(ctx context.Context, inv core.Invitation) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = ? WHERE id = ?`, inv.Status, inv.ID)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ResetLedger(ctx context.Context, ledgerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "wallets", "budgets", "goals", "subscriptions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE ledger_id = ?`, ledgerID); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListLedgerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ledger_id FROM wallets
		 UNION SELECT ledger_id FROM transactions
		 ORDER BY ledger_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledger ids: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ledger id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
