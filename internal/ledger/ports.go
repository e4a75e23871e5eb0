// Package ledger orchestrates the domain: it validates operations,
// persists them through a Store, and announces mutations on an event
// publisher. All derived views (balances, budget usage, subscription
// candidates) are recomputed from the persisted log on demand.
package ledger

import (
	"context"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

// Store is the persistence port. Implementations return core.ErrNotFound
// for lookups that miss; list methods return empty slices, never nil
// errors for empty ledgers.
type Store interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
	GetTransaction(ctx context.Context, ledgerID, id string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, ledgerID, id string) error
	ListTransactions(ctx context.Context, ledgerID string) ([]core.Transaction, error)

	ListWallets(ctx context.Context, ledgerID string) ([]core.Wallet, error)
	SaveWallet(ctx context.Context, w core.Wallet) (string, error)

	ListBudgets(ctx context.Context, ledgerID string) ([]core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) (string, error)
	DeleteBudget(ctx context.Context, ledgerID, category string) error

	ListGoals(ctx context.Context, ledgerID string) ([]core.Goal, error)
	GetGoal(ctx context.Context, ledgerID, id string) (core.Goal, error)
	SaveGoal(ctx context.Context, g core.Goal) (string, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, ledgerID, id string) error

	ListSubscriptions(ctx context.Context, ledgerID string) ([]core.Subscription, error)
	SaveSubscription(ctx context.Context, s core.Subscription) (string, error)
	DeleteSubscription(ctx context.Context, ledgerID, id string) error

	GetProfile(ctx context.Context, uid string) (core.Profile, error)
	SaveProfile(ctx context.Context, p core.Profile) error

	GetInvitation(ctx context.Context, id string) (core.Invitation, error)
	SaveInvitation(ctx context.Context, inv core.Invitation) (string, error)
	UpdateInvitation(ctx context.Context, inv core.Invitation) error

	ResetLedger(ctx context.Context, ledgerID string) error
	ListLedgerIDs(ctx context.Context) ([]string, error)
}

// EventPublisher announces ledger mutations so background consumers can
// react. Kind is a short mutation label ("transaction", "budget", ...).
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, ledgerID, kind string) error
}
