package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
	applog "github.com/naansa-naufalsaputra/duasaku-app/internal/log"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/parser"
)

// Service orchestrates ledger operations: validation, persistence, and
// change notifications. The publisher is optional; when nil, mutations
// simply skip the announcement.
type Service struct {
	store     Store
	publisher EventPublisher
	now       func() time.Time
}

func NewService(store Store, publisher EventPublisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddTransaction validates and persists a transaction. Beyond the
// structural checks it enforces that spending never overdraws a tracked
// wallet: an EXPENSE or TRANSFER whose source balance cannot cover the
// amount fails with ErrInsufficientFunds.
func (s *Service) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.Category == "" {
		t.Category = core.DefaultCategory
	}
	if t.Date.IsZero() {
		t.Date = s.now().UTC()
	}

	wallets, err := s.store.ListWallets(ctx, t.LedgerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("list wallets: %w", err)
	}
	if err := core.ValidateEndpoints(t, wallets); err != nil {
		return core.Transaction{}, err
	}

	if t.Type == core.TypeExpense || t.Type == core.TypeTransfer {
		txs, err := s.store.ListTransactions(ctx, t.LedgerID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("list transactions: %w", err)
		}
		if bal, ok := core.WalletBalance(txs, wallets, t.Source); ok && bal < t.Amount {
			return core.Transaction{}, core.ErrInsufficientFunds
		}
	}

	id, err := s.store.AppendTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	t.ID = id
	slog.InfoContext(ctx, "Transaction recorded", applog.NewFields().
		WithComponent(applog.ComponentLedger).
		WithLedger(t.LedgerID).
		WithTransaction(string(t.Type), t.Amount, t.Category).
		ToSlice()...)
	s.publish(ctx, t.LedgerID, "transaction")
	return t, nil
}

// AddIncome records money arriving from outside into a wallet.
func (s *Service) AddIncome(ctx context.Context, ledgerID string, amount int64, category, walletID, description string) (core.Transaction, error) {
	return s.AddTransaction(ctx, core.Transaction{
		LedgerID:    ledgerID,
		Type:        core.TypeIncome,
		Amount:      amount,
		Category:    category,
		Source:      core.EndpointExternal,
		Target:      walletID,
		Description: description,
	})
}

// AddExpense records money leaving a wallet toward a merchant.
func (s *Service) AddExpense(ctx context.Context, ledgerID string, amount int64, category, walletID, description string) (core.Transaction, error) {
	return s.AddTransaction(ctx, core.Transaction{
		LedgerID:    ledgerID,
		Type:        core.TypeExpense,
		Amount:      amount,
		Category:    category,
		Source:      walletID,
		Target:      core.EndpointMerchant,
		Description: description,
	})
}

// Transfer moves money between two tracked wallets.
func (s *Service) Transfer(ctx context.Context, ledgerID string, amount int64, sourceID, targetID, description string) (core.Transaction, error) {
	return s.AddTransaction(ctx, core.Transaction{
		LedgerID:    ledgerID,
		Type:        core.TypeTransfer,
		Amount:      amount,
		Category:    "Transfer",
		Source:      sourceID,
		Target:      targetID,
		Description: description,
	})
}

// WithdrawCash is the ATM withdrawal shortcut, a transfer from the bank
// wallet to the cash wallet.
func (s *Service) WithdrawCash(ctx context.Context, ledgerID string, amount int64) (core.Transaction, error) {
	return s.Transfer(ctx, ledgerID, amount, core.WalletATM, core.WalletCash, "Tarik Tunai")
}

// QuickAdd parses free text and records the resulting expense. A parse
// that finds no monetary amount fails with ErrInvalidAmount.
func (s *Service) QuickAdd(ctx context.Context, ledgerID, text string) (core.Transaction, error) {
	res := parser.Parse(text)
	if res.Amount <= 0 {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	return s.AddExpense(ctx, ledgerID, res.Amount, res.Category, res.SourceWallet, res.Description)
}

// EditTransaction replaces an existing transaction after re-running the
// same validation as AddTransaction. The overdraw check is evaluated
// against the log with the old version removed, so editing a
// transaction's own amount downward always succeeds.
func (s *Service) EditTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.Category == "" {
		t.Category = core.DefaultCategory
	}
	old, err := s.store.GetTransaction(ctx, t.LedgerID, t.ID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if t.Date.IsZero() {
		t.Date = old.Date
	}

	wallets, err := s.store.ListWallets(ctx, t.LedgerID)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if err := core.ValidateEndpoints(t, wallets); err != nil {
		return err
	}

	if t.Type == core.TypeExpense || t.Type == core.TypeTransfer {
		txs, err := s.store.ListTransactions(ctx, t.LedgerID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		remaining := txs[:0:0]
		for _, x := range txs {
			if x.ID != t.ID {
				remaining = append(remaining, x)
			}
		}
		if bal, ok := core.WalletBalance(remaining, wallets, t.Source); ok && bal < t.Amount {
			return core.ErrInsufficientFunds
		}
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, t.LedgerID, "transaction")
	return nil
}

// DeleteTransaction removes a transaction from the log. Balances are
// derived, so no compensation entry is needed.
func (s *Service) DeleteTransaction(ctx context.Context, ledgerID, id string) error {
	if err := s.store.DeleteTransaction(ctx, ledgerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, ledgerID, "transaction")
	return nil
}

// ListTransactions returns the ledger's full transaction log.
func (s *Service) ListTransactions(ctx context.Context, ledgerID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, ledgerID)
}

// Wallets returns the ledger's wallets with reconciled balances.
func (s *Service) Wallets(ctx context.Context, ledgerID string) ([]core.Wallet, error) {
	wallets, err := s.store.ListWallets(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.ReconcileBalances(txs, wallets), nil
}

// AddWallet persists a wallet. Balance is derived and ignored on input.
func (s *Service) AddWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if strings.TrimSpace(w.Name) == "" {
		return core.Wallet{}, core.ErrEmptyTitle
	}
	w.Balance = 0
	id, err := s.store.SaveWallet(ctx, w)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("save wallet: %w", err)
	}
	w.ID = id
	s.publish(ctx, w.LedgerID, "wallet")
	return w, nil
}

// EnsureDefaultWallets seeds the two standard wallets for a ledger that
// has none yet: a bank account and a cash pouch.
func (s *Service) EnsureDefaultWallets(ctx context.Context, ledgerID string) error {
	wallets, err := s.store.ListWallets(ctx, ledgerID)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) > 0 {
		return nil
	}
	defaults := []core.Wallet{
		{ID: core.WalletATM, LedgerID: ledgerID, Name: "Rekening ATM", Type: core.WalletTypeBank, Color: "#3b82f6", Icon: "credit-card"},
		{ID: core.WalletCash, LedgerID: ledgerID, Name: "Dompet Tunai", Type: core.WalletTypeCash, Color: "#22c55e", Icon: "wallet"},
	}
	for _, w := range defaults {
		if _, err := s.store.SaveWallet(ctx, w); err != nil {
			return fmt.Errorf("seed wallet %s: %w", w.ID, err)
		}
	}
	slog.InfoContext(ctx, "Seeded default wallets", applog.NewFields().
		WithComponent(applog.ComponentLedger).
		WithLedger(ledgerID).
		ToSlice()...)
	return nil
}

// SetBudget upserts the monthly limit for a category. One budget per
// (ledger, category).
func (s *Service) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	id, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	b.ID = id
	s.publish(ctx, b.LedgerID, "budget")
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, ledgerID, category string) error {
	if err := s.store.DeleteBudget(ctx, ledgerID, category); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.publish(ctx, ledgerID, "budget")
	return nil
}

// BudgetUsages aggregates the current month's spending per budget.
func (s *Service) BudgetUsages(ctx context.Context, ledgerID string) ([]core.BudgetUsage, error) {
	budgets, err := s.store.ListBudgets(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.AggregateBudgets(txs, budgets, s.now().UTC()), nil
}

func (s *Service) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	id, err := s.store.SaveGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	g.ID = id
	s.publish(ctx, g.LedgerID, "goal")
	return g, nil
}

// AddSavings deposits into a goal: an expense from the chosen wallet
// under the Savings category plus a saved-amount bump on the goal. The
// expense carries the overdraw check, so an unfunded deposit fails
// before the goal is touched.
func (s *Service) AddSavings(ctx context.Context, ledgerID, goalID string, amount int64, walletID string) (core.Goal, error) {
	if amount <= 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}
	g, err := s.store.GetGoal(ctx, ledgerID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal: %w", err)
	}
	if _, err := s.AddExpense(ctx, ledgerID, amount, "Savings", walletID, "Tabungan: "+g.Title); err != nil {
		return core.Goal{}, err
	}
	g.SavedAmount += amount
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	s.publish(ctx, ledgerID, "goal")
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, ledgerID, id string) error {
	if err := s.store.DeleteGoal(ctx, ledgerID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.publish(ctx, ledgerID, "goal")
	return nil
}

func (s *Service) ListGoals(ctx context.Context, ledgerID string) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, ledgerID)
}

// AddSubscription declares a recurring charge. Names that normalize to
// an existing entry are rejected as duplicates. When recordNow is set,
// the first payment is recorded immediately; if the wallet cannot cover
// it, the subscription is still saved and the payment skipped.
func (s *Service) AddSubscription(ctx context.Context, sub core.Subscription, recordNow bool, walletID string) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	existing, err := s.store.ListSubscriptions(ctx, sub.LedgerID)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("list subscriptions: %w", err)
	}
	for _, e := range existing {
		if core.SameSubscription(e.Name, sub.Name) {
			return core.Subscription{}, core.ErrDuplicateSubscription
		}
	}
	id, err := s.store.SaveSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	sub.ID = id

	if recordNow {
		_, err := s.AddExpense(ctx, sub.LedgerID, sub.Cost, "Langganan", walletID, subscriptionPaymentPrefix+sub.Name)
		if err == core.ErrInsufficientFunds {
			slog.WarnContext(ctx, "Skipping first subscription payment, insufficient funds", applog.NewFields().
				WithComponent(applog.ComponentLedger).
				WithLedger(sub.LedgerID).
				WithSubscription(sub.Name).
				ToSlice()...)
		} else if err != nil {
			return core.Subscription{}, err
		}
	}

	s.publish(ctx, sub.LedgerID, "subscription")
	return sub, nil
}

func (s *Service) RemoveSubscription(ctx context.Context, ledgerID, id string) error {
	if err := s.store.DeleteSubscription(ctx, ledgerID, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	s.publish(ctx, ledgerID, "subscription")
	return nil
}

func (s *Service) ListSubscriptions(ctx context.Context, ledgerID string) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx, ledgerID)
}

// DetectCandidates scans the expense history for repeating charges.
func (s *Service) DetectCandidates(ctx context.Context, ledgerID string) ([]core.SubscriptionCandidate, error) {
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.DetectSubscriptions(txs), nil
}

// PromoteCandidates turns detected repeating charges into subscription
// entries, skipping any that normalize to an existing name. Returns how
// many were created.
func (s *Service) PromoteCandidates(ctx context.Context, ledgerID string) (int, error) {
	candidates, err := s.DetectCandidates(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	existing, err := s.store.ListSubscriptions(ctx, ledgerID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	created := 0
	for _, c := range candidates {
		dup := false
		for _, e := range existing {
			if core.SameSubscription(e.Name, c.Category) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		sub := core.Subscription{
			LedgerID: ledgerID,
			Name:     c.Category,
			Cost:     c.Amount,
			DueDay:   c.NextDue.Day(),
			Type:     "Bulanan",
			Detected: true,
		}
		if _, err := s.store.SaveSubscription(ctx, sub); err != nil {
			return created, fmt.Errorf("save subscription: %w", err)
		}
		existing = append(existing, sub)
		created++
	}
	if created > 0 {
		s.publish(ctx, ledgerID, "subscription")
	}
	return created, nil
}

const subscriptionPaymentPrefix = "Pembayaran Langganan: "

// RecordDueSubscriptions charges every subscription whose due day has
// arrived this month and that has no payment yet for the month. The
// charge is an expense from the bank wallet; one the wallet cannot
// cover is skipped with a warning so the rest of the sweep proceeds.
// Returns how many payments were recorded.
func (s *Service) RecordDueSubscriptions(ctx context.Context, ledgerID string) (int, error) {
	subs, err := s.store.ListSubscriptions(ctx, ledgerID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return 0, nil
	}
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	now := s.now().UTC()
	charged := 0
	for _, sub := range subs {
		if !core.DueThisMonth(sub.DueDay, lastSubscriptionPayment(txs, sub), now) {
			continue
		}
		_, err := s.AddExpense(ctx, ledgerID, sub.Cost, "Langganan", core.WalletATM, subscriptionPaymentPrefix+sub.Name)
		if err == core.ErrInsufficientFunds || err == core.ErrUnknownWallet {
			slog.WarnContext(ctx, "Skipping due subscription payment", applog.NewFields().
				WithComponent(applog.ComponentLedger).
				WithLedger(ledgerID).
				WithSubscription(sub.Name).
				WithError(err).
				ToSlice()...)
			continue
		}
		if err != nil {
			return charged, err
		}
		charged++
	}
	return charged, nil
}

// lastSubscriptionPayment finds the latest expense that settled the
// subscription: either an explicit payment carrying the standard
// description, or, for promoted subscriptions, one of the recurring
// charges the detector grouped (same category and exact cost).
func lastSubscriptionPayment(txs []core.Transaction, sub core.Subscription) time.Time {
	var last time.Time
	for _, t := range txs {
		if t.Type != core.TypeExpense {
			continue
		}
		explicit := t.Category == "Langganan" &&
			strings.HasPrefix(t.Description, subscriptionPaymentPrefix) &&
			core.SameSubscription(strings.TrimPrefix(t.Description, subscriptionPaymentPrefix), sub.Name)
		detected := t.Amount == sub.Cost && core.SameSubscription(t.Category, sub.Name)
		if !explicit && !detected {
			continue
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return last
}

// Snapshot is the dashboard view of a ledger, recomputed from the log
// on every call.
type Snapshot struct {
	Wallets       []core.Wallet                `json:"wallets"`
	TotalBalance  int64                        `json:"totalBalance"`
	BudgetUsages  []core.BudgetUsage           `json:"budgetUsages"`
	BudgetAlert   bool                         `json:"budgetAlert"`
	Candidates    []core.SubscriptionCandidate `json:"candidates"`
	Subscriptions []core.Subscription          `json:"subscriptions"`
	Goals         []core.Goal                  `json:"goals"`
}

func (s *Service) Snapshot(ctx context.Context, ledgerID string) (Snapshot, error) {
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	wallets, err := s.store.ListWallets(ctx, ledgerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list wallets: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, ledgerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list budgets: %w", err)
	}
	subs, err := s.store.ListSubscriptions(ctx, ledgerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list subscriptions: %w", err)
	}
	goals, err := s.store.ListGoals(ctx, ledgerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list goals: %w", err)
	}

	reconciled := core.ReconcileBalances(txs, wallets)
	var total int64
	for _, w := range reconciled {
		total += w.Balance
	}
	usages := core.AggregateBudgets(txs, budgets, s.now().UTC())

	return Snapshot{
		Wallets:       reconciled,
		TotalBalance:  total,
		BudgetUsages:  usages,
		BudgetAlert:   core.BudgetAlert(usages),
		Candidates:    core.DetectSubscriptions(txs),
		Subscriptions: subs,
		Goals:         goals,
	}, nil
}

// ResetLedger wipes everything except the profile: transactions,
// wallets, budgets, goals, and subscriptions.
func (s *Service) ResetLedger(ctx context.Context, ledgerID string) error {
	if err := s.store.ResetLedger(ctx, ledgerID); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.publish(ctx, ledgerID, "reset")
	return nil
}

// GetOrCreateProfile loads a user's profile, creating one whose ledger
// is their own UID on first sight.
func (s *Service) GetOrCreateProfile(ctx context.Context, uid, email, displayName string) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx, uid)
	if err == nil {
		return p, nil
	}
	if err != core.ErrNotFound {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	p = core.Profile{UID: uid, Email: email, DisplayName: displayName, LedgerID: uid}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	if err := s.EnsureDefaultWallets(ctx, p.LedgerID); err != nil {
		return core.Profile{}, err
	}
	return p, nil
}

// InvitePartner asks another user to share the inviter's ledger.
func (s *Service) InvitePartner(ctx context.Context, fromUID, fromName, toEmail, ledgerID string) (core.Invitation, error) {
	if strings.TrimSpace(toEmail) == "" {
		return core.Invitation{}, core.ErrEmptyTitle
	}
	inv := core.Invitation{
		FromUID:  fromUID,
		FromName: fromName,
		ToEmail:  toEmail,
		LedgerID: ledgerID,
		Status:   core.InvitationPending,
	}
	id, err := s.store.SaveInvitation(ctx, inv)
	if err != nil {
		return core.Invitation{}, fmt.Errorf("save invitation: %w", err)
	}
	inv.ID = id
	return inv, nil
}

// AcceptInvitation repoints the invitee's profile at the shared ledger.
func (s *Service) AcceptInvitation(ctx context.Context, uid, invitationID string) error {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("load invitation: %w", err)
	}
	p, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	p.LedgerID = inv.LedgerID
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	inv.Status = core.InvitationAccepted
	if err := s.store.UpdateInvitation(ctx, inv); err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	s.publish(ctx, inv.LedgerID, "invitation")
	return nil
}

// DeclineInvitation discards a pending invitation.
func (s *Service) DeclineInvitation(ctx context.Context, invitationID string) error {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("load invitation: %w", err)
	}
	inv.Status = core.InvitationDeclined
	if err := s.store.UpdateInvitation(ctx, inv); err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	return nil
}

// LedgerIDs lists every ledger known to the store, for full scans.
func (s *Service) LedgerIDs(ctx context.Context) ([]string, error) {
	return s.store.ListLedgerIDs(ctx)
}

func (s *Service) publish(ctx context.Context, ledgerID, kind string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, ledgerID, kind); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentLedger).
			WithLedger(ledgerID).
			WithError(err).
			ToSlice()
		slog.ErrorContext(ctx, "Failed to publish ledger change", append(fields, "kind", kind)...)
	}
}
