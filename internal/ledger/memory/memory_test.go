package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

func TestAppendAndGetTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.AppendTransaction(ctx, core.Transaction{LedgerID: "l1", Type: core.TypeIncome, Amount: 1000})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.GetTransaction(ctx, "l1", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount != 1000 {
		t.Fatalf("amount = %d", got.Amount)
	}
	if _, err := s.GetTransaction(ctx, "l1", "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := s.GetTransaction(ctx, "other-ledger", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-ledger read: got %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, _ := s.AppendTransaction(ctx, core.Transaction{LedgerID: "l1", Type: core.TypeIncome, Amount: 1000})
	if err := s.DeleteTransaction(ctx, "l1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "l1", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.AppendTransaction(ctx, core.Transaction{LedgerID: "l1", Type: core.TypeIncome, Amount: 1000}); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, _ := s.ListTransactions(ctx, "l1")
	list[0].Amount = 999999

	again, _ := s.ListTransactions(ctx, "l1")
	if again[0].Amount != 1000 {
		t.Fatalf("stored state mutated through returned slice: %d", again[0].Amount)
	}
}

func TestSaveWalletUpserts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.SaveWallet(ctx, core.Wallet{LedgerID: "l1", ID: "ATM", Name: "Rekening ATM"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SaveWallet(ctx, core.Wallet{LedgerID: "l1", ID: id, Name: "Rekening Baru"}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	wallets, _ := s.ListWallets(ctx, "l1")
	if len(wallets) != 1 || wallets[0].Name != "Rekening Baru" {
		t.Fatalf("wallets = %+v", wallets)
	}
}

func TestUpsertBudgetPreservesID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first, err := s.UpsertBudget(ctx, core.Budget{LedgerID: "l1", Category: "F&B", Limit: 100000})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := s.UpsertBudget(ctx, core.Budget{LedgerID: "l1", Category: "F&B", Limit: 200000})
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if second != first {
		t.Fatalf("upsert minted a new id: %q vs %q", second, first)
	}
	budgets, _ := s.ListBudgets(ctx, "l1")
	if len(budgets) != 1 || budgets[0].Limit != 200000 {
		t.Fatalf("budgets = %+v", budgets)
	}

	if err := s.DeleteBudget(ctx, "l1", "F&B"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBudget(ctx, "l1", "F&B"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestGoalLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.SaveGoal(ctx, core.Goal{LedgerID: "l1", Title: "Liburan", TargetAmount: 1000000})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	g, err := s.GetGoal(ctx, "l1", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	g.SavedAmount = 50000
	if err := s.UpdateGoal(ctx, g); err != nil {
		t.Fatalf("update: %v", err)
	}
	g, _ = s.GetGoal(ctx, "l1", id)
	if g.SavedAmount != 50000 {
		t.Fatalf("saved amount = %d", g.SavedAmount)
	}
	if err := s.UpdateGoal(ctx, core.Goal{LedgerID: "l1", ID: "missing"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.DeleteGoal(ctx, "l1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestProfileAndInvitation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "uid1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.SaveProfile(ctx, core.Profile{UID: "uid1", LedgerID: "uid1"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	p, err := s.GetProfile(ctx, "uid1")
	if err != nil || p.LedgerID != "uid1" {
		t.Fatalf("profile = %+v, err = %v", p, err)
	}

	id, err := s.SaveInvitation(ctx, core.Invitation{FromUID: "uid1", ToEmail: "x@y.z", Status: core.InvitationPending})
	if err != nil {
		t.Fatalf("save invitation: %v", err)
	}
	inv, err := s.GetInvitation(ctx, id)
	if err != nil {
		t.Fatalf("get invitation: %v", err)
	}
	inv.Status = core.InvitationAccepted
	if err := s.UpdateInvitation(ctx, inv); err != nil {
		t.Fatalf("update invitation: %v", err)
	}
	if err := s.UpdateInvitation(ctx, core.Invitation{ID: "missing"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestResetLedgerScoped(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, _ = s.AppendTransaction(ctx, core.Transaction{LedgerID: "l1", Type: core.TypeIncome, Amount: 1})
	_, _ = s.AppendTransaction(ctx, core.Transaction{LedgerID: "l2", Type: core.TypeIncome, Amount: 1})
	_, _ = s.SaveWallet(ctx, core.Wallet{LedgerID: "l1", ID: "ATM", Name: "A"})
	_ = s.SaveProfile(ctx, core.Profile{UID: "uid1", LedgerID: "l1"})

	if err := s.ResetLedger(ctx, "l1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	txs, _ := s.ListTransactions(ctx, "l1")
	wallets, _ := s.ListWallets(ctx, "l1")
	if len(txs) != 0 || len(wallets) != 0 {
		t.Fatalf("l1 not wiped: %d txs, %d wallets", len(txs), len(wallets))
	}
	other, _ := s.ListTransactions(ctx, "l2")
	if len(other) != 1 {
		t.Fatal("reset leaked into another ledger")
	}
	// Profiles survive a ledger reset.
	if _, err := s.GetProfile(ctx, "uid1"); err != nil {
		t.Fatalf("profile wiped by reset: %v", err)
	}
}

func TestListLedgerIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, _ = s.AppendTransaction(ctx, core.Transaction{LedgerID: "b", Type: core.TypeIncome, Amount: 1})
	_, _ = s.SaveWallet(ctx, core.Wallet{LedgerID: "a", ID: "ATM", Name: "A"})
	_, _ = s.SaveWallet(ctx, core.Wallet{LedgerID: "b", ID: "ATM", Name: "A"})

	ids, err := s.ListLedgerIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
}
