package core

import "testing"

func testWallets() []Wallet {
	return []Wallet{
		{ID: WalletATM, Name: "Rekening ATM", InitialBalance: 0},
		{ID: WalletCash, Name: "Dompet Tunai", InitialBalance: 20000},
	}
}

func TestReconcileBalances(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: 500000, Source: EndpointExternal, Target: WalletATM},
		{Type: TypeExpense, Amount: 150000, Source: WalletATM, Target: EndpointMerchant},
	}
	out := ReconcileBalances(txs, testWallets())
	if out[0].Balance != 350000 {
		t.Fatalf("ATM balance = %d, want 350000", out[0].Balance)
	}
	if out[1].Balance != 20000 {
		t.Fatalf("CASH balance = %d, want 20000", out[1].Balance)
	}
}

func TestReconcileTransferConservesTotal(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: 500000, Source: EndpointExternal, Target: WalletATM},
		{Type: TypeTransfer, Amount: 100000, Source: WalletATM, Target: WalletCash},
	}
	out := ReconcileBalances(txs, testWallets())
	var total int64
	for _, w := range out {
		total += w.Balance
	}
	// initial 20000 + income 500000; the transfer moves, never creates
	if total != 520000 {
		t.Fatalf("total balance = %d, want 520000", total)
	}
	if out[0].Balance != 400000 || out[1].Balance != 120000 {
		t.Fatalf("balances = %d/%d, want 400000/120000", out[0].Balance, out[1].Balance)
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	a := Transaction{Type: TypeIncome, Amount: 300000, Source: EndpointExternal, Target: WalletATM}
	b := Transaction{Type: TypeExpense, Amount: 50000, Source: WalletATM, Target: EndpointMerchant}
	c := Transaction{Type: TypeTransfer, Amount: 100000, Source: WalletATM, Target: WalletCash}

	first := ReconcileBalances([]Transaction{a, b, c}, testWallets())
	second := ReconcileBalances([]Transaction{c, b, a}, testWallets())
	for i := range first {
		if first[i].Balance != second[i].Balance {
			t.Fatalf("wallet %s: %d vs %d", first[i].ID, first[i].Balance, second[i].Balance)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: 100000, Source: EndpointExternal, Target: WalletATM},
	}
	wallets := testWallets()
	once := ReconcileBalances(txs, wallets)
	twice := ReconcileBalances(txs, once)
	for i := range once {
		if once[i].Balance != twice[i].Balance {
			t.Fatalf("wallet %s drifted: %d vs %d", once[i].ID, once[i].Balance, twice[i].Balance)
		}
	}
}

func TestReconcileUnknownWalletIsNoOp(t *testing.T) {
	txs := []Transaction{
		{Type: TypeExpense, Amount: 99999, Source: "deleted-wallet", Target: EndpointMerchant},
		{Type: TypeIncome, Amount: 12345, Source: EndpointExternal, Target: "deleted-wallet"},
	}
	out := ReconcileBalances(txs, testWallets())
	if out[0].Balance != 0 || out[1].Balance != 20000 {
		t.Fatalf("balances changed by untracked refs: %d/%d", out[0].Balance, out[1].Balance)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	wallets := testWallets()
	txs := []Transaction{
		{Type: TypeIncome, Amount: 100000, Source: EndpointExternal, Target: WalletATM},
	}
	_ = ReconcileBalances(txs, wallets)
	if wallets[0].Balance != 0 {
		t.Fatalf("input wallet mutated: balance %d", wallets[0].Balance)
	}
}

func TestWalletBalance(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: 75000, Source: EndpointExternal, Target: WalletCash},
	}
	bal, ok := WalletBalance(txs, testWallets(), WalletCash)
	if !ok || bal != 95000 {
		t.Fatalf("balance = %d (ok=%v), want 95000", bal, ok)
	}
	if _, ok := WalletBalance(txs, testWallets(), "nope"); ok {
		t.Fatal("expected ok=false for unknown wallet")
	}
}
