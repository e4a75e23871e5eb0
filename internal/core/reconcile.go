package core

// ReconcileBalances replays the transaction log over each wallet's
// initial balance and returns the wallets with their derived balances
// filled in. The input slices are not mutated.
//
// For each transaction, the side that names a tracked wallet is
// applied: EXPENSE and TRANSFER subtract from the source, INCOME and
// TRANSFER add to the target. A side naming a sentinel (External,
// Merchant) or a wallet that no longer exists is a silent no-op, which
// tolerates historical transactions of deleted wallets. A TRANSFER
// therefore touches exactly two wallets, an INCOME one, an EXPENSE one.
//
// Addition is commutative, so the result is independent of transaction
// order, and recomputing from the same snapshot is idempotent.
func ReconcileBalances(txs []Transaction, wallets []Wallet) []Wallet {
	out := make([]Wallet, len(wallets))
	idx := make(map[string]int, len(wallets))
	for i, w := range wallets {
		w.Balance = w.InitialBalance
		out[i] = w
		idx[w.ID] = i
	}
	for _, t := range txs {
		if i, ok := idx[t.Source]; ok && (t.Type == TypeExpense || t.Type == TypeTransfer) {
			out[i].Balance -= t.Amount
		}
		if i, ok := idx[t.Target]; ok && (t.Type == TypeIncome || t.Type == TypeTransfer) {
			out[i].Balance += t.Amount
		}
	}
	return out
}

// WalletBalance reconciles and returns a single wallet's balance. The
// second result is false when the wallet is not part of the set.
func WalletBalance(txs []Transaction, wallets []Wallet, id string) (int64, bool) {
	for _, w := range ReconcileBalances(txs, wallets) {
		if w.ID == id {
			return w.Balance, true
		}
	}
	return 0, false
}
