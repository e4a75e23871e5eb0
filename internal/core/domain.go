package core

import (
	"errors"
	"strings"
	"time"
)

// Transaction types.
const (
	TypeIncome   TxType = "INCOME"
	TypeExpense  TxType = "EXPENSE"
	TypeTransfer TxType = "TRANSFER"
)

// Sentinel endpoints for money entering or leaving the tracked wallet set.
// A transaction side pointing at a sentinel mutates no wallet balance.
const (
	EndpointExternal = "External"
	EndpointMerchant = "Merchant"
)

// Default wallet IDs seeded for a fresh ledger.
const (
	WalletATM  = "ATM"
	WalletCash = "CASH"
)

// Wallet kinds.
const (
	WalletTypeBank = "Bank"
	WalletTypeCash = "Cash"
)

// DefaultCategory is assigned when a transaction carries no category.
const DefaultCategory = "Misc"

// Categories recognized across the app. Free-text categories are still
// accepted on transactions; this set is used to validate untrusted input
// (receipt scans) before it becomes a transaction.
var Categories = []string{
	"F&B", "Transport", "Shopping", "Bills",
	"Savings", "Langganan", "Income", "Transfer", DefaultCategory,
}

// Invitation states.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type (
	TxType string

	// Transaction is one entry in a ledger's append-only log. Amounts are
	// whole rupiah. Source and Target are wallet IDs or sentinels.
	Transaction struct {
		ID          string    `json:"id"`
		LedgerID    string    `json:"ledgerId"`
		Type        TxType    `json:"type"`
		Amount      int64     `json:"amount"`
		Category    string    `json:"category"`
		Source      string    `json:"source"`
		Target      string    `json:"target"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	// Wallet is a tracked store of value. Balance is derived from the
	// transaction log and never persisted as a source of truth.
	Wallet struct {
		ID             string `json:"id"`
		LedgerID       string `json:"ledgerId"`
		Name           string `json:"name"`
		Type           string `json:"type"` // Bank or Cash
		Color          string `json:"color"`
		Icon           string `json:"icon"`
		InitialBalance int64  `json:"initialBalance"`
		Balance        int64  `json:"balance"`
	}

	// Budget caps one category's spending per calendar month. At most one
	// budget exists per (ledger, category).
	Budget struct {
		ID       string `json:"id"`
		LedgerID string `json:"ledgerId"`
		Category string `json:"category"`
		Limit    int64  `json:"limit"`
	}

	// Goal is a savings target. SavedAmount only grows, through deposits
	// recorded as EXPENSE transactions with category "Savings".
	Goal struct {
		ID           string `json:"id"`
		LedgerID     string `json:"ledgerId"`
		Title        string `json:"title"`
		TargetAmount int64  `json:"targetAmount"`
		SavedAmount  int64  `json:"savedAmount"`
		Emoji        string `json:"emoji"`
		Color        string `json:"color"`
	}

	// Subscription is a recurring monthly charge, either declared by the
	// user or promoted from a detected candidate.
	Subscription struct {
		ID       string `json:"id"`
		LedgerID string `json:"ledgerId"`
		Name     string `json:"name"`
		Cost     int64  `json:"cost"`
		DueDay   int    `json:"dueDay"` // day of month, 1-31, clamped in short months
		Type     string `json:"type"`
		Color    string `json:"color"`
		Detected bool   `json:"detected"`
	}

	// Profile maps a user to the ledger they are scoped to. LedgerID
	// defaults to the user's own UID until a partner invitation is
	// accepted.
	Profile struct {
		UID         string `json:"uid"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		LedgerID    string `json:"ledgerId"`
	}

	// Invitation asks another user to share a ledger.
	Invitation struct {
		ID       string `json:"id"`
		FromUID  string `json:"fromUid"`
		FromName string `json:"fromName"`
		ToEmail  string `json:"toEmail"`
		LedgerID string `json:"ledgerId"`
		Status   string `json:"status"`
	}
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidType           = errors.New("invalid transaction type")
	ErrSameWallet            = errors.New("transfer source and target must differ")
	ErrUnknownWallet         = errors.New("unknown wallet")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidDueDay         = errors.New("invalid due day")
	ErrEmptyTitle            = errors.New("empty title")
	ErrDuplicateSubscription = errors.New("duplicate subscription")
	ErrNotFound              = errors.New("not found")
)

// Validate checks the transaction's intrinsic invariants. Wallet
// membership is checked separately via ValidateEndpoints because it
// needs the ledger's wallet set.
func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransfer:
	default:
		return ErrInvalidType
	}
	if t.Type == TypeTransfer && t.Source == t.Target {
		return ErrSameWallet
	}
	return nil
}

// ValidateEndpoints checks the wallet-membership invariants against the
// ledger's tracked wallets: a TRANSFER moves between two distinct
// tracked wallets, an INCOME lands in a tracked wallet, an EXPENSE
// leaves a tracked wallet.
func ValidateEndpoints(t Transaction, wallets []Wallet) error {
	tracked := func(id string) bool {
		for _, w := range wallets {
			if w.ID == id {
				return true
			}
		}
		return false
	}
	switch t.Type {
	case TypeTransfer:
		if !tracked(t.Source) || !tracked(t.Target) {
			return ErrUnknownWallet
		}
	case TypeIncome:
		if !tracked(t.Target) {
			return ErrUnknownWallet
		}
	case TypeExpense:
		if !tracked(t.Source) {
			return ErrUnknownWallet
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyTitle
	}
	if b.Limit <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyTitle
	}
	if s.Cost <= 0 {
		return ErrInvalidAmount
	}
	if s.DueDay < 1 || s.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

// KnownCategory reports whether c is one of the recognized categories.
func KnownCategory(c string) bool {
	for _, k := range Categories {
		if strings.EqualFold(k, c) {
			return true
		}
	}
	return false
}
