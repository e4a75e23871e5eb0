package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		err  error
	}{
		{"valid expense", Transaction{Type: TypeExpense, Amount: 1000, Source: WalletCash, Target: EndpointMerchant}, nil},
		{"zero amount", Transaction{Type: TypeExpense, Amount: 0, Source: WalletCash, Target: EndpointMerchant}, ErrInvalidAmount},
		{"negative amount", Transaction{Type: TypeIncome, Amount: -500, Source: EndpointExternal, Target: WalletATM}, ErrInvalidAmount},
		{"bad type", Transaction{Type: "REFUND", Amount: 1000}, ErrInvalidType},
		{"self transfer", Transaction{Type: TypeTransfer, Amount: 1000, Source: WalletATM, Target: WalletATM}, ErrSameWallet},
		{"valid transfer", Transaction{Type: TypeTransfer, Amount: 1000, Source: WalletATM, Target: WalletCash}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestValidateEndpoints(t *testing.T) {
	wallets := []Wallet{{ID: WalletATM}, {ID: WalletCash}}
	cases := []struct {
		name string
		tx   Transaction
		err  error
	}{
		{"expense from tracked", Transaction{Type: TypeExpense, Source: WalletATM, Target: EndpointMerchant}, nil},
		{"expense from unknown", Transaction{Type: TypeExpense, Source: "gone", Target: EndpointMerchant}, ErrUnknownWallet},
		{"income to tracked", Transaction{Type: TypeIncome, Source: EndpointExternal, Target: WalletCash}, nil},
		{"income to unknown", Transaction{Type: TypeIncome, Source: EndpointExternal, Target: "gone"}, ErrUnknownWallet},
		{"transfer both tracked", Transaction{Type: TypeTransfer, Source: WalletATM, Target: WalletCash}, nil},
		{"transfer to sentinel", Transaction{Type: TypeTransfer, Source: WalletATM, Target: EndpointMerchant}, ErrUnknownWallet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateEndpoints(tc.tx, wallets); !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestSubscriptionValidate(t *testing.T) {
	ok := Subscription{Name: "Netflix", Cost: 186000, DueDay: 15}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Subscription{Name: " ", Cost: 1000, DueDay: 1}).Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("got %v, want ErrEmptyTitle", err)
	}
	if err := (Subscription{Name: "X", Cost: 0, DueDay: 1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
	for _, day := range []int{0, 32, -1} {
		if err := (Subscription{Name: "X", Cost: 1000, DueDay: day}).Validate(); !errors.Is(err, ErrInvalidDueDay) {
			t.Fatalf("due day %d: got %v, want ErrInvalidDueDay", day, err)
		}
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory("F&B") || !KnownCategory("f&b") {
		t.Fatal("F&B must be known, case-insensitively")
	}
	if KnownCategory("Kuda") {
		t.Fatal("unknown category accepted")
	}
}
