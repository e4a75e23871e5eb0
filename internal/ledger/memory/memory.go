// Package memory provides an in-memory Store, the default backend for
// development and the fixture for service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
)

// Store keeps everything in maps guarded by one mutex. Methods return
// copies, so callers can never mutate stored state through a returned
// slice.
type Store struct {
	mu            sync.RWMutex
	transactions  map[string][]core.Transaction // ledgerID -> log
	wallets       map[string][]core.Wallet
	budgets       map[string][]core.Budget
	goals         map[string][]core.Goal
	subscriptions map[string][]core.Subscription
	profiles      map[string]core.Profile    // uid -> profile
	invitations   map[string]core.Invitation // id -> invitation
}

func NewStore() *Store {
	return &Store{
		transactions:  make(map[string][]core.Transaction),
		wallets:       make(map[string][]core.Wallet),
		budgets:       make(map[string][]core.Budget),
		goals:         make(map[string][]core.Goal),
		subscriptions: make(map[string][]core.Subscription),
		profiles:      make(map[string]core.Profile),
		invitations:   make(map[string]core.Invitation),
	}
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transactions[t.LedgerID] = append(s.transactions[t.LedgerID], t)
	return t.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, ledgerID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions[ledgerID] {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.transactions[t.LedgerID]
	for i := range log {
		if log[i].ID == t.ID {
			log[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, ledgerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.transactions[ledgerID]
	for i := range log {
		if log[i].ID == id {
			s.transactions[ledgerID] = append(log[:i:i], log[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context, ledgerID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.transactions[ledgerID]))
	copy(out, s.transactions[ledgerID])
	return out, nil
}

func (s *Store) ListWallets(_ context.Context, ledgerID string) ([]core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Wallet, len(s.wallets[ledgerID]))
	copy(out, s.wallets[ledgerID])
	return out, nil
}

func (s *Store) SaveWallet(_ context.Context, w core.Wallet) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	list := s.wallets[w.LedgerID]
	for i := range list {
		if list[i].ID == w.ID {
			list[i] = w
			return w.ID, nil
		}
	}
	s.wallets[w.LedgerID] = append(list, w)
	return w.ID, nil
}

func (s *Store) ListBudgets(_ context.Context, ledgerID string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Budget, len(s.budgets[ledgerID]))
	copy(out, s.budgets[ledgerID])
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.budgets[b.LedgerID]
	for i := range list {
		if list[i].Category == b.Category {
			b.ID = list[i].ID
			list[i] = b
			return b.ID, nil
		}
	}
	b.ID = uuid.NewString()
	s.budgets[b.LedgerID] = append(list, b)
	return b.ID, nil
}

func (s *Store) DeleteBudget(_ context.Context, ledgerID, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.budgets[ledgerID]
	for i := range list {
		if list[i].Category == category {
			s.budgets[ledgerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListGoals(_ context.Context, ledgerID string) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Goal, len(s.goals[ledgerID]))
	copy(out, s.goals[ledgerID])
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, ledgerID, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.goals[ledgerID] {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, core.ErrNotFound
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.goals[g.LedgerID] = append(s.goals[g.LedgerID], g)
	return g.ID, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.goals[g.LedgerID]
	for i := range list {
		if list[i].ID == g.ID {
			list[i] = g
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteGoal(_ context.Context, ledgerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.goals[ledgerID]
	for i := range list {
		if list[i].ID == id {
			s.goals[ledgerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListSubscriptions(_ context.Context, ledgerID string) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, len(s.subscriptions[ledgerID]))
	copy(out, s.subscriptions[ledgerID])
	return out, nil
}

func (s *Store) SaveSubscription(_ context.Context, sub core.Subscription) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	s.subscriptions[sub.LedgerID] = append(s.subscriptions[sub.LedgerID], sub)
	return sub.ID, nil
}

func (s *Store) DeleteSubscription(_ context.Context, ledgerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.subscriptions[ledgerID]
	for i := range list {
		if list[i].ID == id {
			s.subscriptions[ledgerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) GetProfile(_ context.Context, uid string) (core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UID] = p
	return nil
}

func (s *Store) GetInvitation(_ context.Context, id string) (core.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[id]
	if !ok {
		return core.Invitation{}, core.ErrNotFound
	}
	return inv, nil
}

func (s *Store) SaveInvitation(_ context.Context, inv core.Invitation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	s.invitations[inv.ID] = inv
	return inv.ID, nil
}

func (s *Store) UpdateInvitation(_ context.Context, inv core.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[inv.ID]; !ok {
		return core.ErrNotFound
	}
	s.invitations[inv.ID] = inv
	return nil
}

func (s *Store) ResetLedger(_ context.Context, ledgerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, ledgerID)
	delete(s.wallets, ledgerID)
	delete(s.budgets, ledgerID)
	delete(s.goals, ledgerID)
	delete(s.subscriptions, ledgerID)
	return nil
}

func (s *Store) ListLedgerIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for id := range s.transactions {
		seen[id] = true
	}
	for id := range s.wallets {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
