package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
	applog "github.com/naansa-naufalsaputra/duasaku-app/internal/log"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/parser"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		fields := applog.NewFields().
			WithComponent(applog.ComponentHTTP).
			WithHTTPRequest(r.Method, r.URL.Path).
			WithError(err)
		slog.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// ledgerID scopes the request. An empty header is a client error.
func ledgerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(ledgerHeader))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing " + ledgerHeader + " header"})
		return "", false
	}
	return id, true
}

type transactionRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (req transactionRequest) toTransaction(ledger string) core.Transaction {
	t := core.Transaction{
		LedgerID:    ledger,
		Type:        core.TxType(strings.ToUpper(req.Type)),
		Amount:      core.NormalizeAmount(req.Amount),
		Category:    req.Category,
		Source:      req.Source,
		Target:      req.Target,
		Description: req.Description,
	}
	if d, err := time.Parse(time.RFC3339, req.Date); err == nil {
		t.Date = d.UTC()
	}
	return t
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	txs, err := s.svc.ListTransactions(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.AddTransaction(r.Context(), req.toTransaction(lid))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t := req.toTransaction(lid)
	t.ID = r.PathValue("id")
	if err := s.svc.EditTransaction(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), lid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleParse previews what free text would become, without persisting.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, parser.Parse(req.Text))
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.QuickAdd(r.Context(), lid, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	wallets, err := s.svc.Wallets(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name           string  `json:"name"`
		Type           string  `json:"type"`
		Color          string  `json:"color"`
		Icon           string  `json:"icon"`
		InitialBalance float64 `json:"initialBalance"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	wallet, err := s.svc.AddWallet(r.Context(), core.Wallet{
		LedgerID:       lid,
		Name:           req.Name,
		Type:           req.Type,
		Color:          req.Color,
		Icon:           req.Icon,
		InitialBalance: core.NormalizeSignedAmount(req.InitialBalance),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wallet)
}

func (s *Server) handleWithdrawCash(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.WithdrawCash(r.Context(), lid, core.NormalizeAmount(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	usages, err := s.svc.BudgetUsages(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usages)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Category string  `json:"category"`
		Limit    float64 `json:"limit"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := s.svc.SetBudget(r.Context(), core.Budget{
		LedgerID: lid,
		Category: req.Category,
		Limit:    core.NormalizeAmount(req.Limit),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteBudget(r.Context(), lid, r.PathValue("category")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	goals, err := s.svc.ListGoals(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Title        string  `json:"title"`
		TargetAmount float64 `json:"targetAmount"`
		Emoji        string  `json:"emoji"`
		Color        string  `json:"color"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := s.svc.AddGoal(r.Context(), core.Goal{
		LedgerID:     lid,
		Title:        req.Title,
		TargetAmount: core.NormalizeAmount(req.TargetAmount),
		Emoji:        req.Emoji,
		Color:        req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteGoal(r.Context(), lid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSavings(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
		Wallet string  `json:"wallet"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Wallet == "" {
		req.Wallet = core.WalletCash
	}
	g, err := s.svc.AddSavings(r.Context(), lid, r.PathValue("id"), core.NormalizeAmount(req.Amount), req.Wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	subs, err := s.svc.ListSubscriptions(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name      string  `json:"name"`
		Cost      float64 `json:"cost"`
		DueDay    int     `json:"dueDay"`
		Type      string  `json:"type"`
		Color     string  `json:"color"`
		RecordNow bool    `json:"recordNow"`
		Wallet    string  `json:"wallet"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = "Bulanan"
	}
	if req.Wallet == "" {
		req.Wallet = core.WalletATM
	}
	sub, err := s.svc.AddSubscription(r.Context(), core.Subscription{
		LedgerID: lid,
		Name:     req.Name,
		Cost:     core.NormalizeAmount(req.Cost),
		DueDay:   req.DueDay,
		Type:     req.Type,
		Color:    req.Color,
	}, req.RecordNow, req.Wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	if err := s.svc.RemoveSubscription(r.Context(), lid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetectSubscriptions(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	candidates, err := s.svc.DetectCandidates(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	snap, err := s.svc.Snapshot(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResetLedger(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	if err := s.svc.ResetLedger(r.Context(), lid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOrCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID         string `json:"uid"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing uid"})
		return
	}
	p, err := s.svc.GetOrCreateProfile(r.Context(), req.UID, req.Email, req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleInvitePartner(w http.ResponseWriter, r *http.Request) {
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		FromUID  string `json:"fromUid"`
		FromName string `json:"fromName"`
		ToEmail  string `json:"toEmail"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	inv, err := s.svc.InvitePartner(r.Context(), req.FromUID, req.FromName, req.ToEmail, lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.AcceptInvitation(r.Context(), req.UID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeclineInvitation(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeclineInvitation(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvisorChat(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "advisor not configured"})
		return
	}
	lid, ok := ledgerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	txs, err := s.svc.ListTransactions(r.Context(), lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := s.advisor.Chat(r.Context(), req.Question, txs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleAdvisorScan(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "advisor not configured"})
		return
	}
	if _, ok := ledgerID(w, r); !ok {
		return
	}
	var req struct {
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	receipt, err := s.advisor.ScanReceipt(r.Context(), req.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
