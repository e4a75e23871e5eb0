// Package worker runs the background jobs: rescanning ledgers for
// recurring charges when they change and exporting monthly summaries.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/amqp"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/ledger"
)

// SummaryExporter is the monthly report sink. Optional; nil disables
// the export job.
type SummaryExporter interface {
	AppendMonthlySummary(ctx context.Context, ledgerID string, txs []core.Transaction, month time.Time) error
}

// ScanWorkerConfig holds the cron schedules.
type ScanWorkerConfig struct {
	// ScanSchedule is the cron spec for the full scan (default: daily at 03:00)
	ScanSchedule string

	// ExportSchedule is the cron spec for the monthly sheet export
	// (default: first of month at 06:00)
	ExportSchedule string
}

func DefaultScanWorkerConfig() ScanWorkerConfig {
	return ScanWorkerConfig{
		ScanSchedule:   "0 3 * * *",
		ExportSchedule: "0 6 1 * *",
	}
}

// ScanWorker promotes detected recurring charges into subscriptions. It
// reacts to ledger-change messages and additionally sweeps every ledger
// on a schedule to catch anything the event path missed.
type ScanWorker struct {
	service  *ledger.Service
	exporter SummaryExporter
	config   ScanWorkerConfig
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScanWorker(service *ledger.Service, exporter SummaryExporter, config ScanWorkerConfig) *ScanWorker {
	return &ScanWorker{
		service:  service,
		exporter: exporter,
		config:   config,
	}
}

// Start registers the cron jobs. Returns an error if already running.
func (w *ScanWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("scan worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	fail := func(err error) error {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.config.ScanSchedule, func() { w.ScanAll(ctx) }); err != nil {
		return fail(fmt.Errorf("schedule scan job: %w", err))
	}
	if w.exporter != nil {
		if _, err := w.cron.AddFunc(w.config.ExportSchedule, func() { w.ExportAll(ctx) }); err != nil {
			return fail(fmt.Errorf("schedule export job: %w", err))
		}
	}
	w.cron.Start()

	go func() {
		defer close(w.doneCh)
		select {
		case <-w.stopCh:
		case <-ctx.Done():
		}
		<-w.cron.Stop().Done()
	}()

	slog.InfoContext(ctx, "Scan worker started",
		"scan_schedule", w.config.ScanSchedule,
		"export_schedule", w.config.ExportSchedule,
		"export_enabled", w.exporter != nil)
	return nil
}

// Stop halts the cron scheduler and waits for running jobs to finish.
func (w *ScanWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Scan worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scan worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

// IsRunning reports whether the worker is active.
func (w *ScanWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// HandleLedgerChanged is the AMQP consume handler: rescan the ledger
// that just mutated.
func (w *ScanWorker) HandleLedgerChanged(ctx context.Context) func(*amqp.LedgerChangedMessage) error {
	return func(msg *amqp.LedgerChangedMessage) error {
		created, err := w.service.PromoteCandidates(ctx, msg.LedgerID)
		if err != nil {
			return fmt.Errorf("promote candidates for %s: %w", msg.LedgerID, err)
		}
		if created > 0 {
			slog.InfoContext(ctx, "Promoted subscription candidates",
				"ledger_id", msg.LedgerID, "created", created)
		}
		return nil
	}
}

// ScanAll sweeps every known ledger: promote newly detected recurring
// charges, then record the payments that have come due this month.
func (w *ScanWorker) ScanAll(ctx context.Context) {
	ids, err := w.service.LedgerIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list ledgers for scan", "error", err)
		return
	}
	for _, id := range ids {
		created, err := w.service.PromoteCandidates(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Ledger scan failed", "ledger_id", id, "error", err)
			continue
		}
		if created > 0 {
			slog.InfoContext(ctx, "Promoted subscription candidates",
				"ledger_id", id, "created", created)
		}
		charged, err := w.service.RecordDueSubscriptions(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Recording due subscriptions failed", "ledger_id", id, "error", err)
			continue
		}
		if charged > 0 {
			slog.InfoContext(ctx, "Recorded due subscription payments",
				"ledger_id", id, "charged", charged)
		}
	}
	slog.InfoContext(ctx, "Full subscription scan completed", "ledgers", len(ids))
}

// ExportAll appends the previous month's summary for every ledger.
func (w *ScanWorker) ExportAll(ctx context.Context) {
	if w.exporter == nil {
		return
	}
	ids, err := w.service.LedgerIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list ledgers for export", "error", err)
		return
	}
	month := previousMonth(time.Now().UTC())
	for _, id := range ids {
		txs, err := w.service.ListTransactions(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load transactions for export", "ledger_id", id, "error", err)
			continue
		}
		if err := w.exporter.AppendMonthlySummary(ctx, id, txs, month); err != nil {
			slog.ErrorContext(ctx, "Monthly export failed", "ledger_id", id, "error", err)
		}
	}
}

// previousMonth returns the first day of the month before now. Going
// through the first of the current month avoids AddDate's day-overflow
// normalization (March 31 minus one month would land on March 3).
func previousMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
}
