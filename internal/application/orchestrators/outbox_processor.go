package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/adapters/email"
	outboxstore "gymhub/internal/adapters/storage/outbox"
	domain "gymhub/internal/domain/outbox"
)

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's ID for the action and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor delivers queued outbox entries with retries.
type OutboxProcessor struct {
	store     outboxstore.Store
	executors map[string]ActionExecutor
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxstore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		batchSize: 25,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the processor's clock. Used by tests.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// ProcessStats summarises one processing run.
type ProcessStats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// ProcessPending attempts every entry that is due.
// PRE: Context is valid
// POST: Due entries are delivered or rescheduled with backoff; exhausted entries are failed
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessStats, error) {
	var stats ProcessStats
	entries, err := p.store.ListDue(ctx, p.now(), p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list due outbox entries: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Attempted++
		ok, err := p.attempt(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
		if ok {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	if stats.Attempted > 0 {
		slog.Info("outbox_processed", "attempted", stats.Attempted, "succeeded", stats.Succeeded, "failed", stats.Failed)
	}
	return stats, nil
}

// attempt runs one delivery and saves the outcome. It reports whether delivery succeeded.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (bool, error) {
	now := p.now()
	entry.MarkAttempt(now)

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType), now)
		return false, p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err, now)
		slog.Warn("outbox_action_failed",
			"entry_id", entry.ID,
			"attempt", entry.Attempts,
			"status", entry.Status,
			"next_attempt_at", entry.NextAttemptAt,
			"error", err.Error())
		return false, p.store.Save(ctx, entry)
	}

	entry.MarkSuccess(externalID)
	slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	return true, p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// PRE: entryID is non-empty
// POST: Entry is attempted now regardless of its backoff, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is %s and cannot be retried", entryID, entry.Status)
	}
	if _, err := p.attempt(ctx, entry); err != nil {
		return err
	}
	return nil
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.MarkAbandoned(); err != nil {
		return err
	}
	slog.Info("outbox_entry_abandoned", "entry_id", entryID)
	return p.store.Save(ctx, entry)
}

// RequeueEntry gives a failed or abandoned entry a fresh set of attempts.
// PRE: entryID is non-empty
// POST: Entry is pending and due now
func (p *OutboxProcessor) RequeueEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.Requeue(p.now()); err != nil {
		return err
	}
	slog.Info("outbox_entry_requeued", "entry_id", entryID)
	return p.store.Save(ctx, entry)
}

// --- Email Executor ---

// EmailExecutor sends email entries through an email.Sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching domain.EmailPayload
// POST: email handed to the provider, returns message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	entry := domain.Entry{Payload: payload}
	p, err := entry.Email()
	if err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      []string{p.To},
		Subject: p.Subject,
		Text:    p.Text,
		Tag:     p.Kind,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- Background Worker ---

// Job is periodic work run by the background worker.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// OutboxJob wraps the processor as a worker job.
func OutboxJob(p *OutboxProcessor) Job {
	return Job{Name: "outbox", Run: func(ctx context.Context) error {
		_, err := p.ProcessPending(ctx)
		return err
	}}
}

// ExpiryJob wraps ExecuteExpireMemberships as a worker job.
func ExpiryJob(deps ExpireMembershipsDeps) Job {
	return Job{Name: "expire_memberships", Run: func(ctx context.Context) error {
		_, err := ExecuteExpireMemberships(ctx, deps)
		return err
	}}
}

// StartBackgroundWorker runs jobs in order once at start and then every interval.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed; the returned channel closes once it has exited
func StartBackgroundWorker(interval time.Duration, stopCh <-chan struct{}, jobs ...Job) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runJobs(jobs)
		for {
			select {
			case <-ticker.C:
				runJobs(jobs)
			case <-stopCh:
				slog.Info("background_worker_stopped")
				return
			}
		}
	}()
	return done
}

func runJobs(jobs []Job) {
	for _, job := range jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			slog.Error("background_job_failed", "job", job.Name, "error", err.Error())
		} else {
			slog.Debug("background_job_done", "job", job.Name, "duration_ms", time.Since(start).Milliseconds())
		}
		cancel()
	}
}
