package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/outbox"
)

// outboxRow is an entry with its decoded email for display.
type outboxRow struct {
	outbox.Entry
	Email outbox.EmailPayload
}

func renderOutbox(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	ctx := r.Context()
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 200 {
		limit = n
	}
	filter := r.URL.Query().Get("status")
	if filter == "all" {
		filter = ""
	}

	entries, err := stores.OutboxStore.ListByStatus(ctx, filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	counts, err := stores.OutboxStore.CountByStatus(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, map[string]any{"counts": counts, "entries": entries})
		return
	}

	rows := make([]outboxRow, 0, len(entries))
	for _, e := range entries {
		p, _ := e.Email()
		rows = append(rows, outboxRow{Entry: e, Email: p})
	}
	data := map[string]any{
		"Rows":     rows,
		"Counts":   counts,
		"Status":   filter,
		"To":       "",
		"Statuses": []string{outbox.StatusPending, outbox.StatusRetrying, outbox.StatusDone, outbox.StatusFailed, outbox.StatusAbandoned},
		"Flash":    flash(r),
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_outbox.html", data)
}

// handleAdminOutbox handles GET /admin/outbox?status=&limit=
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	renderOutbox(w, r, http.StatusOK, nil)
}

// handleQueueTestEmail handles POST /admin/outbox/test
func handleQueueTestEmail(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.TestEmailInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.To = f.str("To")
	}) {
		return
	}

	id, err := orchestrators.ExecuteQueueTestEmail(r.Context(), input, orchestrators.TestEmailDeps{
		Outbox: stores.OutboxStore,
		Now:    timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderOutbox(w, r, status, map[string]any{"Errors": msgs, "To": input.To})
		})
		return
	}
	done(w, r, "/admin/outbox?msg="+url.QueryEscape("Test email queued for "+input.To), http.StatusAccepted, map[string]string{"id": id})
}

// handleAdminOutboxAction handles POST /admin/outbox/{id}/{action} where
// action is retry, abandon or requeue.
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		http.Error(w, "outbox processing is disabled", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")
	action := r.PathValue("action")

	var err error
	var msg string
	switch action {
	case "retry":
		err = outboxProcessor.ProcessSingle(ctx, id)
		msg = "Retry attempted"
	case "abandon":
		err = outboxProcessor.AbandonEntry(ctx, id)
		msg = "Entry abandoned"
	case "requeue":
		err = outboxProcessor.RequeueEntry(ctx, id)
		msg = "Entry requeued"
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	// Anything but a missing entry is an invalid transition for its current state.
	if err != nil && !errors.Is(err, outbox.ErrNotFound) {
		err = validation.Wrap(err)
	}
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderOutbox(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	done(w, r, "/admin/outbox?msg="+url.QueryEscape(msg), http.StatusOK, map[string]string{"status": action})
}

// handleAdminPerf handles GET /admin/perf?minutes=
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "performance collection is disabled", http.StatusServiceUnavailable)
		return
	}
	minutes := 60
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}
