package web

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/trainer"
)

// maxScheduleDays bounds the ?days= look-ahead of the schedule views.
const maxScheduleDays = 60

func scheduleQuery(r *http.Request) projections.GetScheduleQuery {
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	return projections.GetScheduleQuery{
		TrainerID:        q.Get("trainer"),
		Days:             min(max(days, 0), maxScheduleDays),
		IncludeCancelled: q.Get("cancelled") == "true",
	}
}

func renderClasses(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	query := scheduleQuery(r)
	entries, err := projections.QueryGetSchedule(r.Context(), query, projections.GetScheduleDeps{
		ScheduleStore: stores.ClassStore,
		Now:           timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, entries)
		return
	}

	data := map[string]any{
		"Classes": entries,
		"Query":   query,
		"Flash":   flash(r),
		"Form": orchestrators.CreateClassInput{
			StartsAt:        timeNow().In(location).Add(24 * time.Hour).Truncate(time.Hour).Format("2006-01-02T15:04"),
			DurationMinutes: 60,
			Capacity:        20,
		},
	}
	// Admins pick the trainer when scheduling; trainers always schedule for themselves.
	if actor(r).Role == account.RoleAdmin {
		trainers, err := stores.TrainerStore.List(r.Context(), trainerStore.ListFilter{Status: trainer.StatusActive})
		if err != nil {
			internalError(w, err)
			return
		}
		data["Trainers"] = trainers
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "classes.html", data)
}

// handleClasses handles GET /classes
func handleClasses(w http.ResponseWriter, r *http.Request) {
	renderClasses(w, r, http.StatusOK, nil)
}

// handleAPIClasses handles GET /api/classes, the public JSON schedule.
func handleAPIClasses(w http.ResponseWriter, r *http.Request) {
	query := scheduleQuery(r)
	query.IncludeCancelled = false
	entries, err := projections.QueryGetSchedule(r.Context(), query, projections.GetScheduleDeps{
		ScheduleStore: stores.ClassStore,
		Now:           timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, entries)
}

// handleCreateClass handles POST /classes
func handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateClassInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.TrainerID = f.str("TrainerID")
		input.Name = f.str("Name")
		input.Description = f.str("Description")
		input.StartsAt = f.str("StartsAt")
		input.DurationMinutes = f.num("DurationMinutes")
		input.Capacity = f.num("Capacity")
		input.Room = f.str("Room")
	}) {
		return
	}
	input.Actor = actor(r)

	c, err := orchestrators.ExecuteCreateClass(r.Context(), input, orchestrators.CreateClassDeps{
		TrainerStore: stores.TrainerStore,
		ClassStore:   stores.ClassStore,
		Now:          timeNow,
		Location:     location,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderClasses(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/classes?msg="+url.QueryEscape(c.Name+" scheduled"), http.StatusCreated, c)
}

// handleCancelClass handles POST /classes/{id}/cancel
func handleCancelClass(w http.ResponseWriter, r *http.Request) {
	notified, err := orchestrators.ExecuteCancelClass(r.Context(), orchestrators.CancelClassInput{
		Actor:   actor(r),
		ClassID: r.PathValue("id"),
	}, orchestrators.CancelClassDeps{
		ClassStore:   stores.ClassStore,
		Roster:       stores.BookingStore,
		TrainerStore: stores.TrainerStore,
		Outbox:       stores.OutboxStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderClasses(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)

	target := "/classes"
	if actor(r).Role == account.RoleTrainer {
		target = "/trainer"
	}
	msg := "Class cancelled, " + strconv.Itoa(notified) + " member(s) notified"
	done(w, r, target+"?msg="+url.QueryEscape(msg), http.StatusOK, map[string]int{"notified": notified})
}
