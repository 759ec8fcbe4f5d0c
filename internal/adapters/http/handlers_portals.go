package web

import (
	"net/http"
	"net/url"

	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
	"gymhub/internal/domain/story"
)

func memberPortalDeps() projections.GetMemberPortalDeps {
	return projections.GetMemberPortalDeps{
		MemberStore:  stores.MemberStore,
		BookingStore: stores.BookingStore,
		PaymentStore: stores.PaymentStore,
		StoryStore:   stores.StoryStore,
		Now:          timeNow,
	}
}

func renderMemberPortal(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	ctx := r.Context()
	portal, err := projections.QueryGetMemberPortal(ctx, projections.GetMemberPortalQuery{AccountID: actor(r).AccountID}, memberPortalDeps())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	schedule, err := projections.QueryGetSchedule(ctx, projections.GetScheduleQuery{}, projections.GetScheduleDeps{
		ScheduleStore: stores.ClassStore,
		Now:           timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, map[string]any{"portal": portal, "schedule": schedule})
		return
	}

	booked := make(map[string]bool, len(portal.Bookings))
	for _, b := range portal.Bookings {
		booked[b.ClassID] = true
	}
	data := map[string]any{
		"Portal":   portal,
		"Schedule": schedule,
		"Booked":   booked,
		"Flash":    flash(r),
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "member_portal.html", data)
}

// handleMemberPortal handles GET /member
func handleMemberPortal(w http.ResponseWriter, r *http.Request) {
	renderMemberPortal(w, r, http.StatusOK, nil)
}

// handleBookClass handles POST /member/bookings
func handleBookClass(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.BookClassInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.ClassID = f.str("ClassID")
	}) {
		return
	}
	input.AccountID = actor(r).AccountID

	b, err := orchestrators.ExecuteBookClass(r.Context(), input, orchestrators.BookClassDeps{
		MemberStore:  stores.MemberStore,
		BookingStore: stores.BookingStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderMemberPortal(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	done(w, r, "/member?msg="+url.QueryEscape("Class booked"), http.StatusCreated, b)
}

// handleCancelBooking handles POST /member/bookings/{id}/cancel
func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		AccountID: actor(r).AccountID,
		BookingID: r.PathValue("id"),
	}, orchestrators.CancelBookingDeps{
		MemberStore:  stores.MemberStore,
		BookingStore: stores.BookingStore,
		ClassStore:   stores.ClassStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderMemberPortal(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	done(w, r, "/member?msg="+url.QueryEscape("Booking cancelled"), http.StatusNoContent, nil)
}

// handleTrainerPortal handles GET /trainer
func handleTrainerPortal(w http.ResponseWriter, r *http.Request) {
	portal, err := projections.QueryGetTrainerPortal(r.Context(), projections.GetTrainerPortalQuery{AccountID: actor(r).AccountID}, projections.GetTrainerPortalDeps{
		TrainerStore:  stores.TrainerStore,
		ScheduleStore: stores.ClassStore,
		BookingStore:  stores.BookingStore,
		Now:           timeNow,
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, portal)
		return
	}
	renderTemplate(w, r, http.StatusOK, "trainer_portal.html", map[string]any{
		"Portal": portal,
		"Flash":  flash(r),
	})
}

// --- Success stories ---

// handlePublicStories handles GET /stories
func handlePublicStories(w http.ResponseWriter, r *http.Request) {
	items, err := projections.QueryGetPublishedStories(r.Context(), projections.GetStoriesDeps{StoryStore: stores.StoryStore})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, items)
		return
	}
	renderTemplate(w, r, http.StatusOK, "stories.html", map[string]any{"Stories": items})
}

func renderMemberStories(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	portal, err := projections.QueryGetMemberPortal(r.Context(), projections.GetMemberPortalQuery{AccountID: actor(r).AccountID}, memberPortalDeps())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, portal.Stories)
		return
	}
	data := map[string]any{
		"Stories": portal.Stories,
		"Flash":   flash(r),
		"Form":    orchestrators.SubmitStoryInput{},
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "member_stories.html", data)
}

// handleMemberStories handles GET /member/stories
func handleMemberStories(w http.ResponseWriter, r *http.Request) {
	renderMemberStories(w, r, http.StatusOK, nil)
}

// handleSubmitStory handles POST /member/stories
func handleSubmitStory(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.SubmitStoryInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Title = f.str("Title")
		input.Body = f.str("Body")
		input.MonthsTraining = f.num("MonthsTraining")
	}) {
		return
	}
	input.AccountID = actor(r).AccountID

	s, err := orchestrators.ExecuteSubmitStory(r.Context(), input, orchestrators.SubmitStoryDeps{
		MemberStore: stores.MemberStore,
		StoryStore:  stores.StoryStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderMemberStories(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/member/stories?msg="+url.QueryEscape("Story submitted for review"), http.StatusCreated, s)
}

func renderStoryModeration(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	filter := r.URL.Query().Get("status")
	switch filter {
	case "":
		filter = story.StatusPending
	case "all":
		filter = ""
	}
	items, err := projections.QueryGetStories(r.Context(), projections.GetStoriesQuery{Status: filter, Limit: 100}, projections.GetStoriesDeps{
		StoryStore: stores.StoryStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, items)
		return
	}
	data := map[string]any{
		"Stories": items,
		"Status":  filter,
		"Flash":   flash(r),
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_stories.html", data)
}

// handleStoryModeration handles GET /admin/stories?status=
func handleStoryModeration(w http.ResponseWriter, r *http.Request) {
	renderStoryModeration(w, r, http.StatusOK, nil)
}

// handleReviewStory handles POST /admin/stories/{id}/review
func handleReviewStory(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ReviewStoryInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Decision = f.str("Decision")
	}) {
		return
	}
	input.StoryID = r.PathValue("id")
	input.ReviewerID = actor(r).AccountID

	s, err := orchestrators.ExecuteReviewStory(r.Context(), input, orchestrators.ReviewStoryDeps{
		StoryStore:  stores.StoryStore,
		MemberStore: stores.MemberStore,
		Outbox:      stores.OutboxStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderStoryModeration(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/admin/stories?msg="+url.QueryEscape("Story "+s.Status), http.StatusOK, s)
}
