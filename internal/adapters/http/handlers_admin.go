package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	equipmentStore "gymhub/internal/adapters/storage/equipment"
	memberStore "gymhub/internal/adapters/storage/member"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/listutil"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/trainer"
)

// maxImportBytes caps the pasted CSV accepted by the member import.
const maxImportBytes = 1 << 20

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func invalidateDashboard(r *http.Request) {
	projections.InvalidateAdminDashboard(r.Context(), dashboardCache)
}

func dashboardDeps() projections.GetAdminDashboardDeps {
	return projections.GetAdminDashboardDeps{
		Counts: projections.DashboardCounts{
			Members:   stores.MemberStore,
			Trainers:  stores.TrainerStore,
			Classes:   stores.ClassStore,
			Equipment: stores.EquipmentStore,
			Payments:  stores.PaymentStore,
			Stories:   stores.StoryStore,
		},
		Cache: dashboardCache,
		Now:   timeNow,
	}
}

// handleAdminDashboard handles GET /admin
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := projections.QueryGetAdminDashboard(r.Context(), dashboardDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, dash)
		return
	}
	renderTemplate(w, r, http.StatusOK, "admin_dashboard.html", map[string]any{
		"Dashboard": dash,
		"Flash":     flash(r),
	})
}

// --- Members ---

// renderMemberList renders the member list with the registration form.
// extra carries form values, errors or the result of the last write.
func renderMemberList(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	lp := listutil.ParseListParams(r.URL.Query(), memberStore.SortColumns, []string{"status", "plan"})
	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{ListParams: lp}, projections.GetMemberListDeps{
		MemberStore: stores.MemberStore,
		Now:         timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, result)
		return
	}
	data := map[string]any{
		"Result":   result,
		"Plans":    member.ValidPlans,
		"Statuses": member.ValidStatuses,
		"Flash":    flash(r),
		"Form":     orchestrators.RegisterMemberInput{Plan: member.PlanBasic},
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_members.html", data)
}

// handleMemberList handles GET /admin/members
func handleMemberList(w http.ResponseWriter, r *http.Request) {
	renderMemberList(w, r, http.StatusOK, nil)
}

// handleRegisterMember handles POST /admin/members
func handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.RegisterMemberInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Name = f.str("Name")
		input.Email = f.str("Email")
		input.Phone = f.str("Phone")
		input.Plan = f.str("Plan")
		input.Password = f.r.FormValue("Password")
	}) {
		return
	}

	result, err := orchestrators.ExecuteRegisterMember(r.Context(), input, orchestrators.RegisterMemberDeps{
		MemberStore: stores.MemberStore,
		Outbox:      stores.OutboxStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			input.Password = ""
			renderMemberList(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	// Rendered rather than redirected so the temporary password never lands in a URL.
	renderMemberList(w, r, http.StatusCreated, map[string]any{
		"Created": map[string]string{"Name": input.Name, "Email": input.Email, "Password": result.TempPassword},
	})
}

// handleImportMembers handles POST /admin/members/import.
// The CSV is pasted into the CSV field, or sent as a text/csv body.
func handleImportMembers(w http.ResponseWriter, r *http.Request) {
	input := orchestrators.ImportMembersInput{DefaultPlan: member.PlanBasic}
	if isFormPost(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		if err := r.ParseForm(); err != nil {
			if isTooLarge(err) {
				http.Error(w, "CSV exceeds 1 MiB", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.Reader = strings.NewReader(r.FormValue("CSV"))
		input.DryRun = r.FormValue("DryRun") != ""
		input.SendWelcome = r.FormValue("SendWelcome") != ""
		if plan := r.FormValue("DefaultPlan"); plan != "" {
			input.DefaultPlan = plan
		}
	} else {
		// Read the whole body first so an oversized upload fails before any row is written.
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			if isTooLarge(err) {
				http.Error(w, "CSV exceeds 1 MiB", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		q := r.URL.Query()
		input.Reader = bytes.NewReader(body)
		input.DryRun = q.Get("dry_run") == "true"
		input.SendWelcome = q.Get("send_welcome") == "true"
		if plan := q.Get("plan"); plan != "" {
			input.DefaultPlan = plan
		}
	}

	result, err := orchestrators.ExecuteImportMembers(r.Context(), input, orchestrators.ImportMembersDeps{
		MemberStore: stores.MemberStore,
		Outbox:      stores.OutboxStore,
		Now:         timeNow,
	})
	var structural *orchestrators.ImportMembersValidationError
	if errors.As(err, &structural) {
		err = validation.Wrap(err)
	}
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderMemberList(w, r, status, map[string]any{"ImportErrors": msgs})
		})
		return
	}
	if result.Created > 0 {
		invalidateDashboard(r)
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderMemberList(w, r, http.StatusOK, map[string]any{"Import": result})
}

// handleMemberProfile handles GET /admin/members/{id}
func handleMemberProfile(w http.ResponseWriter, r *http.Request) {
	m, err := stores.MemberStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	portal, err := projections.QueryGetMemberPortal(r.Context(), projections.GetMemberPortalQuery{AccountID: m.AccountID}, projections.GetMemberPortalDeps{
		MemberStore:  stores.MemberStore,
		BookingStore: stores.BookingStore,
		PaymentStore: stores.PaymentStore,
		StoryStore:   stores.StoryStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, portal)
		return
	}
	renderTemplate(w, r, http.StatusOK, "admin_member.html", map[string]any{
		"Portal":  portal,
		"Methods": payment.Methods,
		"Plans":   member.ValidPlans,
		"Flash":   flash(r),
	})
}

// handleMemberStatus handles POST /admin/members/{id}/status
func handleMemberStatus(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateMemberStatusInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Action = f.str("Action")
	}) {
		return
	}
	input.MemberID = r.PathValue("id")

	m, err := orchestrators.ExecuteUpdateMemberStatus(r.Context(), input, orchestrators.UpdateMemberStatusDeps{
		MemberStore: stores.MemberStore,
		Now:         timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderMemberList(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	if m.Status == member.StatusSuspended {
		sessions.DeleteAccount(m.AccountID)
	}
	invalidateDashboard(r)
	done(w, r, "/admin/members/"+m.ID+"?msg="+url.QueryEscape("Status is now "+m.Status), http.StatusOK, m)
}

// --- Trainers ---

func renderTrainerList(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	filter := trainerStore.ListFilter{
		Status:    r.URL.Query().Get("status"),
		Specialty: r.URL.Query().Get("specialty"),
	}
	trainers, err := stores.TrainerStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, trainers)
		return
	}
	data := map[string]any{
		"Trainers":    trainers,
		"Filter":      filter,
		"Specialties": trainer.Specialties,
		"Flash":       flash(r),
		"Form":        orchestrators.OnboardTrainerInput{},
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_trainers.html", data)
}

// handleTrainerList handles GET /admin/trainers
func handleTrainerList(w http.ResponseWriter, r *http.Request) {
	renderTrainerList(w, r, http.StatusOK, nil)
}

// handleOnboardTrainer handles POST /admin/trainers
func handleOnboardTrainer(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.OnboardTrainerInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Name = f.str("Name")
		input.Email = f.str("Email")
		input.Phone = f.str("Phone")
		input.Specialty = f.str("Specialty")
		input.Certification = f.str("Certification")
		input.ExperienceYears = f.num("ExperienceYears")
		input.HourlyRate = f.str("HourlyRate")
		input.Bio = f.str("Bio")
	}) {
		return
	}

	result, err := orchestrators.ExecuteOnboardTrainer(r.Context(), input, orchestrators.OnboardTrainerDeps{
		TrainerStore: stores.TrainerStore,
		Outbox:       stores.OutboxStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderTrainerList(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	renderTrainerList(w, r, http.StatusCreated, map[string]any{
		"Created": map[string]string{"Name": input.Name, "Email": input.Email, "Password": result.TempPassword},
	})
}

// handleDeactivateTrainer handles POST /admin/trainers/{id}/deactivate
func handleDeactivateTrainer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := orchestrators.ExecuteDeactivateTrainer(r.Context(), id, orchestrators.DeactivateTrainerDeps{
		TrainerStore: stores.TrainerStore,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderTrainerList(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/admin/trainers?msg="+url.QueryEscape("Trainer deactivated"), http.StatusNoContent, nil)
}

// --- Equipment ---

func renderEquipmentList(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	q := r.URL.Query()
	filter := equipmentStore.ListFilter{Category: q.Get("category"), Status: q.Get("status")}
	items, err := stores.EquipmentStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, items)
		return
	}
	data := map[string]any{
		"Items":      items,
		"Filter":     filter,
		"Categories": equipment.Categories,
		"Statuses":   equipment.Statuses,
		"Flash":      flash(r),
		"Form":       orchestrators.RegisterEquipmentInput{PurchaseDate: timeNow().Format(equipment.DateLayout)},
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_equipment.html", data)
}

// handleEquipmentList handles GET /admin/equipment
func handleEquipmentList(w http.ResponseWriter, r *http.Request) {
	renderEquipmentList(w, r, http.StatusOK, nil)
}

// handleRegisterEquipment handles POST /admin/equipment
func handleRegisterEquipment(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.RegisterEquipmentInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Name = f.str("Name")
		input.Category = f.str("Category")
		input.SerialNumber = f.str("SerialNumber")
		input.PurchaseDate = f.str("PurchaseDate")
		input.PurchasePrice = f.str("PurchasePrice")
		input.Notes = f.str("Notes")
	}) {
		return
	}

	e, err := orchestrators.ExecuteRegisterEquipment(r.Context(), input, orchestrators.EquipmentDeps{
		EquipmentStore: stores.EquipmentStore,
		Now:            timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderEquipmentList(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/admin/equipment?msg="+url.QueryEscape(e.Name+" registered"), http.StatusCreated, e)
}

// handleEquipmentStatus handles POST /admin/equipment/{id}/status
func handleEquipmentStatus(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateEquipmentStatusInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Status = f.str("Status")
		input.Notes = f.str("Notes")
	}) {
		return
	}
	input.EquipmentID = r.PathValue("id")

	e, err := orchestrators.ExecuteUpdateEquipmentStatus(r.Context(), input, orchestrators.EquipmentDeps{
		EquipmentStore: stores.EquipmentStore,
		Now:            timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderEquipmentList(w, r, status, map[string]any{"Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)
	done(w, r, "/admin/equipment?msg="+url.QueryEscape(e.Name+" is now "+e.Status), http.StatusOK, e)
}
