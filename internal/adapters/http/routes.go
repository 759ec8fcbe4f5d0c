package web

import (
	"net/http"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/domain/account"
)

// registerRoutes maps every page and form endpoint. Role checks live here so
// handlers can assume the session they need is present.
func registerRoutes(mux *http.ServeMux) {
	admin := middleware.RequireRole(account.RoleAdmin)
	staff := middleware.RequireRole(account.RoleAdmin, account.RoleTrainer)
	anyRole := middleware.RequireRole(account.RoleAdmin, account.RoleTrainer, account.RoleMember)
	memberOnly := middleware.RequireRole(account.RoleMember)
	trainerOnly := middleware.RequireRole(account.RoleTrainer)

	handle := func(pattern string, guard func(http.Handler) http.Handler, h http.HandlerFunc) {
		mux.Handle(pattern, guard(h))
	}

	// Public
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("GET /stories", handlePublicStories)
	mux.HandleFunc("GET /api/classes", handleAPIClasses)

	// Any signed-in account
	handle("GET /change-password", middleware.RequireAuth, handleChangePasswordPage)
	handle("POST /change-password", middleware.RequireAuth, handleChangePassword)
	handle("GET /dashboard", anyRole, handleDashboard)
	handle("GET /classes", anyRole, handleClasses)

	// Class management
	handle("POST /classes", staff, handleCreateClass)
	handle("POST /classes/{id}/cancel", staff, handleCancelClass)

	// Admin portal
	handle("GET /admin", admin, handleAdminDashboard)
	handle("GET /admin/members", admin, handleMemberList)
	handle("POST /admin/members", admin, handleRegisterMember)
	handle("POST /admin/members/import", admin, handleImportMembers)
	handle("GET /admin/members/{id}", admin, handleMemberProfile)
	handle("POST /admin/members/{id}/status", admin, handleMemberStatus)
	handle("GET /admin/trainers", admin, handleTrainerList)
	handle("POST /admin/trainers", admin, handleOnboardTrainer)
	handle("POST /admin/trainers/{id}/deactivate", admin, handleDeactivateTrainer)
	handle("GET /admin/equipment", admin, handleEquipmentList)
	handle("POST /admin/equipment", admin, handleRegisterEquipment)
	handle("POST /admin/equipment/{id}/status", admin, handleEquipmentStatus)
	handle("GET /admin/payments", admin, handlePaymentLedger)
	handle("POST /admin/payments", admin, handleRecordPayment)
	handle("GET /admin/reports/revenue", admin, handleRevenueReport)
	handle("GET /admin/stories", admin, handleStoryModeration)
	handle("POST /admin/stories/{id}/review", admin, handleReviewStory)
	handle("GET /admin/outbox", admin, handleAdminOutbox)
	handle("POST /admin/outbox/test", admin, handleQueueTestEmail)
	handle("POST /admin/outbox/{id}/{action}", admin, handleAdminOutboxAction)
	handle("GET /admin/perf", admin, handleAdminPerf)

	// Member portal
	handle("GET /member", memberOnly, handleMemberPortal)
	handle("POST /member/bookings", memberOnly, handleBookClass)
	handle("POST /member/bookings/{id}/cancel", memberOnly, handleCancelBooking)
	handle("GET /member/stories", memberOnly, handleMemberStories)
	handle("POST /member/stories", memberOnly, handleSubmitStory)

	// Trainer portal
	handle("GET /trainer", trainerOnly, handleTrainerPortal)
}
