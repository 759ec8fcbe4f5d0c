package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/application/orchestrators"
)

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{"Flash": flash(r), "Email": ""})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.Email = f.str("Email")
		input.Password = f.r.FormValue("Password")
	}) {
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
		if isHTMLRequest(r) {
			renderTemplate(w, r, http.StatusUnauthorized, "login.html", map[string]any{
				"Errors": []string{err.Error()},
				"Email":  input.Email,
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"errors": []string{err.Error()}})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	sess := middleware.Session{
		AccountID:              result.AccountID,
		Email:                  result.Email,
		Name:                   result.Name,
		Role:                   result.Role,
		PasswordChangeRequired: result.PasswordChangeRequired,
	}
	token, err := sessions.Create(sess)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	target := sess.HomePath()
	if sess.PasswordChangeRequired {
		target = "/change-password"
	}
	done(w, r, target, http.StatusOK, map[string]string{"role": sess.Role, "redirect": target})
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if sess, ok := sessions.Get(token); ok {
			slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
		}
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	done(w, r, "/login", http.StatusNoContent, nil)
}

// handleDashboard handles GET /dashboard by sending each role to its portal.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
}

// handleChangePasswordPage handles GET /change-password
func handleChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	renderTemplate(w, r, http.StatusOK, "change_password.html", map[string]any{
		"Required": sess.PasswordChangeRequired,
	})
}

// handleChangePassword handles POST /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	var input orchestrators.ChangePasswordInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.CurrentPassword = f.r.FormValue("CurrentPassword")
		input.NewPassword = f.r.FormValue("NewPassword")
		input.ConfirmPassword = f.r.FormValue("ConfirmPassword")
	}) {
		return
	}
	input.AccountID = sess.AccountID

	err := orchestrators.ExecuteChangePassword(r.Context(), input, orchestrators.ChangePasswordDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderTemplate(w, r, status, "change_password.html", map[string]any{
				"Required": sess.PasswordChangeRequired,
				"Errors":   msgs,
			})
		})
		return
	}

	if sess.PasswordChangeRequired {
		sess.PasswordChangeRequired = false
		sessions.Update(middleware.SessionToken(r), sess)
	}
	done(w, r, sess.HomePath()+"?msg="+url.QueryEscape("Password changed"), http.StatusNoContent, nil)
}
