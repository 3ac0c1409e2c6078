package httpd

import (
	"errors"
	"net/http"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/service"
)

type loginPage struct {
	Error string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session := h.currentSession(r); session != nil {
		http.Redirect(w, r, homeFor(session.Role), http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, "login.html", loginPage{Error: r.URL.Query().Get("error")})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, service.ErrCredentialsRequired.Message)
		return
	}

	req := models.LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}

	ctx := r.Context()
	session, err := h.authService.Login(ctx, &req)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			redirectWithError(w, r, "Invalid username or password")
		case errors.As(err, &validationErr):
			redirectWithError(w, r, validationErr.Message)
		default:
			h.logger.Error().Err(err).Msg("Login failed")
			redirectWithError(w, r, "Server error")
		}
		return
	}

	if previous, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.authService.DestroySession(ctx, previous.Value); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to drop previous session")
		}
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, homeFor(session.Role), http.StatusSeeOther)
}

// Logout always ends on the login page; a store failure is only logged.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.authService.DestroySession(r.Context(), cookie.Value); err != nil {
			h.logger.Error().Err(err).Msg("Error destroying session")
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
