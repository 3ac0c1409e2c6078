package httpd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the session stored by LoginRequired.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

// LoginRequired redirects anonymous requests to the login page.
func (h *Handler) LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.currentSession(r)
		if session == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleRequired must run after LoginRequired. A wrong role gets 403, not a
// redirect.
func RoleRequired(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil || session.Role != role {
				writeError(w, http.StatusForbidden, fmt.Sprintf("Access denied. %s role required.", role.Title()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) currentSession(r *http.Request) *models.Session {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return nil
	}
	return h.authService.ResolveSession(r.Context(), cookie.Value)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
