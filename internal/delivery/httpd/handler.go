package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	authService    service.AuthService
	studentService service.StudentService
	recordService  service.RecordService
	renderer       *Renderer
	cookie         CookieConfig
	db             Pinger
	logger         zerolog.Logger
}

func NewHandler(
	authService service.AuthService,
	studentService service.StudentService,
	recordService service.RecordService,
	renderer *Renderer,
	cookie CookieConfig,
	db Pinger,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		authService:    authService,
		studentService: studentService,
		recordService:  recordService,
		renderer:       renderer,
		cookie:         cookie,
		db:             db,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Get("/", h.LoginPage)
	router.Post("/login", h.Login)
	router.Get("/logout", h.Logout)

	router.Group(func(r chi.Router) {
		r.Use(h.LoginRequired)
		r.Use(RoleRequired(models.RoleTeacher))

		r.Get("/teacher", h.TeacherDashboard)
		r.Post("/teacher/add-student", h.AddStudent)
		r.Post("/teacher/submit", h.SubmitRecord)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.LoginRequired)
		r.Use(RoleRequired(models.RoleStudent))

		r.Get("/student", h.StudentDashboard)
	})
}

// handleServiceError shows validation messages as 400 and hides everything
// else behind a generic 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	h.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func homeFor(role models.Role) string {
	if role == models.RoleTeacher {
		return "/teacher"
	}
	return "/student"
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
