package httpd

import (
	"net/http"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
)

type studentPage struct {
	Username string
	Report   *models.StudentReport
}

func (h *Handler) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	report, err := h.recordService.StudentReport(r.Context(), session.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "student.html", studentPage{
		Username: session.Username,
		Report:   report,
	})
}
