package httpd

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/service"
)

type teacherPage struct {
	Username string
	Students []models.StudentSummary
}

func (h *Handler) TeacherDashboard(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	students, err := h.studentService.ListStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "teacher.html", teacherPage{
		Username: session.Username,
		Students: students,
	})
}

func (h *Handler) AddStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	req := models.AddStudentRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}

	if _, err := h.studentService.AddStudent(r.Context(), &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/teacher", http.StatusSeeOther)
}

func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	req, err := parseSubmitForm(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.recordService.SubmitRecord(r.Context(), req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/teacher", http.StatusSeeOther)
}

// parseSubmitForm requires every field; marks must be a whole number.
func parseSubmitForm(r *http.Request) (*models.SubmitRecordRequest, error) {
	studentID := strings.TrimSpace(r.PostForm.Get("student_id"))
	subject := strings.TrimSpace(r.PostForm.Get("subject"))
	marks := strings.TrimSpace(r.PostForm.Get("marks"))
	attendance := strings.TrimSpace(r.PostForm.Get("attendance"))

	if studentID == "" || subject == "" || marks == "" || attendance == "" {
		return nil, service.ErrRecordFieldsRequired
	}

	id, err := strconv.ParseInt(studentID, 10, 64)
	if err != nil {
		return nil, service.ErrUnknownStudent
	}
	marksValue, err := strconv.Atoi(marks)
	if err != nil {
		return nil, service.ErrInvalidRecord
	}
	attendanceValue, err := strconv.ParseFloat(attendance, 64)
	if err != nil {
		return nil, service.ErrInvalidRecord
	}

	return &models.SubmitRecordRequest{
		StudentID:         id,
		Subject:           subject,
		Marks:             marksValue,
		AttendancePercent: attendanceValue,
	}, nil
}
