package service

import (
	"github.com/RubachokBoss/exam-eligibility/internal/eligibility"
	"github.com/RubachokBoss/exam-eligibility/internal/models"
)

// buildReport evaluates a student with attendance 0 when no attendance row
// exists yet.
func buildReport(student models.User, marks []models.MarkRecord, attendance *models.AttendanceRecord) *models.StudentReport {
	report := &models.StudentReport{
		StudentID: student.ID,
		Username:  student.Username,
		Marks:     marks,
	}
	if report.Marks == nil {
		report.Marks = []models.MarkRecord{}
	}
	if attendance != nil {
		report.AttendancePercent = attendance.AttendancePercent
		report.HasAttendance = true
	}

	subjectMarks := make([]eligibility.SubjectMark, 0, len(marks))
	for _, m := range marks {
		subjectMarks = append(subjectMarks, eligibility.SubjectMark{Subject: m.Subject, Marks: m.Marks})
	}
	report.Eligibility = eligibility.Evaluate(subjectMarks, report.AttendancePercent)

	return report
}
