package models

import (
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/eligibility"
)

type MarkRecord struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	Subject   string    `json:"subject" db:"subject"`
	Marks     int       `json:"marks" db:"marks"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type AttendanceRecord struct {
	ID                int64     `json:"id" db:"id"`
	StudentID         int64     `json:"student_id" db:"student_id"`
	AttendancePercent float64   `json:"attendance_percent" db:"attendance_percent"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type StudentReport struct {
	StudentID         int64              `json:"student_id"`
	Username          string             `json:"username"`
	Marks             []MarkRecord       `json:"marks"`
	AttendancePercent float64            `json:"attendance_percent"`
	HasAttendance     bool               `json:"has_attendance"`
	Eligibility       eligibility.Result `json:"eligibility"`
}

type StudentSummary struct {
	ID                int64              `json:"id"`
	Username          string             `json:"username"`
	SubjectCount      int                `json:"subject_count"`
	AttendancePercent float64            `json:"attendance_percent"`
	HasAttendance     bool               `json:"has_attendance"`
	Eligibility       eligibility.Result `json:"eligibility"`
}
