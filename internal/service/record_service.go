package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/repository"
	"github.com/RubachokBoss/exam-eligibility/internal/service/integration"
	"github.com/rs/zerolog"
)

type RecordService interface {
	UpsertMarks(ctx context.Context, studentID int64, subject string, marks int) error
	UpsertAttendance(ctx context.Context, studentID int64, attendancePercent float64) error
	// SubmitRecord saves one subject's marks and the attendance figure together.
	SubmitRecord(ctx context.Context, req *models.SubmitRecordRequest) error
	StudentReport(ctx context.Context, studentID int64) (*models.StudentReport, error)
}

type recordService struct {
	userRepo   repository.UserRepository
	recordRepo repository.RecordRepository
	publisher  integration.EventPublisher
	logger     zerolog.Logger
}

func NewRecordService(
	userRepo repository.UserRepository,
	recordRepo repository.RecordRepository,
	publisher integration.EventPublisher,
	logger zerolog.Logger,
) RecordService {
	return &recordService{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *recordService) UpsertMarks(ctx context.Context, studentID int64, subject string, marks int) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ErrRecordFieldsRequired
	}
	if err := validate.Var(marks, "gte=0,lte=100"); err != nil {
		return ErrInvalidRecord
	}
	if _, err := s.requireStudent(ctx, studentID); err != nil {
		return err
	}

	return s.recordRepo.UpsertMarks(ctx, studentID, subject, marks)
}

func (s *recordService) UpsertAttendance(ctx context.Context, studentID int64, attendancePercent float64) error {
	if err := validate.Var(attendancePercent, "gte=0,lte=100"); err != nil {
		return ErrInvalidRecord
	}
	if _, err := s.requireStudent(ctx, studentID); err != nil {
		return err
	}

	return s.recordRepo.UpsertAttendance(ctx, studentID, attendancePercent)
}

func (s *recordService) SubmitRecord(ctx context.Context, req *models.SubmitRecordRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validate.Struct(req); err != nil {
		return validationFailure(err, ErrRecordFieldsRequired, ErrInvalidRecord)
	}

	student, err := s.requireStudent(ctx, req.StudentID)
	if err != nil {
		return err
	}

	if err := s.recordRepo.SaveSubmission(ctx, req.StudentID, req.Subject, req.Marks, req.AttendancePercent); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	s.logger.Info().
		Int64("student_id", req.StudentID).
		Str("subject", req.Subject).
		Int("marks", req.Marks).
		Float64("attendance_percent", req.AttendancePercent).
		Msg("Marks and attendance saved")

	s.publishRecordUpdated(ctx, *student, req)
	return nil
}

func (s *recordService) StudentReport(ctx context.Context, studentID int64) (*models.StudentReport, error) {
	student, err := s.requireStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	marks, err := s.recordRepo.GetMarksByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get marks: %w", err)
	}
	attendance, err := s.recordRepo.GetAttendanceByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return buildReport(*student, marks, attendance), nil
}

func (s *recordService) requireStudent(ctx context.Context, studentID int64) (*models.User, error) {
	if studentID <= 0 {
		return nil, ErrUnknownStudent
	}
	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if user == nil || user.Role != models.RoleStudent {
		return nil, ErrUnknownStudent
	}
	return user, nil
}

func (s *recordService) publishRecordUpdated(ctx context.Context, student models.User, req *models.SubmitRecordRequest) {
	marks, err := s.recordRepo.GetMarksByStudent(ctx, student.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("student_id", student.ID).Msg("Failed to reload marks for event")
		return
	}
	report := buildReport(student, marks, &models.AttendanceRecord{
		StudentID:         student.ID,
		AttendancePercent: req.AttendancePercent,
	})

	event := &models.RecordUpdatedEvent{
		StudentID:         student.ID,
		Subject:           req.Subject,
		Marks:             req.Marks,
		AttendancePercent: req.AttendancePercent,
		Status:            report.Eligibility.Status.String(),
		Reasons:           report.Eligibility.Reasons,
		Timestamp:         time.Now().Unix(),
	}
	if err := s.publisher.PublishRecordUpdated(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("student_id", student.ID).Msg("Failed to publish record updated event")
	}
}
