package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/repository"
	"github.com/RubachokBoss/exam-eligibility/internal/service/integration"
	"github.com/RubachokBoss/exam-eligibility/pkg/hash"
	"github.com/rs/zerolog"
)

const maxPasswordBytes = 72

type StudentService interface {
	AddStudent(ctx context.Context, req *models.AddStudentRequest) (*models.User, error)
	// ListStudents returns every student with their current eligibility,
	// ordered by username.
	ListStudents(ctx context.Context) ([]models.StudentSummary, error)
}

type studentService struct {
	userRepo          repository.UserRepository
	recordRepo        repository.RecordRepository
	hasher            hash.PasswordHasher
	publisher         integration.EventPublisher
	reservedUsernames []string
	logger            zerolog.Logger
}

func NewStudentService(
	userRepo repository.UserRepository,
	recordRepo repository.RecordRepository,
	hasher hash.PasswordHasher,
	publisher integration.EventPublisher,
	reservedUsernames []string,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		userRepo:          userRepo,
		recordRepo:        recordRepo,
		hasher:            hasher,
		publisher:         publisher,
		reservedUsernames: reservedUsernames,
		logger:            logger,
	}
}

func (s *studentService) AddStudent(ctx context.Context, req *models.AddStudentRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return nil, validationFailure(err, ErrStudentFieldsRequired, ErrStudentFieldsTooLong)
	}
	// validator counts runes; bcrypt's limit is in bytes.
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrStudentFieldsTooLong
	}

	if s.isReserved(req.Username) {
		return nil, ErrReservedUsername
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	student := &models.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         models.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Int64("student_id", student.ID).
		Str("username", student.Username).
		Msg("Student created")

	event := &models.StudentCreatedEvent{
		StudentID: student.ID,
		Username:  student.Username,
		Timestamp: time.Now().Unix(),
	}
	if err := s.publisher.PublishStudentCreated(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("student_id", student.ID).Msg("Failed to publish student created event")
	}

	return student, nil
}

func (s *studentService) ListStudents(ctx context.Context) ([]models.StudentSummary, error) {
	students, err := s.userRepo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	marks, err := s.recordRepo.ListMarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	attendance, err := s.recordRepo.ListAttendance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	marksByStudent := make(map[int64][]models.MarkRecord, len(students))
	for _, m := range marks {
		marksByStudent[m.StudentID] = append(marksByStudent[m.StudentID], m)
	}
	attendanceByStudent := make(map[int64]*models.AttendanceRecord, len(attendance))
	for i := range attendance {
		attendanceByStudent[attendance[i].StudentID] = &attendance[i]
	}

	summaries := make([]models.StudentSummary, 0, len(students))
	for _, student := range students {
		report := buildReport(student, marksByStudent[student.ID], attendanceByStudent[student.ID])
		summaries = append(summaries, models.StudentSummary{
			ID:                student.ID,
			Username:          student.Username,
			SubjectCount:      len(report.Marks),
			AttendancePercent: report.AttendancePercent,
			HasAttendance:     report.HasAttendance,
			Eligibility:       report.Eligibility,
		})
	}

	return summaries, nil
}

func (s *studentService) isReserved(username string) bool {
	for _, reserved := range s.reservedUsernames {
		if strings.EqualFold(username, reserved) {
			return true
		}
	}
	return false
}
