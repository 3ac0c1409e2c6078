package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/rs/zerolog"
)

// RecordRepository stores marks and attendance. Every write is a single
// INSERT ... ON CONFLICT statement so concurrent submissions for the same key
// update one row instead of inserting two.
type RecordRepository interface {
	UpsertMarks(ctx context.Context, studentID int64, subject string, marks int) error
	UpsertAttendance(ctx context.Context, studentID int64, attendancePercent float64) error
	// SaveSubmission writes marks and attendance in one transaction.
	SaveSubmission(ctx context.Context, studentID int64, subject string, marks int, attendancePercent float64) error
	GetMarksByStudent(ctx context.Context, studentID int64) ([]models.MarkRecord, error)
	GetAttendanceByStudent(ctx context.Context, studentID int64) (*models.AttendanceRecord, error)
	ListMarks(ctx context.Context) ([]models.MarkRecord, error)
	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
}

const (
	upsertMarksQuery = `
		INSERT INTO marks (student_id, subject, marks, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (student_id, subject)
		DO UPDATE SET marks = EXCLUDED.marks, updated_at = NOW()
	`

	upsertAttendanceQuery = `
		INSERT INTO attendance (student_id, attendance_percent, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (student_id)
		DO UPDATE SET attendance_percent = EXCLUDED.attendance_percent, updated_at = NOW()
	`
)

type recordRepository struct {
	*PostgresRepository
}

func NewRecordRepository(db *sql.DB, logger zerolog.Logger) RecordRepository {
	return &recordRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *recordRepository) UpsertMarks(ctx context.Context, studentID int64, subject string, marks int) error {
	return upsertMarks(ctx, r.db, studentID, subject, marks)
}

func (r *recordRepository) UpsertAttendance(ctx context.Context, studentID int64, attendancePercent float64) error {
	return upsertAttendance(ctx, r.db, studentID, attendancePercent)
}

func (r *recordRepository) SaveSubmission(ctx context.Context, studentID int64, subject string, marks int, attendancePercent float64) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Error().Err(err).Int64("student_id", studentID).Msg("Failed to rollback submission")
		}
	}()

	if err := upsertMarks(ctx, tx, studentID, subject, marks); err != nil {
		return err
	}
	if err := upsertAttendance(ctx, tx, studentID, attendancePercent); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

func (r *recordRepository) GetMarksByStudent(ctx context.Context, studentID int64) ([]models.MarkRecord, error) {
	query := `
		SELECT id, student_id, subject, marks, updated_at
		FROM marks
		WHERE student_id = $1
		ORDER BY subject
	`

	return r.queryMarks(ctx, query, studentID)
}

func (r *recordRepository) GetAttendanceByStudent(ctx context.Context, studentID int64) (*models.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, attendance_percent, updated_at
		FROM attendance
		WHERE student_id = $1
	`

	record := &models.AttendanceRecord{}
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(
		&record.ID,
		&record.StudentID,
		&record.AttendancePercent,
		&record.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *recordRepository) ListMarks(ctx context.Context) ([]models.MarkRecord, error) {
	query := `
		SELECT id, student_id, subject, marks, updated_at
		FROM marks
		ORDER BY student_id, subject
	`

	return r.queryMarks(ctx, query)
}

func (r *recordRepository) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, attendance_percent, updated_at
		FROM attendance
		ORDER BY student_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var record models.AttendanceRecord
		if err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.AttendancePercent,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (r *recordRepository) queryMarks(ctx context.Context, query string, args ...any) ([]models.MarkRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []models.MarkRecord
	for rows.Next() {
		var mark models.MarkRecord
		if err := rows.Scan(
			&mark.ID,
			&mark.StudentID,
			&mark.Subject,
			&mark.Marks,
			&mark.UpdatedAt,
		); err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}

	return marks, rows.Err()
}

func upsertMarks(ctx context.Context, db execer, studentID int64, subject string, marks int) error {
	if _, err := db.ExecContext(ctx, upsertMarksQuery, studentID, subject, marks); err != nil {
		return fmt.Errorf("failed to upsert marks: %w", err)
	}
	return nil
}

func upsertAttendance(ctx context.Context, db execer, studentID int64, attendancePercent float64) error {
	if _, err := db.ExecContext(ctx, upsertAttendanceQuery, studentID, attendancePercent); err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}
