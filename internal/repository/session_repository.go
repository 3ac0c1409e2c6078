package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/rs/zerolog"
)

// SessionRepository returns nil, nil for unknown tokens. Expiry is judged by
// the caller; the store only keeps the timestamp.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresSessionRepository struct {
	*PostgresRepository
}

func NewPostgresSessionRepository(db *sql.DB, logger zerolog.Logger) SessionRepository {
	return &postgresSessionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, username, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.Username,
		session.Role,
		session.CreatedAt,
		session.ExpiresAt,
	)

	return err
}

func (r *postgresSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, user_id, username, role, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.Username,
		&session.Role,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *postgresSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
