package repository

import (
	"context"
	"sync"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
)

type memorySessionRepository struct {
	sessions map[string]models.Session
	mutex    sync.RWMutex
}

// NewMemorySessionRepository keeps sessions in process memory. Sessions do
// not survive a restart.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]models.Session),
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sessions[session.Token] = *session
	return nil
}

func (r *memorySessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[token]
	if !exists {
		return nil, nil
	}

	return &session, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, token string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.sessions, token)
	return nil
}

func (r *memorySessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var removed int64
	for token, session := range r.sessions {
		if session.ExpiredAt(now) {
			delete(r.sessions, token)
			removed++
		}
	}

	return removed, nil
}
