package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  []models.User
	nextID int64
	err    error
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type markKey struct {
	studentID int64
	subject   string
}

// fakeRecordRepo keys rows the way the unique constraints do.
type fakeRecordRepo struct {
	mu         sync.Mutex
	marks      map[markKey]int
	attendance map[int64]float64
	saveErr    error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		marks:      make(map[markKey]int),
		attendance: make(map[int64]float64),
	}
}

func (r *fakeRecordRepo) UpsertMarks(_ context.Context, studentID int64, subject string, marks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks[markKey{studentID, subject}] = marks
	return nil
}

func (r *fakeRecordRepo) UpsertAttendance(_ context.Context, studentID int64, pct float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attendance[studentID] = pct
	return nil
}

func (r *fakeRecordRepo) SaveSubmission(ctx context.Context, studentID int64, subject string, marks int, pct float64) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if err := r.UpsertMarks(ctx, studentID, subject, marks); err != nil {
		return err
	}
	return r.UpsertAttendance(ctx, studentID, pct)
}

func (r *fakeRecordRepo) GetMarksByStudent(_ context.Context, studentID int64) ([]models.MarkRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MarkRecord
	for k, v := range r.marks {
		if k.studentID == studentID {
			out = append(out, models.MarkRecord{StudentID: studentID, Subject: k.subject, Marks: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (r *fakeRecordRepo) GetAttendanceByStudent(_ context.Context, studentID int64) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pct, ok := r.attendance[studentID]
	if !ok {
		return nil, nil
	}
	return &models.AttendanceRecord{StudentID: studentID, AttendancePercent: pct}, nil
}

func (r *fakeRecordRepo) ListMarks(_ context.Context) ([]models.MarkRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MarkRecord
	for k, v := range r.marks {
		out = append(out, models.MarkRecord{StudentID: k.studentID, Subject: k.subject, Marks: v})
	}
	return out, nil
}

func (r *fakeRecordRepo) ListAttendance(_ context.Context) ([]models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AttendanceRecord
	for id, pct := range r.attendance {
		out = append(out, models.AttendanceRecord{StudentID: id, AttendancePercent: pct})
	}
	return out, nil
}

func (r *fakeRecordRepo) markRows(studentID int64, subject string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.marks {
		if k.studentID == studentID && k.subject == subject {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []models.StudentCreatedEvent
	updated []models.RecordUpdatedEvent
	err     error
}

func (p *recordingPublisher) PublishStudentCreated(_ context.Context, e *models.StudentCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, *e)
	return p.err
}

func (p *recordingPublisher) PublishRecordUpdated(_ context.Context, e *models.RecordUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, *e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type failingSessionRepo struct{}

var errSessionStore = errors.New("session store down")

func (failingSessionRepo) Create(context.Context, *models.Session) error { return errSessionStore }
func (failingSessionRepo) GetByToken(context.Context, string) (*models.Session, error) {
	return nil, errSessionStore
}
func (failingSessionRepo) Delete(context.Context, string) error { return errSessionStore }
func (failingSessionRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errSessionStore
}
