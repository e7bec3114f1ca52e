package storage

import (
	"context"
	"sync"
	"time"

	"authgate/core"

	"github.com/google/uuid"
)

// Predefined test users
var (
	User1 = &core.User{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		SubjectID: "seed_subject_1",
		Email:     "user1@mock.test",
		Name:      "Seed User One",
		Picture:   "https://mock.test/avatar1.jpg",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	User2 = &core.User{
		ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		SubjectID: "seed_subject_2",
		Email:     "user2@mock.test",
		Name:      "Seed User Two",
		Picture:   "https://mock.test/avatar2.jpg",
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
)

// MockRepository is an in-memory user directory for tests. Create holds
// the lock across the existence check and the insert, so it gives the
// same single-survivor guarantee as the SQLite unique index.
type MockRepository struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*core.User
	bySubject map[string]uuid.UUID
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		byID:      make(map[uuid.UUID]*core.User),
		bySubject: make(map[string]uuid.UUID),
	}
}

// Seed inserts fixture users, replacing any with the same ids.
func (r *MockRepository) Seed(users ...*core.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range users {
		copied := *user
		r.byID[copied.ID] = &copied
		r.bySubject[copied.SubjectID] = copied.ID
	}
}

func (r *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MockRepository) FindBySubjectID(ctx context.Context, subjectID string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySubject[subjectID]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *MockRepository) Create(ctx context.Context, user *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySubject[user.SubjectID]; exists {
		return core.ErrAlreadyExists
	}
	if _, exists := r.byID[user.ID]; exists {
		return core.ErrAlreadyExists
	}

	copied := *user
	r.byID[copied.ID] = &copied
	r.bySubject[copied.SubjectID] = copied.ID
	return nil
}

// Delete removes a user. Tests use this to simulate an account deleted
// after a token was issued.
func (r *MockRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.bySubject, user.SubjectID)
	delete(r.byID, id)
}

// Count reports the number of stored users.
func (r *MockRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
