package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-studio-service/internal/domain"
)

// QuizStore is an in-process implementation of app.QuizRepository.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

// NewQuizStoreWith seeds the store (useful for tests/demos).
func NewQuizStoreWith(quizzes ...domain.Quiz) *QuizStore {
	s := NewQuizStore()
	for _, q := range quizzes {
		s.quizzes[q.ID] = q.Clone()
	}
	return s
}

func (s *QuizStore) Create(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz.Clone()
	return nil
}

func (s *QuizStore) Get(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz.Clone(), nil
}

func (s *QuizStore) Update(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz.Clone()
	return nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

func (s *QuizStore) ListPublished(_ context.Context) ([]domain.Quiz, error) {
	return s.list(func(q domain.Quiz) bool { return q.IsPublished }), nil
}

func (s *QuizStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	return s.list(func(q domain.Quiz) bool { return q.OwnerID == ownerID }), nil
}

func (s *QuizStore) list(keep func(domain.Quiz) bool) []domain.Quiz {
	s.mu.RLock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		if keep(q) {
			out = append(out, q.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
