package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/domain"
)

func TestCachedQuizRepositoryCaches(t *testing.T) {
	store := &countingStore{QuizRepository: NewQuizStoreWith(sampleQuiz())}
	repo := NewCachedQuizRepository(store, time.Minute)

	if _, err := repo.Get(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if store.gets != 1 {
		t.Fatalf("expected store once, got %d", store.gets)
	}

	if _, err := repo.Get(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if store.gets != 1 {
		t.Fatalf("expected cache hit, store gets %d", store.gets)
	}
}

func TestCachedQuizRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{QuizRepository: NewQuizStoreWith(sampleQuiz())}
	repo := NewCachedQuizRepository(store, time.Minute)

	quiz, _ := repo.Get(ctx, "quiz-1")
	quiz.Title = "Renamed"
	if err := repo.Update(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "Renamed" || store.gets != 2 {
		t.Fatalf("expected reload with new title, got %q after %d gets", got.Title, store.gets)
	}

	if err := repo.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCachedQuizRepositoryExpires(t *testing.T) {
	now := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	store := &countingStore{QuizRepository: NewQuizStoreWith(sampleQuiz())}
	repo := NewCachedQuizRepository(store, time.Minute)
	repo.clock = func() time.Time { return now }

	_, _ = repo.Get(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.Get(context.Background(), "quiz-1")
	if store.gets != 2 {
		t.Fatalf("expected expired entry to reload, store gets %d", store.gets)
	}
}

func TestCachedQuizRepositoryReturnsCopies(t *testing.T) {
	repo := NewCachedQuizRepository(NewQuizStoreWith(sampleQuiz()), time.Minute)
	first, _ := repo.Get(context.Background(), "quiz-1")
	first.Questions[0].Options[0] = "mutated"

	second, _ := repo.Get(context.Background(), "quiz-1")
	if second.Questions[0].Options[0] != "3" {
		t.Fatalf("cached quiz was mutated through a returned copy")
	}
}

type countingStore struct {
	app.QuizRepository
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	s.gets++
	return s.QuizRepository.Get(ctx, id)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:      "quiz-1",
		Title:   "Arithmetic",
		OwnerID: "u1",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Text:         "What is 2 + 2?",
				Options:      []string{"3", "4"},
				CorrectIndex: domain.IndexPtr(1),
			},
		},
	}
}
