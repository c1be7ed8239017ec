package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/domain"
	"quiz-studio-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{QuizRepository: memory.NewQuizStoreWith(sampleQuiz())}
	cache := NewQuizCache(newClient(mr), store, time.Minute)

	quiz, err := cache.Get(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if store.gets != 1 {
		t.Fatalf("expected store called once, got %d", store.gets)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz:quiz-1 key")
	}

	// Second call should hit cache, store not incremented.
	again, _ := cache.Get(context.Background(), "quiz-1")
	if store.gets != 1 {
		t.Fatalf("expected cache hit, store gets=%d", store.gets)
	}
	if again.Title != quiz.Title || *again.Questions[0].CorrectIndex != 1 {
		t.Fatalf("cached quiz differs: %+v", again)
	}
}

func TestQuizCacheInvalidatesOnWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewQuizCache(newClient(mr), memory.NewQuizStoreWith(sampleQuiz()), time.Minute)

	quiz, _ := cache.Get(ctx, "quiz-1")
	quiz.IsPublished = true
	if err := cache.Update(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	if mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected key dropped after update")
	}
	got, _ := cache.Get(ctx, "quiz-1")
	if !got.IsPublished {
		t.Fatalf("expected fresh copy after update")
	}

	if err := cache.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.Get(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuizCacheSetsTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewQuizCache(newClient(mr), memory.NewQuizStoreWith(sampleQuiz()), time.Minute)
	_, _ = cache.Get(context.Background(), "quiz-1")

	ttl := mr.TTL("quiz:quiz-1")
	if ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl within jitter bounds, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected cached quiz to expire")
	}
}

func TestQuizCacheDropsFillRacingRemoteWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	published := sampleQuiz()
	published.IsPublished = true
	shared := memory.NewQuizStoreWith(published)

	slow := &pausingStore{QuizRepository: shared, read: make(chan struct{}), release: make(chan struct{})}
	readerSide := app.NewQuizService(NewQuizCache(newClient(mr), slow, time.Minute))
	writerSide := app.NewQuizService(NewQuizCache(newClient(mr), shared, time.Minute))

	done := make(chan error, 1)
	go func() {
		_, err := readerSide.GetQuiz(ctx, "stranger", "quiz-1")
		done <- err
	}()
	<-slow.read

	if _, err := writerSide.SetPublished(ctx, "u1", "quiz-1", false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("read that started before the write: %v", err)
	}

	if mr.Exists("quiz:quiz-1") {
		t.Fatalf("stale copy must not be cached after a newer write")
	}
	for _, svc := range []*app.QuizService{readerSide, writerSide} {
		if _, err := svc.GetQuiz(ctx, "stranger", "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("unpublished quiz must be hidden, got %v", err)
		}
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected a fresh fill once no write is in flight")
	}
}

// pausingStore blocks its first Get after reading, until release is closed.
type pausingStore struct {
	app.QuizRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := s.QuizRepository.Get(ctx, id)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return quiz, err
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

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
