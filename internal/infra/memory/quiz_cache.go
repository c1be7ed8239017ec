package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CachedQuizRepository keeps quizzes read by id in process memory with a TTL
// to avoid repeated backing store hits. Writes go straight through and drop
// the cached entry.
type CachedQuizRepository struct {
	app.QuizRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCachedQuizRepository(next app.QuizRepository, ttl time.Duration) *CachedQuizRepository {
	return &CachedQuizRepository{
		QuizRepository: next,
		ttl:            ttl,
		clock:          time.Now,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:          make(map[string]cachedQuiz),
	}
}

func (r *CachedQuizRepository) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := r.lookup(id); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		if quiz, ok := r.lookup(id); ok {
			return quiz, nil
		}
		quiz, err := r.QuizRepository.Get(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.mu.Lock()
		r.cache[id] = cachedQuiz{quiz: quiz.Clone(), expiresAt: r.clock().Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Clone(), nil
}

func (r *CachedQuizRepository) Update(ctx context.Context, quiz domain.Quiz) error {
	r.invalidate(quiz.ID)
	err := r.QuizRepository.Update(ctx, quiz)
	r.invalidate(quiz.ID)
	return err
}

func (r *CachedQuizRepository) Delete(ctx context.Context, id string) error {
	err := r.QuizRepository.Delete(ctx, id)
	r.invalidate(id)
	return err
}

func (r *CachedQuizRepository) lookup(id string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[id]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz.Clone(), true
}

func (r *CachedQuizRepository) invalidate(id string) {
	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()
}

func (r *CachedQuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
