package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizCache fronts a quiz repository with Redis so several instances share
// one read cache. Each quiz is stored as JSON under quiz:{id} with a TTL;
// writes go to the backing repository, bump quiz:{id}:gen and delete the key.
// A fill only lands when the generation it started from is still current, so
// a read racing a write on another instance cannot put the old copy back.
type QuizCache struct {
	app.QuizRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

// fillScript stores ARGV[2] under KEYS[1] unless the generation in KEYS[2]
// moved past ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if not gen then gen = '0' end
if gen ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

func NewQuizCache(client *redis.Client, next app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		QuizRepository: next,
		client:         client,
		ttl:            ttl,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, id); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, id); ok {
			return quiz, nil
		}
		gen, genErr := c.generation(ctx, id)
		quiz, err := c.QuizRepository.Get(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if genErr != nil {
			log.Printf("read cache generation of quiz %s: %v", id, genErr)
			return quiz, nil
		}
		if data, err := json.Marshal(quiz); err == nil {
			ttl := c.ttlWithJitter().Milliseconds()
			err := fillScript.Run(ctx, c.client, []string{c.key(id), c.genKey(id)}, gen, data, ttl).Err()
			if err != nil {
				log.Printf("cache quiz %s: %v", id, err)
			}
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Clone(), nil
}

func (c *QuizCache) Update(ctx context.Context, quiz domain.Quiz) error {
	if err := c.QuizRepository.Update(ctx, quiz); err != nil {
		return err
	}
	return c.invalidate(ctx, quiz.ID)
}

func (c *QuizCache) Delete(ctx context.Context, id string) error {
	if err := c.QuizRepository.Delete(ctx, id); err != nil {
		return err
	}
	return c.invalidate(ctx, id)
}

func (c *QuizCache) lookup(ctx context.Context, id string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached quiz %s: %v", id, err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(id))
		pipe.Expire(ctx, c.genKey(id), c.genTTL())
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		log.Printf("invalidate cached quiz %s: %v", id, err)
	}
	return nil
}

// generation returns the write counter of a quiz, "0" when it was never written.
func (c *QuizCache) generation(ctx context.Context, id string) (string, error) {
	gen, err := c.client.Get(ctx, c.genKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id
}

func (c *QuizCache) genKey(id string) string {
	return "quiz:" + id + ":gen"
}

// genTTL outlives any cached copy and any fill that could have read before the write.
func (c *QuizCache) genTTL() time.Duration {
	if c.ttl <= 0 {
		return time.Hour
	}
	return 2*c.ttl + time.Minute
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
