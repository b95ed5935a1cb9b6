package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedQuestionPool keeps a TTL copy of a slower pool (database backed) so
// bursts of contest creation read it once.
type CachedQuestionPool struct {
	source app.QuestionPool
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	loaded    bool
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedQuestionPool(source app.QuestionPool, ttl time.Duration) *CachedQuestionPool {
	return &CachedQuestionPool{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *CachedQuestionPool) AllQuestions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := p.cached(p.clock()); ok {
		return qs, nil
	}

	result, err, _ := p.sf.Do("pool", func() (interface{}, error) {
		now := p.clock()
		if qs, ok := p.cached(now); ok {
			return qs, nil
		}

		qs, err := p.source.AllQuestions(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.loaded = true
		p.questions = qs
		p.expiresAt = now.Add(p.ttlWithJitter())
		p.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (p *CachedQuestionPool) cached(now time.Time) ([]domain.Question, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.loaded && p.expiresAt.After(now) {
		return p.questions, true
	}
	return nil, false
}

// ttlWithJitter must be called with mu held.
func (p *CachedQuestionPool) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}

// StaticQuestionPool is a fixed pool backed by a slice (useful for tests/demos).
type StaticQuestionPool struct {
	questions []domain.Question
}

func NewStaticQuestionPool(questions []domain.Question) *StaticQuestionPool {
	return &StaticQuestionPool{questions: questions}
}

func (p *StaticQuestionPool) AllQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(p.questions))
	copy(out, p.questions)
	return out, nil
}
