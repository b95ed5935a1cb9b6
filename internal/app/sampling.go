package app

import (
	"context"
	"fmt"
	"strings"

	"exam-prep-service/internal/domain"
	"github.com/google/uuid"
)

var placeholderSubjects = []string{
	"General Knowledge",
	"Tamil Nadu History",
	"Indian Polity",
	"Geography",
	"Science",
}

// sampleQuestions draws count questions from the pool. A pool that cannot
// fill the contest is replaced entirely by placeholders.
func (s *ContestService) sampleQuestions(ctx context.Context, count int) ([]domain.ContestQuestion, error) {
	pool, err := s.pool.AllQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	// A partial pool is discarded on purpose so every contest has count questions.
	if len(pool) < count {
		return placeholderQuestions(count), nil
	}

	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	s.mu.Lock()
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	out := make([]domain.ContestQuestion, 0, count)
	for _, q := range shuffled[:count] {
		out = append(out, embedQuestion(q))
	}
	return out, nil
}

func embedQuestion(q domain.Question) domain.ContestQuestion {
	index := q.CorrectAnswerIndex
	if q.CorrectAnswer != "" {
		index = resolveAnswerIndex(q.Options, q.CorrectAnswer)
	}
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return domain.ContestQuestion{
		ID:                 q.ID,
		Question:           q.Question,
		Options:            options,
		CorrectAnswer:      q.CorrectAnswer,
		CorrectAnswerIndex: index,
		Explanation:        q.Explanation,
		Difficulty:         q.Difficulty,
		Subject:            q.Subject,
	}
}

// resolveAnswerIndex matches answer against options ignoring case; -1 when absent.
func resolveAnswerIndex(options []string, answer string) int {
	answer = strings.TrimSpace(answer)
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), answer) {
			return i
		}
	}
	return -1
}

func placeholderQuestions(count int) []domain.ContestQuestion {
	out := make([]domain.ContestQuestion, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, domain.ContestQuestion{
			ID:                 "sample-" + uuid.NewString()[:8],
			Question:           fmt.Sprintf("Sample Question %d: What is the capital of Tamil Nadu?", i),
			Options:            []string{"Chennai", "Coimbatore", "Madurai", "Trichy"},
			CorrectAnswer:      "Chennai",
			CorrectAnswerIndex: 0,
			Explanation:        "Chennai is the capital city of Tamil Nadu.",
			Difficulty:         "EASY",
			Subject:            placeholderSubjects[i%len(placeholderSubjects)],
		})
	}
	return out
}
