package app

import (
	"context"
	"fmt"

	"quiz-studio-service/internal/domain"
)

// PlayQuestion is what a player sees: the prompt and options, never the answer.
type PlayQuestion struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// PlaySession walks one player through a quiz question by question.
// It belongs to a single connection and is not safe for concurrent use.
type PlaySession struct {
	quiz    domain.Quiz
	answers []int
}

// StartPlay opens a play session on a quiz the requester may read.
func (s *QuizService) StartPlay(ctx context.Context, requesterID, quizID string) (*PlaySession, error) {
	quiz, err := s.GetQuiz(ctx, requesterID, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNothingToGrade
	}
	return &PlaySession{quiz: quiz.Clone(), answers: make([]int, 0, len(quiz.Questions))}, nil
}

// QuizID identifies the quiz being played.
func (p *PlaySession) QuizID() string {
	return p.quiz.ID
}

// Current returns the next unanswered question, or false once every question was answered.
func (p *PlaySession) Current() (PlayQuestion, bool) {
	i := len(p.answers)
	if i >= len(p.quiz.Questions) {
		return PlayQuestion{}, false
	}
	q := p.quiz.Questions[i]
	return PlayQuestion{
		Index:   i,
		Total:   len(p.quiz.Questions),
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
	}, true
}

// Answer records the choice for the current question; nil skips it.
// It reports whether the session is complete afterwards.
func (p *PlaySession) Answer(choice *int) (bool, error) {
	q, ok := p.Current()
	if !ok {
		return true, nil
	}
	idx := domain.Unanswered
	if choice != nil {
		if *choice < 0 || *choice >= len(q.Options) {
			return false, fmt.Errorf("option %d: %w", *choice, domain.ErrIndexOutOfRange)
		}
		idx = *choice
	}
	p.answers = append(p.answers, idx)
	return len(p.answers) == len(p.quiz.Questions), nil
}

// Finish grades what was answered so far; remaining questions count as unanswered.
func (p *PlaySession) Finish() (domain.GradeResult, error) {
	return grade(p.quiz, p.answers)
}
