package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"quiz-studio-service/internal/domain"
	"quiz-studio-service/internal/event"
	"quiz-studio-service/internal/metrics"

	"github.com/google/uuid"
)

// QuizService contains the quiz authoring and playing use cases.
type QuizService struct {
	quizzes QuizRepository
	events  event.Publisher
	now     func() time.Time
	newID   func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithPublisher sends lifecycle events to p instead of the process log.
func WithPublisher(p event.Publisher) Option {
	return func(s *QuizService) { s.events = p }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator replaces uuid generation for quiz and question ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *QuizService) { s.newID = gen }
}

func NewQuizService(quizzes QuizRepository, opts ...Option) *QuizService {
	s := &QuizService{
		quizzes: quizzes,
		events:  event.NewLogPublisher(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDraft returns the starting point of the quiz editor.
func (s *QuizService) NewDraft() domain.Draft {
	return domain.NewDraft()
}

// EditDraft applies one editor action to a draft without persisting anything.
func (s *QuizService) EditDraft(d domain.Draft, op domain.EditOp) (domain.Draft, error) {
	return domain.ApplyEdit(d, op)
}

// CreateQuiz validates and stores a new quiz owned by the requester.
func (s *QuizService) CreateQuiz(ctx context.Context, requesterID string, in domain.DraftInput) (domain.Quiz, error) {
	if err := domain.RequireIdentity(requesterID); err != nil {
		return domain.Quiz{}, err
	}
	title := strings.TrimSpace(in.Title)
	questions := s.prepareQuestions(in.Questions)
	if err := s.validate(title, questions); err != nil {
		return domain.Quiz{}, err
	}
	if in.IsPublished {
		if err := s.validatePublish(title); err != nil {
			return domain.Quiz{}, err
		}
	}

	now := s.now()
	quiz := domain.Quiz{
		ID:          s.newID(),
		Title:       title,
		Questions:   questions,
		OwnerID:     requesterID,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	metrics.QuizMutations.WithLabelValues("create").Inc()
	s.publish(ctx, event.QuizCreated, quiz)
	if quiz.IsPublished {
		s.publish(ctx, event.QuizPublished, quiz)
	}
	return quiz, nil
}

// GetQuiz returns a quiz the requester may read. Hidden drafts look exactly like missing quizzes.
func (s *QuizService) GetQuiz(ctx context.Context, requesterID, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := domain.AuthorizeRead(quiz, requesterID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ListPublished is the discovery feed; it is the same for every requester.
func (s *QuizService) ListPublished(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published quizzes: %w", err)
	}
	return domain.Published(quizzes), nil
}

// ListMine returns every quiz the requester authored, drafts included.
func (s *QuizService) ListMine(ctx context.Context, requesterID string) ([]domain.Quiz, error) {
	if err := domain.RequireIdentity(requesterID); err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListByOwner(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes of %s: %w", requesterID, err)
	}
	return domain.OwnedBy(quizzes, requesterID), nil
}

// UpdateQuiz applies a replace-style patch. Content changes are validated
// against the merged quiz; toggling publication alone is always allowed.
func (s *QuizService) UpdateQuiz(ctx context.Context, requesterID, quizID string, patch domain.PatchInput) (domain.Quiz, error) {
	if err := domain.RequireIdentity(requesterID); err != nil {
		return domain.Quiz{}, err
	}
	current, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := domain.AuthorizeWrite(current, requesterID); err != nil {
		return domain.Quiz{}, err
	}

	next := current.Clone()
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Questions != nil {
		next.Questions = s.prepareQuestions(patch.Questions)
	}
	if patch.HasContent() {
		if err := s.validate(next.Title, next.Questions); err != nil {
			return domain.Quiz{}, err
		}
	}
	if patch.IsPublished != nil {
		next.IsPublished = *patch.IsPublished
	}
	if next.IsPublished {
		if err := s.validatePublish(next.Title); err != nil {
			return domain.Quiz{}, err
		}
	}
	next.UpdatedAt = s.now()

	if err := s.quizzes.Update(ctx, next); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz %s: %w", quizID, err)
	}
	metrics.QuizMutations.WithLabelValues("update").Inc()
	if patch.HasContent() {
		s.publish(ctx, event.QuizUpdated, next)
	}
	switch {
	case next.IsPublished && !current.IsPublished:
		s.publish(ctx, event.QuizPublished, next)
	case !next.IsPublished && current.IsPublished:
		s.publish(ctx, event.QuizUnpublished, next)
	}
	return next, nil
}

// SetPublished toggles the publication flag.
func (s *QuizService) SetPublished(ctx context.Context, requesterID, quizID string, published bool) (domain.Quiz, error) {
	return s.UpdateQuiz(ctx, requesterID, quizID, domain.PatchInput{IsPublished: &published})
}

// DeleteQuiz removes a quiz together with its questions.
func (s *QuizService) DeleteQuiz(ctx context.Context, requesterID, quizID string) error {
	if err := domain.RequireIdentity(requesterID); err != nil {
		return err
	}
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return err
	}
	if err := domain.AuthorizeWrite(quiz, requesterID); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete quiz %s: %w", quizID, err)
	}
	metrics.QuizMutations.WithLabelValues("delete").Inc()
	s.publish(ctx, event.QuizDeleted, quiz)
	return nil
}

// GradeAttempt scores answers against a quiz the requester may read.
// Attempts are not stored.
func (s *QuizService) GradeAttempt(ctx context.Context, requesterID, quizID string, answers []int) (domain.GradeResult, error) {
	quiz, err := s.GetQuiz(ctx, requesterID, quizID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	return grade(quiz, answers)
}

func grade(quiz domain.Quiz, answers []int) (domain.GradeResult, error) {
	res, err := domain.Grade(quiz, answers)
	if err != nil {
		return domain.GradeResult{}, err
	}
	metrics.AttemptsGraded.Inc()
	return res, nil
}

func (s *QuizService) validate(title string, questions []domain.Question) error {
	if err := domain.ValidateDraft(title, questions); err != nil {
		metrics.ValidationRejections.WithLabelValues(string(domain.ReasonOf(err))).Inc()
		return err
	}
	return nil
}

func (s *QuizService) validatePublish(title string) error {
	if err := domain.ValidatePublish(title); err != nil {
		metrics.ValidationRejections.WithLabelValues(string(domain.ReasonOf(err))).Inc()
		return err
	}
	return nil
}

// prepareQuestions copies the questions, trims prompts and gives every
// question a unique id. Ids sent by the client are kept when unique.
func (s *QuizService) prepareQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, q := range in {
		q = q.Clone()
		q.Text = strings.TrimSpace(q.Text)
		if _, dup := seen[q.ID]; q.ID == "" || dup {
			q.ID = s.newID()
		}
		seen[q.ID] = struct{}{}
		out[i] = q
	}
	return out
}

func (s *QuizService) publish(ctx context.Context, typ event.Type, quiz domain.Quiz) {
	if err := s.events.Publish(ctx, event.New(typ, quiz.ID, quiz.OwnerID, s.now())); err != nil {
		log.Printf("publish %s for quiz %s failed: %v", typ, quiz.ID, err)
	}
}
