package app

import (
	"context"
	"time"

	"quiz-studio-service/internal/domain"
)

// QuizRepository persists quiz aggregates. Questions are stored inside their
// quiz document, so deleting a quiz removes them as well. Concurrent updates
// to one quiz are last-write-wins.
type QuizRepository interface {
	Create(ctx context.Context, quiz domain.Quiz) error
	// Get returns domain.ErrQuizNotFound for unknown ids.
	Get(ctx context.Context, id string) (domain.Quiz, error)
	// Update replaces the stored document; domain.ErrQuizNotFound if it is gone.
	Update(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
	// ListPublished and ListByOwner return newest quizzes first.
	ListPublished(ctx context.Context) ([]domain.Quiz, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
}

// UserRepository stores accounts. Emails are unique and stored lowercased.
type UserRepository interface {
	// Create returns domain.ErrEmailTaken when the email is registered.
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// RevocationStore remembers logged-out token ids until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
