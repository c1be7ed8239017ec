package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	QuizCreated     Type = "quiz.created"
	QuizUpdated     Type = "quiz.updated"
	QuizPublished   Type = "quiz.published"
	QuizUnpublished Type = "quiz.unpublished"
	QuizDeleted     Type = "quiz.deleted"
)

// Event announces a change to a quiz. Payload deliberately omits quiz content.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	QuizID    string    `json:"quizId"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

func New(typ Type, quizID, ownerID string, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		QuizID:    quizID,
		OwnerID:   ownerID,
		Timestamp: at,
	}
}

// Publisher delivers quiz events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
