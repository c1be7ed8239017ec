package domain

import "time"

const (
	// DefaultTitle is shown for a fresh draft. Unpublished drafts may be saved
	// with it; publishing requires a real title (see ValidatePublish).
	DefaultTitle = "Untitled Quiz"
	// DefaultProfilePicture is assigned to users that never uploaded one.
	DefaultProfilePicture = "https://www.gravatar.com/avatar/00000000000000000000000000000000?d=mp&f=y"
	// MinOptions is the smallest option count a question may have.
	MinOptions = 2
)

// Question models a single-answer multiple choice question.
// Options are plain strings identified by their position.
type Question struct {
	ID           string   `json:"id" bson:"id"`
	Text         string   `json:"text" bson:"text"`
	Options      []string `json:"options" bson:"options"`
	CorrectIndex *int     `json:"correctIndex" bson:"correctIndex"` // nil while the author has not picked one
}

// HasAnswer reports whether CorrectIndex is set and points at an existing option.
func (q Question) HasAnswer() bool {
	return q.CorrectIndex != nil && *q.CorrectIndex >= 0 && *q.CorrectIndex < len(q.Options)
}

// Quiz is the aggregate root. Questions have no identity outside of it.
type Quiz struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Questions   []Question `json:"questions" bson:"questions"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	IsPublished bool       `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate questions without aliasing.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = cloneQuestions(q.Questions)
	return out
}

// User is the account behind a requester identity.
type User struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	PasswordHash   string    `json:"-" bson:"passwordHash"`
	ProfilePicture string    `json:"profilePicture" bson:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// Profile is the public projection of a User.
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, ProfilePicture: u.ProfilePicture}
}

// IndexPtr is a convenience for building questions with a chosen answer.
func IndexPtr(i int) *int {
	return &i
}

func cloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	if q.CorrectIndex != nil {
		out.CorrectIndex = IndexPtr(*q.CorrectIndex)
	}
	return out
}
