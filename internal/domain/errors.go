package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound is returned for unknown quiz ids and for private quizzes the requester may not see.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUnauthenticated is returned when an operation needs a requester identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the requester does not own the quiz.
	ErrForbidden = errors.New("not authorized")
	// ErrUserNotFound indicates the user account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on signup with an email that is already registered.
	ErrEmailTaken = errors.New("email is already in use")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenRevoked is returned for tokens invalidated by logout.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrInvalidInput wraps request fields that fail basic checks outside the quiz validator.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLastQuestion refuses deleting the only question of a draft.
	ErrLastQuestion = errors.New("a quiz must keep at least one question")
	// ErrMinimumOptions refuses deleting an option from a question with two options.
	ErrMinimumOptions = errors.New("a question must keep at least two options")
	// ErrIndexOutOfRange is returned by edits addressing a missing question or option.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNothingToGrade is a precondition failure: a quiz without questions cannot be graded.
	ErrNothingToGrade = errors.New("cannot grade a quiz without questions")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid quiz")
)

// Reason discriminates why a draft was rejected.
type Reason string

const (
	ReasonMissingTitle         Reason = "MissingTitle"
	ReasonNoQuestions          Reason = "NoQuestions"
	ReasonEmptyQuestionText    Reason = "EmptyQuestionText"
	ReasonTooFewOptions        Reason = "TooFewOptions"
	ReasonEmptyOptionText      Reason = "EmptyOptionText"
	ReasonMissingCorrectAnswer Reason = "MissingCorrectAnswer"
	ReasonMalformedInput       Reason = "MalformedInput"
)

// ValidationError is the typed rejection returned by the validator.
// Question and Option are zero-based positions, -1 when not applicable.
type ValidationError struct {
	Reason   Reason
	Question int
	Option   int
	Detail   string
}

func (e *ValidationError) Error() string {
	msg := reasonMessages[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	switch {
	case e.Option >= 0:
		msg = fmt.Sprintf("question %d option %d: %s", e.Question+1, e.Option+1, msg)
	case e.Question >= 0:
		msg = fmt.Sprintf("question %d: %s", e.Question+1, msg)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var reasonMessages = map[Reason]string{
	ReasonMissingTitle:         "quiz title is required",
	ReasonNoQuestions:          "quiz must have at least one question",
	ReasonEmptyQuestionText:    "question must have text",
	ReasonTooFewOptions:        "question must have at least 2 options",
	ReasonEmptyOptionText:      "option must have text",
	ReasonMissingCorrectAnswer: "question must have a correct answer",
	ReasonMalformedInput:       "malformed quiz payload",
}

func reject(reason Reason, question, option int) *ValidationError {
	return &ValidationError{Reason: reason, Question: question, Option: option}
}

// ReasonOf extracts the rejection reason, or "" when err is not a validation failure.
func ReasonOf(err error) Reason {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ""
}
