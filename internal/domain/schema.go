package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

var schema = validator.New()

// DraftInput is a quiz payload that passed the strict schema check.
// It still has to go through ValidateDraft.
type DraftInput struct {
	Title       string
	Questions   []Question
	IsPublished bool
}

// PatchInput carries the independently updatable quiz fields; nil means unchanged.
type PatchInput struct {
	Title       *string
	Questions   []Question
	IsPublished *bool
}

// HasContent reports whether the patch touches title or questions.
func (p PatchInput) HasContent() bool {
	return p.Title != nil || p.Questions != nil
}

type draftSchema struct {
	Title       *string          `json:"title" validate:"required"`
	Questions   []questionSchema `json:"questions" validate:"required,dive"`
	IsPublished *bool            `json:"isPublished"`
}

type patchSchema struct {
	Title       *string           `json:"title"`
	Questions   *[]questionSchema `json:"questions"`
	IsPublished *bool             `json:"isPublished"`
}

type questionSchema struct {
	ID           string          `json:"id"`
	Text         *string         `json:"text" validate:"required"`
	Options      []string        `json:"options" validate:"required"`
	CorrectIndex json.RawMessage `json:"correctIndex"`
}

// ParseDraft decodes a create payload. Unknown fields, wrong JSON types,
// missing title/questions/text/options and non-integer answer indices all map
// to a MalformedInput rejection before any validation rule runs.
func ParseDraft(data []byte) (DraftInput, error) {
	var raw draftSchema
	if err := decodeStrict(data, &raw); err != nil {
		return DraftInput{}, err
	}
	if err := schema.Struct(raw); err != nil {
		return DraftInput{}, malformed(describeSchemaError(err))
	}
	questions, err := convertQuestions(raw.Questions)
	if err != nil {
		return DraftInput{}, err
	}
	in := DraftInput{Title: *raw.Title, Questions: questions}
	if raw.IsPublished != nil {
		in.IsPublished = *raw.IsPublished
	}
	return in, nil
}

// ParsePatch decodes an update payload where every field is optional.
func ParsePatch(data []byte) (PatchInput, error) {
	var raw patchSchema
	if err := decodeStrict(data, &raw); err != nil {
		return PatchInput{}, err
	}
	in := PatchInput{Title: raw.Title, IsPublished: raw.IsPublished}
	if raw.Questions != nil {
		for _, q := range *raw.Questions {
			if err := schema.Struct(q); err != nil {
				return PatchInput{}, malformed(describeSchemaError(err))
			}
		}
		questions, err := convertQuestions(*raw.Questions)
		if err != nil {
			return PatchInput{}, err
		}
		if questions == nil {
			questions = []Question{}
		}
		in.Questions = questions
	}
	return in, nil
}

// ParseAnswerIndex decodes a nullable option index. Absent and null both mean unset.
func ParseAnswerIndex(raw json.RawMessage) (*int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var idx int
	if err := json.Unmarshal(trimmed, &idx); err != nil {
		return nil, malformed("index must be an integer or null")
	}
	return &idx, nil
}

func convertQuestions(in []questionSchema) ([]Question, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		idx, err := ParseAnswerIndex(q.CorrectIndex)
		if err != nil {
			verr := err.(*ValidationError)
			verr.Question = i
			return nil, verr
		}
		out[i] = Question{
			ID:           q.ID,
			Text:         *q.Text,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: idx,
		}
	}
	return out, nil
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return malformed(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return malformed("unexpected data after payload")
	}
	return nil
}

func describeSchemaError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" is "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}

func malformed(detail string) *ValidationError {
	return &ValidationError{Reason: ReasonMalformedInput, Question: -1, Option: -1, Detail: detail}
}
