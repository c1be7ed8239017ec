package domain

import "fmt"

// Draft is a quiz being composed in an editor. Selected is the question the
// editor currently shows; it is editor state and never persisted.
type Draft struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	Selected  int        `json:"selected"`
}

// NewDraft returns the editor's starting point: placeholder title and a single empty question.
func NewDraft() Draft {
	return Draft{
		Title:     DefaultTitle,
		Questions: []Question{emptyQuestion()},
	}
}

// DraftOf opens an existing quiz for editing.
func DraftOf(q Quiz) Draft {
	return Draft{Title: q.Title, Questions: cloneQuestions(q.Questions)}
}

func (d Draft) clone() Draft {
	out := d
	out.Questions = cloneQuestions(d.Questions)
	return out
}

// EditOp is one editor action. The set of operations is closed.
type EditOp interface {
	apply(d *Draft) error
}

type (
	AddQuestion    struct{}
	DeleteQuestion struct{ Question int }
	AddOption      struct{ Question int }
	DeleteOption   struct{ Question, Option int }
	SetCorrect     struct{ Question, Option int }
	SetQuestion    struct {
		Question int
		Text     string
	}
	SetOption struct {
		Question, Option int
		Text             string
	}
	SetTitle struct{ Text string }
)

// ApplyEdit applies op to a copy of d. A refused or out-of-range edit returns
// the draft unchanged together with the reason; d itself is never modified.
func ApplyEdit(d Draft, op EditOp) (Draft, error) {
	next := d.clone()
	if err := op.apply(&next); err != nil {
		return d, err
	}
	return next, nil
}

func (AddQuestion) apply(d *Draft) error {
	d.Questions = append(d.Questions, emptyQuestion())
	d.Selected = len(d.Questions) - 1
	return nil
}

func (op DeleteQuestion) apply(d *Draft) error {
	if err := checkQuestion(d, op.Question); err != nil {
		return err
	}
	if len(d.Questions) == 1 {
		return ErrLastQuestion
	}
	d.Questions = append(d.Questions[:op.Question], d.Questions[op.Question+1:]...)
	d.Selected = 0
	return nil
}

func (op AddOption) apply(d *Draft) error {
	if err := checkQuestion(d, op.Question); err != nil {
		return err
	}
	q := &d.Questions[op.Question]
	q.Options = append(q.Options, "")
	return nil
}

func (op DeleteOption) apply(d *Draft) error {
	if err := checkOption(d, op.Question, op.Option); err != nil {
		return err
	}
	q := &d.Questions[op.Question]
	if len(q.Options) <= MinOptions {
		return ErrMinimumOptions
	}
	q.Options = append(q.Options[:op.Option], q.Options[op.Option+1:]...)
	q.CorrectIndex = rebaseIndex(q.CorrectIndex, op.Option)
	return nil
}

func (op SetCorrect) apply(d *Draft) error {
	if err := checkOption(d, op.Question, op.Option); err != nil {
		return err
	}
	d.Questions[op.Question].CorrectIndex = IndexPtr(op.Option)
	return nil
}

func (op SetQuestion) apply(d *Draft) error {
	if err := checkQuestion(d, op.Question); err != nil {
		return err
	}
	d.Questions[op.Question].Text = op.Text
	return nil
}

func (op SetOption) apply(d *Draft) error {
	if err := checkOption(d, op.Question, op.Option); err != nil {
		return err
	}
	d.Questions[op.Question].Options[op.Option] = op.Text
	return nil
}

func (op SetTitle) apply(d *Draft) error {
	d.Title = op.Text
	return nil
}

// rebaseIndex keeps the answer pointing at the same option after the option
// at removed is deleted, or unsets it when that option was the answer.
func rebaseIndex(correct *int, removed int) *int {
	switch {
	case correct == nil:
		return nil
	case *correct == removed:
		return nil
	case *correct > removed:
		return IndexPtr(*correct - 1)
	default:
		return correct
	}
}

func checkQuestion(d *Draft, qi int) error {
	if qi < 0 || qi >= len(d.Questions) {
		return fmt.Errorf("question %d: %w", qi, ErrIndexOutOfRange)
	}
	return nil
}

func checkOption(d *Draft, qi, oi int) error {
	if err := checkQuestion(d, qi); err != nil {
		return err
	}
	if oi < 0 || oi >= len(d.Questions[qi].Options) {
		return fmt.Errorf("question %d option %d: %w", qi, oi, ErrIndexOutOfRange)
	}
	return nil
}

func emptyQuestion() Question {
	return Question{Options: []string{"", ""}}
}
