package domain

import "strings"

// ValidateDraft checks a quiz before it is persisted. It returns nil when the
// draft is accepted and a *ValidationError naming the first violated rule otherwise.
//
// Rules run in order: title, question count, then each question in list order.
// Within a question an unset answer is reported first, then text, option
// count, option texts and finally an answer index that no longer fits.
func ValidateDraft(title string, questions []Question) error {
	if strings.TrimSpace(title) == "" {
		return reject(ReasonMissingTitle, -1, -1)
	}
	if len(questions) == 0 {
		return reject(ReasonNoQuestions, -1, -1)
	}
	for i, q := range questions {
		if err := validateQuestion(i, q); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePublish rejects publishing a quiz that still carries the editor's
// placeholder title. Drafts may keep it while unpublished.
func ValidatePublish(title string) error {
	if strings.TrimSpace(title) == DefaultTitle {
		return &ValidationError{Reason: ReasonMissingTitle, Question: -1, Option: -1, Detail: "replace the placeholder title before publishing"}
	}
	return nil
}

func validateQuestion(i int, q Question) error {
	// An unset answer must be reported as MissingCorrectAnswer whatever else is
	// wrong with the question, so this check stays ahead of the others.
	if q.CorrectIndex == nil {
		return reject(ReasonMissingCorrectAnswer, i, -1)
	}
	if strings.TrimSpace(q.Text) == "" {
		return reject(ReasonEmptyQuestionText, i, -1)
	}
	if len(q.Options) < MinOptions {
		return reject(ReasonTooFewOptions, i, -1)
	}
	for j, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return reject(ReasonEmptyOptionText, i, j)
		}
	}
	if !q.HasAnswer() {
		return reject(ReasonMissingCorrectAnswer, i, -1)
	}
	return nil
}
