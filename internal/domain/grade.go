package domain

// Unanswered marks a skipped position in an attempt.
const Unanswered = -1

// ReviewEntry describes how one question was answered.
type ReviewEntry struct {
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	SubmittedIndex *int     `json:"submittedIndex"`
	CorrectIndex   *int     `json:"correctIndex"`
	IsCorrect      bool     `json:"isCorrect"`
}

// GradeResult is the outcome of one attempt.
type GradeResult struct {
	Score      int           `json:"score"`
	Total      int           `json:"total"`
	Percentage int           `json:"percentage"`
	Review     []ReviewEntry `json:"review"`
}

// Grade scores an attempt. submitted holds one option index per question in
// quiz order; negative entries are unanswered, missing trailing entries count
// as unanswered and extra entries are ignored.
func Grade(q Quiz, submitted []int) (GradeResult, error) {
	total := len(q.Questions)
	if total == 0 {
		return GradeResult{}, ErrNothingToGrade
	}

	res := GradeResult{Total: total, Review: make([]ReviewEntry, total)}
	for i, question := range q.Questions {
		entry := ReviewEntry{
			QuestionText: question.Text,
			Options:      append([]string(nil), question.Options...),
		}
		if question.CorrectIndex != nil {
			entry.CorrectIndex = IndexPtr(*question.CorrectIndex)
		}
		if i < len(submitted) && submitted[i] >= 0 {
			entry.SubmittedIndex = IndexPtr(submitted[i])
		}
		entry.IsCorrect = entry.SubmittedIndex != nil && entry.CorrectIndex != nil &&
			*entry.SubmittedIndex == *entry.CorrectIndex
		if entry.IsCorrect {
			res.Score++
		}
		res.Review[i] = entry
	}
	res.Percentage = roundPercent(res.Score, total)
	return res, nil
}

// roundPercent computes round(100*score/total) with halves rounded up.
func roundPercent(score, total int) int {
	return (200*score + total) / (2 * total)
}
