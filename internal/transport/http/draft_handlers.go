package http

import (
	"errors"
	"fmt"
	"net/http"

	"quiz-studio-service/internal/domain"
)

// editOp is the wire form of an editor action. Which index fields matter
// depends on Type.
type editOp struct {
	Type     string `json:"type"`
	Question int    `json:"question"`
	Option   int    `json:"option"`
	Text     string `json:"text"`
}

type editRequest struct {
	Draft domain.Draft `json:"draft"`
	Op    editOp       `json:"op"`
}

type editResponse struct {
	Draft domain.Draft `json:"draft"`
	Error string       `json:"error,omitempty"`
}

func (op editOp) toDomain() (domain.EditOp, error) {
	switch op.Type {
	case "addQuestion":
		return domain.AddQuestion{}, nil
	case "deleteQuestion":
		return domain.DeleteQuestion{Question: op.Question}, nil
	case "addOption":
		return domain.AddOption{Question: op.Question}, nil
	case "deleteOption":
		return domain.DeleteOption{Question: op.Question, Option: op.Option}, nil
	case "setCorrect":
		return domain.SetCorrect{Question: op.Question, Option: op.Option}, nil
	case "setQuestion":
		return domain.SetQuestion{Question: op.Question, Text: op.Text}, nil
	case "setOption":
		return domain.SetOption{Question: op.Question, Option: op.Option, Text: op.Text}, nil
	case "setTitle":
		return domain.SetTitle{Text: op.Text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown edit %q", domain.ErrInvalidInput, op.Type)
	}
}

func (h *handlers) newDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quizzes.NewDraft())
}

// editDraft applies one action to the draft sent by the editor. Refused
// actions answer 422 with the draft unchanged so the editor can keep it.
func (h *handlers) editDraft(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeInput(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	op, err := req.Op.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	next, err := h.quizzes.EditDraft(req.Draft, op)
	switch {
	case errors.Is(err, domain.ErrLastQuestion), errors.Is(err, domain.ErrMinimumOptions):
		writeJSON(w, http.StatusUnprocessableEntity, editResponse{Draft: next, Error: err.Error()})
	case err != nil:
		writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, editResponse{Draft: next})
	}
}
