package http

import (
	"encoding/json"
	"net/http"

	"quiz-studio-service/internal/auth"
	"quiz-studio-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type gradeRequest struct {
	Answers []json.RawMessage `json:"answers"`
}

func (h *handlers) listPublished(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListPublished(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *handlers) listMine(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListMine(r.Context(), auth.RequesterID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *handlers) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), auth.RequesterID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *handlers) createQuiz(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())
	if err := domain.RequireIdentity(requester); err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := domain.ParseDraft(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quiz, err := h.quizzes.CreateQuiz(r.Context(), requester, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *handlers) updateQuiz(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())
	if err := domain.RequireIdentity(requester); err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := domain.ParsePatch(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quiz, err := h.quizzes.UpdateQuiz(r.Context(), requester, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *handlers) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.DeleteQuiz(r.Context(), auth.RequesterID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) gradeAttempt(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeInput(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	answers := make([]int, len(req.Answers))
	for i, raw := range req.Answers {
		idx, err := domain.ParseAnswerIndex(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		answers[i] = domain.Unanswered
		if idx != nil {
			answers[i] = *idx
		}
	}
	res, err := h.quizzes.GradeAttempt(r.Context(), auth.RequesterID(r.Context()), chi.URLParam(r, "id"), answers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
