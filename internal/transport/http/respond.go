package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"quiz-studio-service/internal/domain"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error    string        `json:"error"`
	Reason   domain.Reason `json:"reason,omitempty"`
	Question *int          `json:"question,omitempty"`
	Option   *int          `json:"option,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body := errorBody{Error: verr.Error(), Reason: verr.Reason}
		if verr.Question >= 0 {
			body.Question = domain.IndexPtr(verr.Question)
		}
		if verr.Option >= 0 {
			body.Option = domain.IndexPtr(verr.Option)
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}

	status := statusOf(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		msg = "internal server error"
	case http.StatusUnauthorized:
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			msg = domain.ErrUnauthenticated.Error()
		}
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNothingToGrade), errors.Is(err, domain.ErrLastQuestion),
		errors.Is(err, domain.ErrMinimumOptions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.ValidationError{
			Reason: domain.ReasonMalformedInput, Question: -1, Option: -1,
			Detail: "request body too large or unreadable",
		}
	}
	return data, nil
}

// decodeInput decodes small request forms that are not quiz payloads.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
