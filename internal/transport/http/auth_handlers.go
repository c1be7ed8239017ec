package http

import (
	"net/http"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var in app.SignupInput
	if err := decodeInput(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.users.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeInput(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, h.sessionCookie(res.Token, res.ExpiresAt))
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		if err := h.users.Logout(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Me(r.Context(), auth.RequesterID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *handlers) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
