package api

import (
	"net/http"
	"time"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// AuthHandler handles registration and sessions.
type AuthHandler struct {
	deps AuthDependencies
	log  logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies, log logger.Logger) *AuthHandler {
	return &AuthHandler{deps: deps, log: log}
}

// HandleRegister handles POST /register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var in model.RegisterInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	u, err := h.deps.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type sessionResponse struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userID"`
	DisplayName string    `json:"displayName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// HandleSignIn handles POST /sessions. The token is returned in the body
// and set as an HTTP-only cookie.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.sign_in"
	var in model.SignInInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	sess, err := h.deps.SignIn(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:       sess.Token,
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		ExpiresAt:   sess.ExpiresAt,
	})
}

// HandleSignOut handles DELETE /sessions.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	const op = "api.sign_out"
	if err := h.deps.SignOut(r.Context(), sessionToken(r)); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}
