package http

import (
	"errors"
	"net/http"
	"time"

	"condoflow/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil || !s.sessions.Enabled() {
		writeError(w, http.StatusNotFound, "Autenticação desabilitada.")
		return
	}

	var payload loginRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	token, err := s.sessions.Login(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Credenciais inválidas.")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.sessions.TTL()),
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
