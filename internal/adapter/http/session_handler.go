package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"campus-canteen/internal/adapter/logger"
	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type SessionHandler struct {
	session interfaces.SessionStore
	logger  logger.Logger
}

func NewSessionHandler(session interfaces.SessionStore, logger logger.Logger) *SessionHandler {
	return &SessionHandler{
		session: session,
		logger:  logger,
	}
}

type LoginRequest struct {
	Email string `json:"email"`
}

type AddCreditsRequest struct {
	Amount float64 `json:"amount"`
}

type UpdateUserRequest struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

// HandleSession routes /session, /session/login, /session/logout and
// /session/credits requests.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.current(w)
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateUser(w, r)
	case len(parts) == 2 && parts[1] == "login" && r.Method == http.MethodPost:
		h.login(w, r)
	case len(parts) == 2 && parts[1] == "logout" && r.Method == http.MethodPost:
		h.session.Logout()
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "credits" && r.Method == http.MethodPost:
		h.addCredits(w, r)
	default:
		respondError(w, "Not found", http.StatusNotFound, nil)
	}
}

func (h *SessionHandler) current(w http.ResponseWriter) {
	user, ok := h.session.Current()
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(w, "A valid email is required", http.StatusBadRequest, nil)
		return
	}

	user, err := h.session.Login(r.Context(), email)
	if err != nil {
		h.logger.Error("login_failed", "Login failed", "", map[string]interface{}{
			"email": email,
		}, err)
		respondError(w, "Login failed", http.StatusUnauthorized, nil)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *SessionHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if _, ok := h.session.Current(); !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	h.session.UpdateUser(domain.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
	})

	user, _ := h.session.Current()
	respondJSON(w, http.StatusOK, user)
}

func (h *SessionHandler) addCredits(w http.ResponseWriter, r *http.Request) {
	var req AddCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if req.Amount <= 0 {
		respondError(w, "Amount must be positive", http.StatusBadRequest, nil)
		return
	}
	if _, ok := h.session.Current(); !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	h.session.AddCredits(req.Amount)

	user, _ := h.session.Current()
	respondJSON(w, http.StatusOK, user)
}
