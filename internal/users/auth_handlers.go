package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"tunevault/internal/auth"
	"tunevault/middleware"

	"github.com/charmbracelet/log"
)

// Credentials is the login/register request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandlers serves the open authentication endpoints
type AuthHandlers struct {
	Service *UserService
	Tokens  *auth.Service
	logger  *log.Logger
}

// NewAuthHandlers creates the authentication handler set
func NewAuthHandlers(service *UserService, tokens *auth.Service, logger *log.Logger) *AuthHandlers {
	return &AuthHandlers{Service: service, Tokens: tokens, logger: logger}
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request format"})
		return
	}

	user, err := h.Service.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid username or password"})
			return
		}
		h.logger.Error("login failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	tokenString, err := h.Tokens.Issue(user)
	if err != nil {
		h.logger.Error("token issuance failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to generate token"})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": tokenString,
		"user":  user,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request format"})
		return
	}
	if creds.Username == "" || creds.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "username and password are required"})
		return
	}

	user, err := h.Service.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken),
			errors.Is(err, ErrInvalidUsername),
			errors.Is(err, ErrShortUsername),
			errors.Is(err, ErrLongUsername),
			errors.Is(err, ErrShortPassword),
			errors.Is(err, ErrLongPassword):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		default:
			h.logger.Error("registration failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		}
		return
	}

	h.logger.Info("user registered", "username", user.Username, "id", user.ID)
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Verify handles GET /api/auth/verify. The endpoint itself is open; it
// reports whether the optional bearer token is still valid.
func (h *AuthHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tokenStr, ok := middleware.BearerToken(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
		return
	}

	claims, err := h.Tokens.Verify(tokenStr)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": map[string]interface{}{
			"id":       claims.UserID,
			"username": claims.Username,
			"is_admin": claims.IsAdmin,
		},
	})
}
