package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/auth"
	"github.com/go-chi/chi/v5"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (auth.Session, error)
	Me(ctx context.Context, s auth.Session, token string) (string, error)
}

type AuthHandler struct {
	Auth    AuthService
	Cookies auth.Cookies
	Timeout time.Duration
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/api/auth/me", h.me)
	})
}

// RequireAuth rejects requests without a live session and stores the session
// in the request context for the handlers behind it. The cookie is re-issued
// so its lifetime slides with the server-side TTL.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withTimeout(r, h.Timeout)
		token := auth.TokenFromRequest(r)
		sess, err := h.Auth.Authenticate(ctx, token)
		cancel()
		if err != nil {
			writeError(w, err)
			return
		}
		h.Cookies.Set(w, token)
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess, token)))
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	token, err := h.Auth.Login(ctx, req.Username, req.Password)
	if errors.Is(err, apperr.ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, messageBody{Message: "Invalid credentials"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.Cookies.Set(w, token)
	writeJSON(w, http.StatusOK, messageBody{Message: "Logged in successfully"})
}

// logout always succeeds; without a session there is nothing to destroy.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	if err := h.Auth.Logout(ctx, auth.TokenFromRequest(r)); err != nil {
		log.Printf("logout: %v", err)
	}
	h.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, messageBody{Message: "Logged out successfully"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	sess, token, _ := auth.FromContext(r.Context())

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	name, err := h.Auth.Me(ctx, sess, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": name})
}
