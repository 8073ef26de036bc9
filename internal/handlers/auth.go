package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitstack/apiserver/internal/audit"
	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/internal/token"
	"github.com/fitstack/apiserver/types"
)

// AuditRecorder persists authentication events. Recording is
// best-effort; failures are logged and never surface to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event) error
}

// AuthHandler provides registration, login, and the authentication
// middleware used by every protected route.
type AuthHandler struct {
	userService *services.UserService
	issuer      *token.Issuer
	auditor     AuditRecorder
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, issuer *token.Issuer, auditor AuditRecorder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		issuer:      issuer,
		auditor:     auditor,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(RequireAuth(handler.issuer)).Get("/me", handler.Me)
}

// RequireAuth enforces bearer-token authentication and injects the
// resolved user id into the request context. It is a pure function of
// the header value and the issuer's clock; no state is shared between
// requests.
func RequireAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized: token missing")
				return
			}

			userID, err := issuer.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrTokenMissing) {
					writeError(w, http.StatusUnauthorized, "unauthorized: token missing")
					return
				}
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates a new user account and returns a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userService.GetByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusBadRequest, "username already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("register: username lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "user with this email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("register: email lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("register: hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		h.logger.Error("register: create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.recordAudit(r, audit.Event{
		Kind:    audit.KindRegister,
		UserID:  user.ID,
		Subject: user.Email,
		Success: true,
	})

	signed, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.logger.Error("register: token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: signed, User: user})
}

// Login verifies credentials and returns a bearer token. The failure
// message never reveals which of email or password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.recordAudit(r, audit.Event{Kind: audit.KindLogin, Subject: req.Email, Success: false})
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		h.logger.Error("login: lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.recordAudit(r, audit.Event{Kind: audit.KindLogin, UserID: user.ID, Subject: req.Email, Success: false})
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	h.recordAudit(r, audit.Event{Kind: audit.KindLogin, UserID: user.ID, Subject: req.Email, Success: true})

	signed, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.logger.Error("login: token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: signed, User: user})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.Error("me: lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) recordAudit(r *http.Request, event audit.Event) {
	if h.auditor == nil {
		return
	}
	event.ClientIP = r.RemoteAddr
	if err := h.auditor.Record(r.Context(), event); err != nil {
		h.logger.Error("audit record failed", "kind", event.Kind, "error", err)
	}
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", errors.New("invalid authorization")
	}
	return raw, nil
}
