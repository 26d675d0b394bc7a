package backendfake

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-billing-console/authmodel"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// Backend role names.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleAgent = "ROLE_AGENT"
	RoleUser  = "ROLE_USER"
)

type errorResponse struct {
	StatusCode int       `json:"statusCode"`
	ErrorCode  string    `json:"errorCode"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(b.countHits, logRequests)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", b.handleRegister)
		r.Post("/login", b.handleLogin)
		r.Post("/login/mobile", b.handleLoginMobile)
		r.Post("/refresh", b.handleRefresh)
		r.With(b.RequireAuth()).Post("/logout", b.handleLogout)
		r.With(b.RequireAuth()).Get("/me", b.handleMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(b.RequireAuth())

		r.With(b.RequireAnyRole(RoleAdmin)).HandleFunc("/admin/*", b.handleResource)
		r.With(b.RequireAnyRole(RoleAdmin, RoleAgent)).HandleFunc("/agent/*", b.handleResource)
		r.HandleFunc("/user/*", b.handleResource)
		r.With(b.RequireAnyRole(RoleAdmin, RoleAgent)).HandleFunc("/audit", b.handleResource)
		r.With(b.RequireAnyRole(RoleAdmin, RoleAgent)).HandleFunc("/audit/*", b.handleResource)
		r.With(b.RequireAnyRole(RoleAdmin, RoleAgent)).HandleFunc("/billing/*", b.handleResource)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})
	return r
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	mobilePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// validateRegistration returns the message of the first rule req breaks.
func validateRegistration(req authmodel.RegisterRequest) string {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return "Username is required"
	case !usernamePattern.MatchString(req.Username):
		return "Username must be 3 to 50 letters, numbers or underscores"
	case req.Email != "" && !emailPattern.MatchString(req.Email):
		return "Invalid email format"
	case strings.TrimSpace(req.Password) == "":
		return "Password is required"
	case len(req.Password) < 8 || len(req.Password) > 100:
		return "Password must be 8 to 100 characters"
	case req.MobileNumber != "" && !mobilePattern.MatchString(req.MobileNumber):
		return "Invalid mobile number format"
	}
	return ""
}

// handleRegister creates a ROLE_USER account. It does not log the caller in.
func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authmodel.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if msg := validateRegistration(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	_, err := b.AddUser(Account{
		Username: req.Username,
		Email:    req.Email,
		Mobile:   req.MobileNumber,
		Password: req.Password,
		Roles:    []string{RoleUser},
	})
	switch {
	case errs.Is(err, ErrUserExists):
		writeError(w, r, http.StatusConflict, "DUPLICATE_ENTITY", "Username already exists")
		return
	case err != nil:
		log.Err(err).Msg("failed to register user")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, authmodel.RegisterResponse{
		Message:  "User registered successfully",
		Username: req.Username,
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authmodel.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required")
		return
	}
	b.completeLogin(w, r, req.Username, req.Password, false)
}

func (b *Backend) handleLoginMobile(w http.ResponseWriter, r *http.Request) {
	var req authmodel.MobileLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.MobileNumber) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Mobile number is required")
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Password is required")
		return
	}
	b.completeLogin(w, r, req.MobileNumber, req.Password, true)
}

func (b *Backend) completeLogin(w http.ResponseWriter, r *http.Request, identifier, password string, byMobile bool) {
	user, ok := b.authenticate(identifier, password, byMobile)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	accessToken, err := b.issueAccessToken(user)
	if err != nil {
		log.Err(err).Msg("failed to issue access token")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authmodel.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: b.issueRefreshToken(user.Username),
		TokenType:    "Bearer",
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Roles:        user.Roles,
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authmodel.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Refresh token is required")
		return
	}

	b.mu.Lock()
	b.refreshCalls++
	username, known := b.refreshTokens[req.RefreshToken]
	reject, rotate := b.rejectRefresh, b.rotateRefresh
	if known && rotate && !reject {
		delete(b.refreshTokens, req.RefreshToken)
	}
	b.mu.Unlock()

	if reject || !known {
		writeError(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired refresh token")
		return
	}
	user, ok := b.lookupUser(username)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired refresh token")
		return
	}

	accessToken, err := b.issueAccessToken(user)
	if err != nil {
		log.Err(err).Msg("failed to issue access token")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	resp := authmodel.RefreshResponse{AccessToken: accessToken}
	if rotate {
		resp.RefreshToken = b.issueRefreshToken(username)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	fail := b.failLogout
	b.mu.Unlock()

	if fail {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Logout failed")
		return
	}
	b.revoke(claimsFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, ok := b.lookupUser(claims.Subject)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleResource answers every back-office endpoint with a description of
// the request. Paginated listings echo page and size.
func (b *Backend) handleResource(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
		"caller": claimsFrom(r.Context()).Subject,
	}
	q := r.URL.Query()
	if page := q.Get("page"); page != "" {
		resp["page"], _ = strconv.Atoi(page)
		resp["size"], _ = strconv.Atoi(q.Get("size"))
		resp["content"] = []any{}
	}
	if keyword := q.Get("keyword"); keyword != "" {
		resp["keyword"] = keyword
	}
	if r.ContentLength > 0 {
		var body any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
		resp["body"] = body
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		ErrorCode:  code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Path:       r.URL.Path,
	})
}
