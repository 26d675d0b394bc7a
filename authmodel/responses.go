package authmodel

import (
	"github.com/jrsteele09/go-billing-console/users"
)

// AuthResponse is returned by both login endpoints.
//
// The backend answers with a flat shape (accessToken, username, email, roles)
// while older deployments answer with {token, user}. Both are accepted; use
// BearerToken and Profile rather than the raw fields.
type AuthResponse struct {
	// Token is the access token in the {token, user} shape.
	Token string `json:"token,omitempty"`

	// AccessToken is the access token in the flat shape.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <accessToken>"
	AccessToken string `json:"accessToken,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Lifespan: Long-lived; may rotate on refresh
	RefreshToken string `json:"refreshToken,omitempty"`

	// TokenType is always "Bearer" when present.
	TokenType string `json:"tokenType,omitempty"`

	// User is the nested profile of the {token, user} shape.
	User *users.User `json:"user,omitempty"`

	// Flat profile fields.
	ID       int64    `json:"id,omitempty"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// BearerToken returns the access token from whichever field carries it.
func (r *AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Profile returns the user profile from whichever shape the backend used, or
// nil when neither carries one.
func (r *AuthResponse) Profile() *users.User {
	if r.User != nil {
		return r.User.Clone()
	}
	if r.Username == "" && r.Email == "" && len(r.Roles) == 0 {
		return nil
	}
	return (&users.User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Roles:    r.Roles,
	}).Clone()
}

// RefreshResponse is returned by POST /auth/refresh. RefreshToken is empty
// when the backend did not rotate it.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// BearerToken returns the new access token.
func (r *RefreshResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RegisterResponse is the body of a successful POST /auth/register.
type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}
