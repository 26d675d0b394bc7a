package sessions

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-billing-console/users"
	"golang.org/x/oauth2"
)

// Keys under which the three session entries are persisted. They are always
// written and cleared together.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Session is the client-held authentication state. Empty strings and a nil
// User mean "absent".
type Session struct {
	AccessToken  string      // Bearer token attached to API calls
	RefreshToken string      // Opaque token exchanged at /auth/refresh
	User         *users.User // Profile returned at login
}

// IsZero reports whether no field is set.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.User == nil
}

// Authenticated reports whether an access token and a profile are both held.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

// Normalized enforces the token/profile pairing: a session holding only one
// of them drops both and keeps only its refresh token.
func (s Session) Normalized() Session {
	if (s.AccessToken == "") != (s.User == nil) {
		return Session{RefreshToken: s.RefreshToken}
	}
	return s
}

// OAuth2Token returns the access token as an oauth2.Token. Expiry is read
// from the JWT exp claim when the token is a JWT, and left zero otherwise.
func (s Session) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
	}
	if exp, ok := AccessTokenExpiry(s.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok
}

// AccessTokenExpiry extracts the exp claim of a JWT access token without
// verifying its signature. The client never holds the signing key; the value
// is informational only.
func AccessTokenExpiry(rawToken string) (time.Time, bool) {
	if rawToken == "" {
		return time.Time{}, false
	}
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
