package backendfake

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-billing-console/users"
)

// accessClaims is the payload of an issued access token.
type accessClaims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	Epoch  int      `json:"ep"`
	jwtlib.RegisteredClaims
}

func (b *Backend) issueAccessToken(u *users.User) (string, error) {
	b.mu.Lock()
	epoch := b.epoch
	b.mu.Unlock()

	now := b.now()
	claims := accessClaims{
		UserID: u.ID,
		Roles:  u.Roles,
		Epoch:  epoch,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(b.accessTokenExpiry)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(b.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// parseAccessToken validates signature, expiry, epoch and revocation.
func (b *Backend) parseAccessToken(raw string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
		return b.signingKey, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(b.now),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if claims.Epoch < b.epoch {
		return nil, fmt.Errorf("token expired")
	}
	if _, revoked := b.revoked[claims.ID]; revoked {
		return nil, fmt.Errorf("token revoked")
	}
	return claims, nil
}

func (b *Backend) revoke(claims *accessClaims) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[claims.ID] = struct{}{}
}
