package authmodel_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-billing-console/authmodel"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/stretchr/testify/require"
)

func TestAuthResponse_FlatShape(t *testing.T) {
	body := `{"accessToken":"at-1","refreshToken":"rt-1","tokenType":"Bearer","username":"jane","email":"jane@example.com","roles":["ROLE_ADMIN"]}`

	var resp authmodel.AuthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.Equal(t, "at-1", resp.BearerToken())
	require.Equal(t, "rt-1", resp.RefreshToken)
	require.Equal(t, &users.User{Username: "jane", Email: "jane@example.com", Roles: []string{"ROLE_ADMIN"}}, resp.Profile())
}

func TestAuthResponse_NestedShape(t *testing.T) {
	body := `{"token":"at-2","refreshToken":"rt-2","user":{"id":42,"username":"bob","email":"bob@example.com","roles":["AGENT"]}}`

	var resp authmodel.AuthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.Equal(t, "at-2", resp.BearerToken())
	profile := resp.Profile()
	require.Equal(t, int64(42), profile.ID)
	require.Equal(t, []string{"AGENT"}, profile.Roles)

	// Profile hands out a copy.
	profile.Roles[0] = "ADMIN"
	require.Equal(t, "AGENT", resp.User.Roles[0])
}

func TestAuthResponse_NoProfile(t *testing.T) {
	resp := authmodel.AuthResponse{AccessToken: "at"}
	require.Nil(t, resp.Profile())
}

func TestRefreshResponse_BearerToken(t *testing.T) {
	require.Equal(t, "a", (&authmodel.RefreshResponse{AccessToken: "a", Token: "b"}).BearerToken())
	require.Equal(t, "b", (&authmodel.RefreshResponse{Token: "b"}).BearerToken())
	require.Empty(t, (&authmodel.RefreshResponse{}).BearerToken())
}
