package users_test

import (
	"testing"

	"github.com/jrsteele09/go-billing-console/users"
	"github.com/stretchr/testify/require"
)

func TestUser_HasRole(t *testing.T) {
	tests := []struct {
		name  string
		user  *users.User
		role  string
		match bool
	}{
		{"exact", &users.User{Roles: []string{"ADMIN"}}, users.RoleAdmin, true},
		{"prefixed", &users.User{Roles: []string{"ROLE_AGENT"}}, users.RoleAgent, true},
		{"substring", &users.User{Roles: []string{"SUPER_ADMIN_LITE"}}, users.RoleAdmin, true},
		{"case sensitive", &users.User{Roles: []string{"admin"}}, users.RoleAdmin, false},
		{"missing", &users.User{Roles: []string{"USER"}}, users.RoleAdmin, false},
		{"no roles", &users.User{}, users.RoleUser, false},
		{"nil user", nil, users.RoleUser, false},
		{"empty role", &users.User{Roles: []string{"USER"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.match, tt.user.HasRole(tt.role))
		})
	}
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &users.User{Roles: []string{"AGENT"}}
	require.True(t, u.HasAnyRole(users.RoleAdmin, users.RoleAgent))
	require.False(t, u.HasAnyRole(users.RoleAdmin))
	require.False(t, u.HasAnyRole())
}

func TestUser_CloneIsDeep(t *testing.T) {
	u := &users.User{ID: 7, Username: "jane", Email: "jane@example.com", Roles: []string{"USER"}}
	c := u.Clone()

	require.True(t, u.Equal(c))
	c.Roles[0] = "ADMIN"
	require.Equal(t, "USER", u.Roles[0])
	require.False(t, u.Equal(c))

	var nilUser *users.User
	require.Nil(t, nilUser.Clone())
	require.True(t, nilUser.Equal(nil))
}
