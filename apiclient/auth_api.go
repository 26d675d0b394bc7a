package apiclient

import (
	"context"

	"github.com/jrsteele09/go-billing-console/authmodel"
	"github.com/jrsteele09/go-billing-console/users"
)

// Auth endpoint paths relative to the API base address.
const (
	PathLogin       = "/auth/login"
	PathLoginMobile = "/auth/login/mobile"
	PathLogout      = "/auth/logout"
	PathRefresh     = "/auth/refresh"
	PathMe          = "/auth/me"
	PathRegister    = "/auth/register"
)

// AuthAPI is the /auth surface of the backend.
type AuthAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

func (a *AuthAPI) Login(ctx context.Context, req authmodel.LoginRequest) (*authmodel.AuthResponse, error) {
	var resp authmodel.AuthResponse
	if err := a.client.postAnonymous(ctx, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) LoginMobile(ctx context.Context, req authmodel.MobileLoginRequest) (*authmodel.AuthResponse, error) {
	var resp authmodel.AuthResponse
	if err := a.client.postAnonymous(ctx, PathLoginMobile, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It neither needs nor changes a session.
func (a *AuthAPI) Register(ctx context.Context, req authmodel.RegisterRequest) (*authmodel.RegisterResponse, error) {
	var resp authmodel.RegisterResponse
	if err := a.client.postAnonymous(ctx, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend to revoke the current token. It never triggers a
// session renewal.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.postBearer(ctx, PathLogout, nil, nil)
}

func (a *AuthAPI) Refresh(ctx context.Context, req authmodel.RefreshRequest) (*authmodel.RefreshResponse, error) {
	var resp authmodel.RefreshResponse
	if err := a.client.postAnonymous(ctx, PathRefresh, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Me(ctx context.Context) (*users.User, error) {
	var u users.User
	if err := a.client.Get(ctx, PathMe, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *AuthAPI) Profile(ctx context.Context, accessToken string) (*users.User, error) {
	var u users.User
	if err := a.client.getWithToken(ctx, PathMe, accessToken, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
