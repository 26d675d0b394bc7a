package backoffice

import (
	"context"
	"encoding/json"
)

// UserAPI is the /user family, available to every role.
type UserAPI struct {
	r Requester
}

func (u *UserAPI) Profile(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, u.r, "/user/profile", nil)
}

func (u *UserAPI) UpdateProfile(ctx context.Context, profile json.RawMessage) (json.RawMessage, error) {
	return put(ctx, u.r, "/user/profile", profile)
}

func (u *UserAPI) Subscriptions(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, u.r, "/user/subscriptions", nil)
}

func (u *UserAPI) ActiveSubscriptions(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, u.r, "/user/subscriptions/active", nil)
}

func (u *UserAPI) CancelSubscription(ctx context.Context, id int64) (json.RawMessage, error) {
	return post(ctx, u.r, pathf("user", "subscriptions", id, "cancel"), nil)
}
