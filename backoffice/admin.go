package backoffice

import (
	"context"
	"encoding/json"
)

// Resource is a soft-deletable entity family under /admin.
type Resource string

const (
	ResourceUsers         Resource = "users"
	ResourceDevices       Resource = "devices"
	ResourceSubscriptions Resource = "subscriptions"
)

// AdminAPI is the /admin family. Requires ADMIN.
type AdminAPI struct {
	r Requester
}

func (a *AdminAPI) SoftDelete(ctx context.Context, res Resource, id int64) (json.RawMessage, error) {
	return post(ctx, a.r, pathf("admin", string(res), id, "soft-delete"), nil)
}

func (a *AdminAPI) Restore(ctx context.Context, res Resource, id int64) (json.RawMessage, error) {
	return post(ctx, a.r, pathf("admin", string(res), id, "restore"), nil)
}

func (a *AdminAPI) Deleted(ctx context.Context, res Resource) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("admin", string(res), "deleted"), nil)
}

// CreateSubscription creates a subscription plan from a backend-defined
// payload.
func (a *AdminAPI) CreateSubscription(ctx context.Context, plan json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/admin/subscriptions", plan)
}

func (a *AdminAPI) AssignSubscription(ctx context.Context, assignment json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/admin/user-subscriptions/assign", assignment)
}

func (a *AdminAPI) CreateFeature(ctx context.Context, feature json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/admin/features", feature)
}

func (a *AdminAPI) Features(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, a.r, "/admin/features", nil)
}

func (a *AdminAPI) AddFeaturesToSubscription(ctx context.Context, subscriptionID int64, featureIDs []int64) (json.RawMessage, error) {
	body := struct {
		FeatureIDs []int64 `json:"featureIds"`
	}{FeatureIDs: featureIDs}
	return post(ctx, a.r, pathf("admin", "subscriptions", subscriptionID, "features"), body)
}
