package backoffice

import (
	"context"
	"encoding/json"
)

// AgentAPI is the /agent family. Requires AGENT or ADMIN.
type AgentAPI struct {
	r Requester
}

func (a *AgentAPI) Subscriptions(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, a.r, "/agent/subscriptions", nil)
}

func (a *AgentAPI) SubscriptionsByDevice(ctx context.Context, deviceID int64) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("agent", "subscriptions", "device", deviceID), nil)
}

func (a *AgentAPI) AssignSubscription(ctx context.Context, assignment json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/agent/user-subscriptions/assign", assignment)
}

func (a *AgentAPI) UserSubscriptions(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, a.r, "/agent/user-subscriptions", nil)
}

func (a *AgentAPI) UserSubscriptionsByUser(ctx context.Context, userID int64) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("agent", "user-subscriptions", "user", userID), nil)
}

func (a *AgentAPI) UpdateNegotiatedPrice(ctx context.Context, userSubscriptionID int64, price float64) (json.RawMessage, error) {
	body := struct {
		NegotiatedPrice float64 `json:"negotiatedPrice"`
	}{NegotiatedPrice: price}
	return put(ctx, a.r, pathf("agent", "user-subscriptions", userSubscriptionID, "negotiated-price"), body)
}

func (a *AgentAPI) CancelUserSubscription(ctx context.Context, userSubscriptionID int64) (json.RawMessage, error) {
	return post(ctx, a.r, pathf("agent", "user-subscriptions", userSubscriptionID, "cancel"), nil)
}

func (a *AgentAPI) CreateDevice(ctx context.Context, device json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/agent/devices", device)
}

func (a *AgentAPI) Devices(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, a.r, "/agent/devices", nil)
}

func (a *AgentAPI) AssignDevice(ctx context.Context, assignment json.RawMessage) (json.RawMessage, error) {
	return post(ctx, a.r, "/agent/user-devices/assign", assignment)
}

func (a *AgentAPI) DevicesByUser(ctx context.Context, userID int64) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("agent", "user-devices", "user", userID), nil)
}
