package backoffice

import (
	"context"
	"encoding/json"
)

// AuditAPI is the /audit family. Listings are paginated.
type AuditAPI struct {
	r Requester
}

func (a *AuditAPI) All(ctx context.Context, p Page) (json.RawMessage, error) {
	return get(ctx, a.r, "/audit", p.values())
}

// Trail returns the history of one entity.
func (a *AuditAPI) Trail(ctx context.Context, entityType string, entityID int64) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("audit", "trail", entityType, entityID), nil)
}

func (a *AuditAPI) ByUser(ctx context.Context, userID int64, p Page) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("audit", "user", userID), p.values())
}

func (a *AuditAPI) ByAction(ctx context.Context, action string, p Page) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("audit", "action", action), p.values())
}

func (a *AuditAPI) ByEntityType(ctx context.Context, entityType string, p Page) (json.RawMessage, error) {
	return get(ctx, a.r, pathf("audit", "entity", entityType), p.values())
}

func (a *AuditAPI) Failed(ctx context.Context, p Page) (json.RawMessage, error) {
	return get(ctx, a.r, "/audit/failed", p.values())
}

func (a *AuditAPI) Search(ctx context.Context, keyword string, p Page) (json.RawMessage, error) {
	q := p.values()
	q.Set("keyword", keyword)
	return get(ctx, a.r, "/audit/search", q)
}

func (a *AuditAPI) Statistics(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, a.r, "/audit/statistics", nil)
}
