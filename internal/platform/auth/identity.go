package auth

import (
	"context"
	"strings"
)

// RoleModerator marks callers allowed to use the moderation endpoints.
const RoleModerator = "moderator"

// Identity is the per-request caller identity extracted from a verified
// token. The zero value means "unauthenticated". Display metadata (Name,
// Avatar) is a snapshot; it is never live-joined to a profile.
type Identity struct {
	UserID string
	Name   string
	Avatar string
	Role   string
}

func (id Identity) IsModerator() bool {
	return strings.EqualFold(strings.TrimSpace(id.Role), RoleModerator)
}

type ctxKeyIdentity struct{}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(ctxKeyIdentity{}).(Identity)
	return v, ok && v.UserID != ""
}

// WithIdentity injects an identity into context. Useful for testing.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}
