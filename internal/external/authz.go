package external

import (
	"context"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
)

// Principal is the resolved identity of an inbound request.
type Principal struct {
	UserID string
	Role   string
}

// Anonymous is the zero-value principal used where the HTTP surface falls
// back to it (position recording, status reads), per spec.md §4.L.
var Anonymous = Principal{}

// IsAnonymous reports whether p carries no resolved identity.
func (p Principal) IsAnonymous() bool { return p.UserID == "" }

// Authorizer resolves bearer tokens to principals and checks group
// membership. The core never validates tokens itself; it is a pure
// collaborator consumed by internal/api's middleware.
type Authorizer interface {
	// ResolvePrincipal resolves token to a Principal. An empty or invalid
	// token resolves to Anonymous, not an error — callers that require an
	// identified principal must check IsAnonymous() themselves.
	ResolvePrincipal(ctx context.Context, token string) (Principal, error)

	// RequireMembership returns dberrors.ErrPermissionDenied if userID is
	// not a member of groupID.
	RequireMembership(ctx context.Context, userID, groupID string) error
}

// StaticAuthorizer is a minimal Authorizer for deployments without a
// separate identity provider: it trusts the bearer token as the user ID
// verbatim and treats every user as a member of every group. Not suitable
// for production multi-tenant deployments; a real deployment wires in an
// Authorizer backed by its own identity/membership store.
type StaticAuthorizer struct{}

// NewStaticAuthorizer builds the trust-the-token Authorizer.
func NewStaticAuthorizer() *StaticAuthorizer { return &StaticAuthorizer{} }

func (StaticAuthorizer) ResolvePrincipal(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Anonymous, nil
	}
	return Principal{UserID: token, Role: "hunter"}, nil
}

func (StaticAuthorizer) RequireMembership(ctx context.Context, userID, groupID string) error {
	if userID == "" {
		return dberrors.PermissionDenied("anonymous principal cannot join group %s", groupID)
	}
	return nil
}
