package authz

import (
	"context"
	"errors"
	"fmt"
)

// ErrForbidden is returned whenever a permission or ownership check fails.
var ErrForbidden = errors.New("forbidden")

// Principal identifies the authenticated caller. It is passed explicitly
// through every service call; nothing reads it from ambient state.
type Principal struct {
	UserID string
}

// Grants is the role and permission set currently held by a user.
type Grants struct {
	RoleTitle   string
	Permissions []string
}

// GrantSource loads a user's role and permissions from the store.
type GrantSource interface {
	GrantsForUser(ctx context.Context, userID string) (*Grants, error)
}

// Gate answers "may this principal do X". Grants are read on every call,
// so a role re-assignment takes effect on the next check.
type Gate struct {
	source GrantSource
}

func NewGate(source GrantSource) *Gate {
	return &Gate{source: source}
}

func (g *Gate) grants(ctx context.Context, p Principal) (*Grants, error) {
	if p.UserID == "" {
		return nil, ErrForbidden
	}
	grants, err := g.source.GrantsForUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}
	return grants, nil
}

// Allows reports whether the principal's role holds perm.
func (g *Gate) Allows(ctx context.Context, p Principal, perm Permission) (bool, error) {
	if !perm.Valid() {
		return false, fmt.Errorf("unknown permission %q", perm)
	}
	grants, err := g.grants(ctx, p)
	if err != nil {
		return false, err
	}
	for _, title := range grants.Permissions {
		if title == string(perm) {
			return true, nil
		}
	}
	return false, nil
}

// Authorize is Allows turned into an error: ErrForbidden on denial.
func (g *Gate) Authorize(ctx context.Context, p Principal, perm Permission) error {
	ok, err := g.Allows(ctx, p, perm)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing permission %s", ErrForbidden, perm)
	}
	return nil
}

// IsAdmin reports whether the principal currently holds the Admin role.
func (g *Gate) IsAdmin(ctx context.Context, p Principal) (bool, error) {
	grants, err := g.grants(ctx, p)
	if err != nil {
		return false, err
	}
	return grants.RoleTitle == RoleAdmin, nil
}

// AuthorizeOwnership enforces isOwner(p, entity) OR (adminOverride AND isAdmin(p)).
func (g *Gate) AuthorizeOwnership(ctx context.Context, p Principal, ownerID string, adminOverride bool) error {
	if p.UserID != "" && p.UserID == ownerID {
		return nil
	}
	if adminOverride {
		admin, err := g.IsAdmin(ctx, p)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return fmt.Errorf("%w: not the owner", ErrForbidden)
}

// Permissions returns the principal's permission titles (for the frontend store).
func (g *Gate) Permissions(ctx context.Context, p Principal) ([]string, error) {
	grants, err := g.grants(ctx, p)
	if err != nil {
		return nil, err
	}
	return grants.Permissions, nil
}
