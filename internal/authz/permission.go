package authz

import "fmt"

// Permission is a named capability grantable to a role.
// The set is closed: anything not listed in catalog is rejected by Valid.
type Permission string

const (
	CreateCategories Permission = "create-categories"
	EditCategories   Permission = "edit-categories"
	DeleteCategories Permission = "delete-categories"
	AccessCategories Permission = "access-categories"

	CreatePosts Permission = "create-posts"
	EditPosts   Permission = "edit-posts"
	DeletePosts Permission = "delete-posts"
	AccessPosts Permission = "access-posts"

	CreateComments  Permission = "create-comments"
	EditComments    Permission = "edit-comments"
	DeleteComments  Permission = "delete-comments"
	ConfirmComments Permission = "confirm-comments"
	AccessComments  Permission = "access-comments"

	CreateUsers Permission = "create-users"
	EditUsers   Permission = "edit-users"
	DeleteUsers Permission = "delete-users"
	AccessUsers Permission = "access-users"
)

var catalog = []Permission{
	CreateCategories, EditCategories, DeleteCategories, AccessCategories,
	CreatePosts, EditPosts, DeletePosts, AccessPosts,
	CreateComments, EditComments, DeleteComments, ConfirmComments, AccessComments,
	CreateUsers, EditUsers, DeleteUsers, AccessUsers,
}

// All returns a copy of the permission catalog in seed order.
func All() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	for _, known := range catalog {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string {
	return string(p)
}

// ParsePermission converts a stored title back into a Permission.
func ParsePermission(title string) (Permission, error) {
	p := Permission(title)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", title)
	}
	return p, nil
}

// Role titles of the seeded roles.
const (
	RoleAdmin  = "Admin"
	RoleAuthor = "Author"
	RoleUser   = "User"
)

// SeedRoles maps each seeded role to the permissions it is granted.
// Role ids follow this order (Admin=1, Author=2, User=3).
func SeedRoles() []RoleGrant {
	return []RoleGrant{
		{Title: RoleAdmin, Permissions: All()},
		{Title: RoleAuthor, Permissions: []Permission{
			CreatePosts, EditPosts, DeletePosts, AccessPosts, AccessCategories,
			CreateComments, EditComments, DeleteComments, AccessComments,
		}},
		{Title: RoleUser, Permissions: []Permission{
			CreateComments, AccessComments, DeleteComments, AccessPosts, AccessCategories,
		}},
	}
}

// RoleGrant is a role title with its permission set.
type RoleGrant struct {
	Title       string
	Permissions []Permission
}
