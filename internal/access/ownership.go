// Package access decides whether a caller may touch a cliente owned row.
package access

import (
	"context"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/models"
)

// ErrNoCliente is returned to cliente tokens that carry no cliente id.
var ErrNoCliente = apperr.Forbidden("User is not associated with a cliente")

// ErrDenied is returned when the row belongs to another cliente or to nobody.
var ErrDenied = apperr.Forbidden("Access denied")

// OwnerFunc returns the cliente id owning the row, nil when unowned. A
// missing row must be reported as an apperr not found error.
type OwnerFunc func(ctx context.Context, id int64) (*int64, error)

// Ownership checks one resource type.
type Ownership struct {
	resource string
	owner    OwnerFunc
}

// New returns the ownership check of resource.
func New(resource string, owner OwnerFunc) *Ownership {
	return &Ownership{resource: resource, owner: owner}
}

// Resource names the checked resource.
func (o *Ownership) Resource() string {
	return o.resource
}

// Check lets admins through and clientes only into their own rows. The owner
// is always read from the store.
func (o *Ownership) Check(ctx context.Context, who jwt.Identity, id int64) error {
	const op = "access.Ownership.Check"
	if IsAdmin(who) {
		return nil
	}
	if who.Rol != string(models.RoleCliente) {
		return ErrDenied
	}
	if who.ClienteID == nil {
		return ErrNoCliente
	}

	owner, err := o.owner(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %s %d: %w", op, o.resource, id, err)
	}
	if owner == nil || *owner != *who.ClienteID {
		return ErrDenied
	}
	return nil
}

// IsAdmin reports whether who holds the admin role.
func IsAdmin(who jwt.Identity) bool {
	return who.Rol == string(models.RoleAdmin)
}
