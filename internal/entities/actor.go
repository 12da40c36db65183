package entities

import "errors"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

var ErrInvalidRole = errors.New("invalid actor role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Actor is the verified identity performing an operation. It is produced by
// the auth gateway upstream of this service; the service only checks role and
// ownership, never credentials.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsSeller() bool { return a.Role == RoleSeller }
func (a Actor) IsBuyer() bool  { return a.Role == RoleBuyer }
func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
