package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleChef  Role = "chef"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleChef || r == RoleUser
}

type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Password   string     `db:"password" json:"-"`
	Roles      []Role     `db:"-" json:"roles"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

// Principal is the authenticated identity attached to a single request.
// It is passed explicitly into every permission check; there is no ambient
// "current user" state anywhere in the service.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

func (p Principal) Is(role Role) bool {
	for _, r := range p.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}
