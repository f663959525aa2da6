package service

import (
	"errors"

	"github.com/volunteerhub/portal-backend/internal/app/model"
)

var ErrForbidden = errors.New("access denied")

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   model.UserRole
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}
