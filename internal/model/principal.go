package model

import "github.com/google/uuid"

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
)

type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}
