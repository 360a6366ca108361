package domain

import (
	"time"
)

type OperatorRole string

const (
	RoleScheduler OperatorRole = "排班员"
	RoleAdmin     OperatorRole = "管理员"
)

// Operator 是使用本系统的后台账号，不同于被排班的 Employee
type Operator struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Role         OperatorRole `json:"role"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}
