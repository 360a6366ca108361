package domain

import (
	"time"

	"github.com/google/uuid"
)

type EmployeeRole string

const (
	RoleStaff   EmployeeRole = "staff"
	RoleStudent EmployeeRole = "student"
)

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
)

// TimeOffRequest 的起止日期按自然日比较，包含两端
type TimeOffRequest struct {
	ID         uuid.UUID     `json:"id"`
	EmployeeID uuid.UUID     `json:"employeeID"`
	StartDate  time.Time     `json:"startDate"`
	EndDate    time.Time     `json:"endDate"`
	Status     TimeOffStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	Version    int32         `json:"-"`
}

type Employee struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Age               int32            `json:"age"`
	Role              EmployeeRole     `json:"role"`
	AvailableWeekdays []Weekday        `json:"availableWeekdays"`
	MaxHoursPerDay    float64          `json:"maxHoursPerDay"`
	PreferredShifts   []string         `json:"preferredShifts"`
	TimeOffRequests   []TimeOffRequest `json:"timeOffRequests"`
	CreatedAt         time.Time        `json:"createdAt"`
	Version           int32            `json:"-"`
}
