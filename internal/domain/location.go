package domain

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID                     uuid.UUID `json:"id"`
	Name                   string    `json:"name"`
	Address                string    `json:"address"`
	RequiredStaffMorning   int32     `json:"requiredStaffMorning"`
	RequiredStaffAfternoon int32     `json:"requiredStaffAfternoon"`
	RequiredStaffNight     int32     `json:"requiredStaffNight"`
	Notes                  string    `json:"notes"`
	CreatedAt              time.Time `json:"createdAt"`
	Version                int32     `json:"-"`
}
