package seed

import (
	"log/slog"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/repository"
)

const (
	shiftMorning   = "Morning (6AM-2PM)"
	shiftAfternoon = "Afternoon (2PM-10PM)"
	shiftNight     = "Night (10PM-6AM)"
)

// realEmployees 是超声科目前在排的人员名单，
// 人员变动时直接改这里再重新执行 seed
var realEmployees = []domain.Employee{
	{
		Name:              "Martha",
		Age:               35,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Thursday, domain.Friday, domain.Saturday},
		MaxHoursPerDay:    10.5,
		PreferredShifts:   []string{shiftMorning, shiftAfternoon},
	},
	{
		Name:              "Grisel",
		Age:               28,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday, domain.Saturday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftMorning, shiftAfternoon, shiftNight},
	},
	{
		Name:              "Emilio",
		Age:               32,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftAfternoon, shiftNight},
	},
	{
		Name:              "Annie",
		Age:               29,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftMorning},
	},
	{
		Name:              "Angela",
		Age:               31,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftMorning, shiftAfternoon},
	},
	{
		Name:              "Alexandra",
		Age:               27,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftAfternoon},
	},
	{
		Name:              "Shannon",
		Age:               33,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftMorning, shiftNight},
	},
	{
		Name:              "Guadalupe",
		Age:               30,
		Role:              domain.RoleStaff,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.5,
		PreferredShifts:   []string{shiftAfternoon, shiftNight},
	},
	{
		Name:              "William",
		Age:               24,
		Role:              domain.RoleStudent,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday},
		MaxHoursPerDay:    8.0,
		PreferredShifts:   []string{shiftMorning},
	},
}

var realLocations = []domain.Location{
	{
		Name:                   "JDCH",
		Address:                "123 JDCH Ave",
		RequiredStaffMorning:   3,
		RequiredStaffAfternoon: 3,
		RequiredStaffNight:     2,
		Notes:                  "主院区，on-call 必须全周覆盖",
	},
	{
		Name:                   "W/M",
		Address:                "456 W/M Blvd",
		RequiredStaffMorning:   2,
		RequiredStaffAfternoon: 2,
		RequiredStaffNight:     1,
		Notes:                  "卫星院区",
	},
}

func SeedRealData(r *repository.Repository) {
	employeeCnt := 0
	for i := range realEmployees {
		employee := realEmployees[i]
		if err := r.CreateEmployee(&employee); err != nil {
			slog.Error("无法插入员工", "name", employee.Name, "error", err)
			continue
		}
		employeeCnt++
	}
	slog.Info("插入员工成功", "count", employeeCnt)

	locationCnt := 0
	for i := range realLocations {
		location := realLocations[i]
		if err := r.CreateLocation(&location); err != nil {
			slog.Error("无法插入地点", "name", location.Name, "error", err)
			continue
		}
		locationCnt++
	}
	slog.Info("插入地点成功", "count", locationCnt)
}
