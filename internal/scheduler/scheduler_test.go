package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// 2026-03-02 是周一
var testWeekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestEmployees() []*domain.Employee {
	return []*domain.Employee{
		{
			ID:                uuid.New(),
			Name:              "Martha",
			Role:              domain.RoleStaff,
			AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Thursday, domain.Friday, domain.Saturday},
			MaxHoursPerDay:    10.5,
		},
		{
			ID:                uuid.New(),
			Name:              "Grisel",
			Role:              domain.RoleStaff,
			AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday, domain.Saturday},
			MaxHoursPerDay:    8.5,
		},
		{
			ID:                uuid.New(),
			Name:              "Emilio",
			Role:              domain.RoleStaff,
			AvailableWeekdays: []domain.Weekday{domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
			MaxHoursPerDay:    8.5,
		},
		{
			ID:                uuid.New(),
			Name:              "Annie",
			Role:              domain.RoleStaff,
			AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
			MaxHoursPerDay:    8.5,
		},
		{
			ID:                uuid.New(),
			Name:              "Angela",
			Role:              domain.RoleStaff,
			AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
			MaxHoursPerDay:    8.5,
		},
		{
			ID:                uuid.New(),
			Name:              "William",
			Role:              domain.RoleStudent,
			AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday},
			MaxHoursPerDay:    8.0,
		},
	}
}

func newTestLocations() []*domain.Location {
	return []*domain.Location{
		{ID: uuid.New(), Name: "JDCH"},
		{ID: uuid.New(), Name: "W/M"},
	}
}

// newPublishedOnCall 构造一份已发布的 on-call 班表：
// JDCH 整周由 Grisel 值守，W/M 整周由 Annie 值守
func newPublishedOnCall() *domain.Schedule {
	grid := domain.AssignmentGrid{
		"JDCH": {},
		"W/M":  {},
	}
	for _, day := range domain.RotationDays {
		grid["JDCH"][day] = "Grisel"
		grid["W/M"][day] = "Annie"
	}
	return &domain.Schedule{
		ID:          uuid.New(),
		WeekStart:   testWeekStart,
		Type:        domain.ScheduleTypeOnCall,
		Status:      domain.ScheduleStatusPublished,
		Assignments: grid,
	}
}

func newTestScheduler(t *testing.T, employees []*domain.Employee) *Scheduler {
	t.Helper()
	s, err := New(employees, newTestLocations(), &Options{
		Rand: rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)
	return s
}

func findByName(employees []*domain.Employee, name string) *domain.Employee {
	for _, emp := range employees {
		if emp.Name == name {
			return emp
		}
	}
	return nil
}

func TestNewRejectsInvalidTimeOff(t *testing.T) {
	employees := newTestEmployees()
	employees[0].TimeOffRequests = []domain.TimeOffRequest{
		{
			StartDate: testWeekStart.AddDate(0, 0, 3),
			EndDate:   testWeekStart,
			Status:    domain.TimeOffApproved,
		},
	}

	_, err := New(employees, newTestLocations(), nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	employees = newTestEmployees()
	employees[0].TimeOffRequests = []domain.TimeOffRequest{
		{
			StartDate: testWeekStart,
			EndDate:   testWeekStart,
			Status:    "cancelled",
		},
	}

	_, err = New(employees, newTestLocations(), nil)
	require.ErrorAs(t, err, &validationErr)
}

func TestGenerateDraftsValidation(t *testing.T) {
	s := newTestScheduler(t, newTestEmployees())

	var validationErr *ValidationError

	_, err := s.GenerateDrafts(domain.GenerateRequest{
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 1,
	}, nil, nil)
	require.ErrorAs(t, err, &validationErr)

	_, err = s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 0,
	}, nil, nil)
	require.ErrorAs(t, err, &validationErr)

	_, err = s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       "weekend",
		DraftCount: 1,
	}, nil, nil)
	require.ErrorAs(t, err, &validationErr)

	// lab-assignment 不支持空白模式
	_, err = s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
		EmptySeed:  true,
	}, nil, newPublishedOnCall())
	require.ErrorAs(t, err, &validationErr)
}

func TestLabRequiresPublishedOnCall(t *testing.T) {
	s := newTestScheduler(t, newTestEmployees())

	_, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, nil)

	var dependencyErr *DependencyNotMetError
	require.ErrorAs(t, err, &dependencyErr)
	assert.Equal(t, domain.ScheduleTypeOnCall, dependencyErr.Missing)
}

func TestPrimaryLocationMissing(t *testing.T) {
	var configurationErr *ConfigurationError

	// on-call 生成要求地点列表中存在主地点
	s, err := New(newTestEmployees(), []*domain.Location{{ID: uuid.New(), Name: "W/M"}}, &Options{
		Rand: rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	_, err = s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 1,
	}, nil, nil)
	require.ErrorAs(t, err, &configurationErr)

	// lab 生成要求已发布的 on-call 班表中存在主地点行
	s = newTestScheduler(t, newTestEmployees())
	onCall := newPublishedOnCall()
	delete(onCall.Assignments, "JDCH")

	_, err = s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, onCall)
	require.ErrorAs(t, err, &configurationErr)
}

func TestLabGridForcingRules(t *testing.T) {
	s := newTestScheduler(t, newTestEmployees())

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, newPublishedOnCall())
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	grid := drafts[0].Assignments

	// Emilio 周一不可用，强制规则不生效
	assert.Equal(t, "", grid["Emilio"][domain.Monday])
	// 周二至周四强制为 THC
	assert.Equal(t, string(domain.LabelTHC), grid["Emilio"][domain.Tuesday])
	assert.Equal(t, string(domain.LabelTHC), grid["Emilio"][domain.Wednesday])
	assert.Equal(t, string(domain.LabelTHC), grid["Emilio"][domain.Thursday])
	// 周五全部标签被禁止，单元格保持未分配
	assert.Equal(t, "", grid["Emilio"][domain.Friday])

	// Martha 周二周五强制为移植住院
	assert.Equal(t, string(domain.LabelTXInpat), grid["Martha"][domain.Tuesday])
	assert.Equal(t, string(domain.LabelTXInpat), grid["Martha"][domain.Friday])
}

func TestLabGridOnCallCoverage(t *testing.T) {
	s := newTestScheduler(t, newTestEmployees())

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, newPublishedOnCall())
	require.NoError(t, err)

	grid := drafts[0].Assignments

	// 当天在某地点值班的员工，lab 单元格被强制为地点对应的标签
	for _, day := range domain.RotationDays {
		assert.Equal(t, string(domain.LabelORInpat), grid["Grisel"][day], "Grisel 在 %s 值守 JDCH", day)
		assert.Equal(t, string(domain.LabelMWHMHM), grid["Annie"][day], "Annie 在 %s 值守 W/M", day)
	}
}

func TestLeaveOverridesForcing(t *testing.T) {
	employees := newTestEmployees()
	wednesday := domain.DateOfWeekday(testWeekStart, domain.Wednesday)
	findByName(employees, "Emilio").TimeOffRequests = []domain.TimeOffRequest{
		{
			StartDate: wednesday,
			EndDate:   wednesday,
			Status:    domain.TimeOffApproved,
		},
	}

	s := newTestScheduler(t, employees)
	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, newPublishedOnCall())
	require.NoError(t, err)

	grid := drafts[0].Assignments

	// 已批准的休假优先于强制规则
	assert.Equal(t, string(domain.LabelPTO), grid["Emilio"][domain.Wednesday])
	// 其余天不受影响
	assert.Equal(t, string(domain.LabelTHC), grid["Emilio"][domain.Tuesday])
}

func TestPendingLeaveIsIgnored(t *testing.T) {
	employees := newTestEmployees()
	wednesday := domain.DateOfWeekday(testWeekStart, domain.Wednesday)
	findByName(employees, "Emilio").TimeOffRequests = []domain.TimeOffRequest{
		{
			StartDate: wednesday,
			EndDate:   wednesday,
			Status:    domain.TimeOffPending,
		},
	}

	s := newTestScheduler(t, employees)
	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, nil, newPublishedOnCall())
	require.NoError(t, err)

	assert.Equal(t, string(domain.LabelTHC), drafts[0].Assignments["Emilio"][domain.Wednesday])
}

func TestLabGridEligibilityContainment(t *testing.T) {
	employees := newTestEmployees()
	s := newTestScheduler(t, employees)

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 3,
	}, nil, newPublishedOnCall())
	require.NoError(t, err)

	// 非空且非 PTO 的单元格必须落在员工的可用星期内
	for _, draft := range drafts {
		for _, emp := range employees {
			row := draft.Assignments[emp.Name]
			require.NotNil(t, row)
			for _, day := range domain.RotationDays {
				value := row[day]
				if value == "" || value == string(domain.LabelPTO) {
					continue
				}
				date := domain.DateOfWeekday(testWeekStart, day)
				assert.True(t, IsAvailableOn(emp, date), "%s 在 %s 不可用却被分配了 %s", emp.Name, day, value)
				assert.True(t, domain.IsValidLabel(domain.AssignmentLabel(value)))
			}
		}
	}
}

func TestOnCallGrid(t *testing.T) {
	employees := newTestEmployees()
	s := newTestScheduler(t, employees)

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 3,
	}, nil, nil)
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	for _, draft := range drafts {
		assert.Equal(t, domain.ScheduleStatusDraft, draft.Status)
		assert.Equal(t, domain.ScheduleTypeOnCall, draft.Type)
		require.Contains(t, draft.Assignments, "JDCH")
		require.Contains(t, draft.Assignments, "W/M")

		for _, day := range domain.RotationDays {
			date := domain.DateOfWeekday(testWeekStart, day)
			seen := map[string]bool{}
			for _, locName := range []string{"JDCH", "W/M"} {
				name := draft.Assignments[locName][day]
				if name == "" {
					continue
				}
				emp := findByName(employees, name)
				require.NotNil(t, emp, "on-call 单元格中出现未知员工 %s", name)
				// 学生不参与 on-call
				assert.NotEqual(t, domain.RoleStudent, emp.Role)
				assert.True(t, IsAvailableOn(emp, date))
				// 一个员工一天最多值守一个地点
				assert.False(t, seen[name], "%s 在 %s 同时值守两个地点", name, day)
				seen[name] = true
			}
		}
	}
}

func TestOnCallEmptySeed(t *testing.T) {
	s := newTestScheduler(t, newTestEmployees())

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 2,
		EmptySeed:  true,
	}, nil, nil)
	require.NoError(t, err)

	for _, draft := range drafts {
		for _, locName := range []string{"JDCH", "W/M"} {
			row := draft.Assignments[locName]
			require.Len(t, row, len(domain.RotationDays))
			for _, day := range domain.RotationDays {
				assert.Equal(t, "", row[day])
			}
		}
	}
}

func TestOnCallEmptyPoolLeavesCellBlank(t *testing.T) {
	// 只剩一名学生时，所有 on-call 单元格都保持空白，这不是错误
	student := &domain.Employee{
		ID:                uuid.New(),
		Name:              "William",
		Role:              domain.RoleStudent,
		AvailableWeekdays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		MaxHoursPerDay:    8.0,
	}
	s := newTestScheduler(t, []*domain.Employee{student})

	drafts, err := s.GenerateDrafts(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 1,
	}, nil, nil)
	require.NoError(t, err)

	for _, day := range domain.RotationDays {
		assert.Equal(t, "", drafts[0].Assignments["JDCH"][day])
		assert.Equal(t, "", drafts[0].Assignments["W/M"][day])
	}
}

func TestFixedSeedIsDeterministic(t *testing.T) {
	generate := func() []*domain.Schedule {
		s, err := New(newTestEmployees(), newTestLocations(), &Options{
			Rand: rand.New(rand.NewSource(7)),
		})
		require.NoError(t, err)

		drafts, err := s.GenerateDrafts(domain.GenerateRequest{
			WeekStart:  testWeekStart,
			Type:       domain.ScheduleTypeOnCall,
			DraftCount: 3,
		}, nil, nil)
		require.NoError(t, err)
		return drafts
	}

	first := generate()
	second := generate()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Assignments, second[i].Assignments)
	}
}

func TestPrevWeekLoweredByScore(t *testing.T) {
	// 上一周同一槽位排过的员工得分更低
	employees := newTestEmployees()
	martha := findByName(employees, "Martha")
	grisel := findByName(employees, "Grisel")

	prev := &domain.Schedule{
		WeekStart: testWeekStart.AddDate(0, 0, -7),
		Type:      domain.ScheduleTypeOnCall,
		Status:    domain.ScheduleStatusPublished,
		Assignments: domain.AssignmentGrid{
			"JDCH": {domain.Monday: "Martha"},
		},
	}

	ctx := &scoreContext{
		scheduleType: domain.ScheduleTypeOnCall,
		day:          domain.Monday,
		slot:         "JDCH",
		prevWeek:     prev,
		slotCounts:   map[uuid.UUID]int{},
		hoursToday:   map[uuid.UUID]float64{},
		shiftHours:   8,
	}

	assert.Equal(t, scoreEmployee(grisel, ctx)-3, scoreEmployee(martha, ctx))
}

func TestPickCandidateEmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, pickCandidate(rng, nil, &scoreContext{}))
}
