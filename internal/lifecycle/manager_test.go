package lifecycle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/scheduler"
)

// 2026-03-02 是周一
var testWeekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestEmployees() []*domain.Employee {
	weekdays := []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday}
	names := []string{"Martha", "Grisel", "Annie", "Angela"}

	employees := make([]*domain.Employee, 0, len(names)+1)
	for _, name := range names {
		employees = append(employees, &domain.Employee{
			ID:                uuid.New(),
			Name:              name,
			Role:              domain.RoleStaff,
			AvailableWeekdays: weekdays,
			MaxHoursPerDay:    8.5,
		})
	}
	employees = append(employees, &domain.Employee{
		ID:                uuid.New(),
		Name:              "William",
		Role:              domain.RoleStudent,
		AvailableWeekdays: weekdays,
		MaxHoursPerDay:    8.0,
	})
	return employees
}

func newTestLocations() []*domain.Location {
	return []*domain.Location{
		{ID: uuid.New(), Name: "JDCH"},
		{ID: uuid.New(), Name: "W/M"},
	}
}

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(), ManagerOptions{
		WeekFirstDay: time.Monday,
		Rand:         rand.New(rand.NewSource(42)),
	})
}

func generateOnCall(t *testing.T, m *Manager, count int) []*domain.Schedule {
	t.Helper()
	drafts, err := m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: count,
	}, newTestEmployees(), newTestLocations())
	require.NoError(t, err)
	require.Len(t, drafts, count)
	return drafts
}

func TestGenerateNormalizesWeekStart(t *testing.T) {
	m := newTestManager()

	// 传入周三，草稿应当落在所在周的周一
	wednesday := testWeekStart.AddDate(0, 0, 2)
	drafts, err := m.Generate(domain.GenerateRequest{
		WeekStart:  wednesday,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 1,
	}, newTestEmployees(), newTestLocations())
	require.NoError(t, err)
	assert.Equal(t, testWeekStart, drafts[0].WeekStart)
}

func TestGenerateDraftCountBounds(t *testing.T) {
	m := newTestManager()

	// 0 使用默认数量
	drafts, err := m.Generate(domain.GenerateRequest{
		WeekStart: testWeekStart,
		Type:      domain.ScheduleTypeOnCall,
	}, newTestEmployees(), newTestLocations())
	require.NoError(t, err)
	assert.Len(t, drafts, 3)

	var validationErr *scheduler.ValidationError
	_, err = m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 11,
	}, newTestEmployees(), newTestLocations())
	require.ErrorAs(t, err, &validationErr)

	_, err = m.Generate(domain.GenerateRequest{
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 1,
	}, newTestEmployees(), newTestLocations())
	require.ErrorAs(t, err, &validationErr)
}

func TestRegenerateReplacesDrafts(t *testing.T) {
	m := newTestManager()

	first := generateOnCall(t, m, 3)
	second := generateOnCall(t, m, 2)

	schedules, err := m.ListWeek(testWeekStart, domain.ScheduleTypeOnCall)
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	// 旧草稿已被整体替换
	for _, s := range schedules {
		for _, old := range first {
			assert.NotEqual(t, old.ID, s.ID)
		}
	}
	_, err = m.Get(first[0].ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = m.Get(second[0].ID)
	assert.NoError(t, err)
}

func TestPublishExclusivity(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 3)

	result, err := m.Publish(drafts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusPublished, result.Status)

	// 同键的第二次发布被拒绝
	_, err = m.Publish(drafts[1].ID)
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	// 已发布的班表不允许再次发布
	_, err = m.Publish(drafts[0].ID)
	assert.ErrorIs(t, err, ErrScheduleNotDraft)

	// 其余草稿保留不动
	schedules, err := m.ListWeek(testWeekStart, domain.ScheduleTypeOnCall)
	require.NoError(t, err)
	assert.Len(t, schedules, 3)
}

func TestPublishedSurvivesRegeneration(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 3)

	_, err := m.Publish(drafts[0].ID)
	require.NoError(t, err)

	// 重新生成只替换草稿，已发布的班表不受影响
	generateOnCall(t, m, 2)

	published, err := m.GetPublished(testWeekStart, domain.ScheduleTypeOnCall)
	require.NoError(t, err)
	assert.Equal(t, drafts[0].ID, published.ID)

	schedules, err := m.ListWeek(testWeekStart, domain.ScheduleTypeOnCall)
	require.NoError(t, err)
	assert.Len(t, schedules, 3)
}

func TestLabGenerationGate(t *testing.T) {
	m := newTestManager()

	ok, err := m.CanGenerateLab(testWeekStart)
	require.NoError(t, err)
	assert.False(t, ok)

	var dependencyErr *scheduler.DependencyNotMetError
	_, err = m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, newTestEmployees(), newTestLocations())
	require.ErrorAs(t, err, &dependencyErr)

	// 发布 on-call 之后门槛解除
	drafts := generateOnCall(t, m, 1)
	_, err = m.Publish(drafts[0].ID)
	require.NoError(t, err)

	ok, err = m.CanGenerateLab(testWeekStart)
	require.NoError(t, err)
	assert.True(t, ok)

	labDrafts, err := m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 2,
	}, newTestEmployees(), newTestLocations())
	require.NoError(t, err)
	assert.Len(t, labDrafts, 2)

	// 两种类型互不影响，lab 草稿可以独立发布
	_, err = m.Publish(labDrafts[0].ID)
	assert.NoError(t, err)
}

func TestFailedGenerationInstallsNothing(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 2)

	// 缺少主地点导致生成失败，旧草稿保持不变
	_, err := m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeOnCall,
		DraftCount: 2,
	}, newTestEmployees(), []*domain.Location{{ID: uuid.New(), Name: "W/M"}})
	var configurationErr *scheduler.ConfigurationError
	require.ErrorAs(t, err, &configurationErr)

	schedules, err := m.ListWeek(testWeekStart, domain.ScheduleTypeOnCall)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	for _, s := range schedules {
		assert.Contains(t, []uuid.UUID{drafts[0].ID, drafts[1].ID}, s.ID)
	}
}

func TestEditCell(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 1)
	onCallID := drafts[0].ID

	// on-call 单元格存放员工姓名，不受标签集合约束
	updated, err := m.EditCell(onCallID, "JDCH", domain.Monday, "Martha")
	require.NoError(t, err)
	assert.Equal(t, "Martha", updated.Assignments["JDCH"][domain.Monday])

	var validationErr *scheduler.ValidationError
	_, err = m.EditCell(onCallID, "JDCH", "Someday", "Martha")
	require.ErrorAs(t, err, &validationErr)

	_, err = m.EditCell(onCallID, "ICU", domain.Monday, "Martha")
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	// lab 单元格必须取自封闭的标签集合
	_, err = m.Publish(onCallID)
	require.NoError(t, err)
	labDrafts, err := m.Generate(domain.GenerateRequest{
		WeekStart:  testWeekStart,
		Type:       domain.ScheduleTypeLabAssignment,
		DraftCount: 1,
	}, newTestEmployees(), newTestLocations())
	require.NoError(t, err)
	labID := labDrafts[0].ID

	updated, err = m.EditCell(labID, "Martha", domain.Monday, string(domain.LabelNA))
	require.NoError(t, err)
	assert.Equal(t, string(domain.LabelNA), updated.Assignments["Martha"][domain.Monday])

	_, err = m.EditCell(labID, "Martha", domain.Monday, "Surgery")
	require.ErrorAs(t, err, &validationErr)

	// 已发布的班表同样允许编辑
	_, err = m.EditCell(onCallID, "W/M", domain.Friday, "Annie")
	assert.NoError(t, err)
}

func TestDeleteSchedule(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 2)

	require.NoError(t, m.Delete(drafts[0].ID))

	_, err := m.Get(drafts[0].ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	// 删除不影响同键的其他班表
	_, err = m.Get(drafts[1].ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, m.Delete(drafts[0].ID), ErrScheduleNotFound)
}

func TestStoreReturnsClones(t *testing.T) {
	m := newTestManager()
	drafts := generateOnCall(t, m, 1)

	got, err := m.Get(drafts[0].ID)
	require.NoError(t, err)

	// 修改返回值不应影响存储中的班表
	got.Assignments["JDCH"][domain.Monday] = "Intruder"

	again, err := m.Get(drafts[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Intruder", again.Assignments["JDCH"][domain.Monday])
}
