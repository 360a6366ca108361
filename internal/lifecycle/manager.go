package lifecycle

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/scheduler"
)

// Manager 负责班表的整个生命周期：生成草稿、编辑单元格、发布和删除。
// 它是生成引擎和存储边界之间唯一的协调者，
// 同一个 (weekStart, type) 的请求需要调用方保证一次只有一个在途
type Manager struct {
	store             Store
	rules             []scheduler.Rule
	weekFirstDay      time.Weekday
	shiftHours        float64
	defaultDraftCount int
	maxDraftCount     int
	rng               *rand.Rand
}

type ManagerOptions struct {
	// Rules 为 nil 时使用引擎内置的院内规则
	Rules []scheduler.Rule
	// WeekFirstDay 只允许 time.Monday 或 time.Sunday
	WeekFirstDay      time.Weekday
	ShiftHours        float64
	DefaultDraftCount int
	MaxDraftCount     int
	// Rand 允许测试注入固定种子
	Rand *rand.Rand
}

func NewManager(store Store, opts ManagerOptions) *Manager {
	m := &Manager{
		store:             store,
		rules:             opts.Rules,
		weekFirstDay:      opts.WeekFirstDay,
		shiftHours:        opts.ShiftHours,
		defaultDraftCount: opts.DefaultDraftCount,
		maxDraftCount:     opts.MaxDraftCount,
		rng:               opts.Rand,
	}
	if m.defaultDraftCount <= 0 {
		m.defaultDraftCount = 3
	}
	if m.maxDraftCount <= 0 {
		m.maxDraftCount = 10
	}

	return m
}

// NormalizeWeek 按配置的每周第一天归一化任意日期
func (m *Manager) NormalizeWeek(t time.Time) time.Time {
	return domain.NormalizeWeekStart(t, m.weekFirstDay)
}

// Generate 为 (weekStart, type) 生成新的草稿集合并原子替换旧草稿。
// 任何错误都不会产生新草稿，之前的状态保持不变
func (m *Manager) Generate(req domain.GenerateRequest, employees []*domain.Employee, locations []*domain.Location) ([]*domain.Schedule, error) {
	if req.WeekStart.IsZero() {
		return nil, &scheduler.ValidationError{Reason: "weekStart 不能为空"}
	}
	req.WeekStart = m.NormalizeWeek(req.WeekStart)

	if req.DraftCount == 0 {
		req.DraftCount = m.defaultDraftCount
	}
	if req.DraftCount < 0 || req.DraftCount > m.maxDraftCount {
		return nil, &scheduler.ValidationError{
			Reason: fmt.Sprintf("draftCount 必须在 1 到 %d 之间", m.maxDraftCount),
		}
	}

	// lab-assignment 的前置条件：同一周的 on-call 班表必须已经发布
	var publishedOnCall *domain.Schedule
	if req.Type == domain.ScheduleTypeLabAssignment {
		onCall, err := m.store.GetPublished(req.WeekStart, domain.ScheduleTypeOnCall)
		switch {
		case err == nil:
			publishedOnCall = onCall
		case errors.Is(err, ErrScheduleNotFound):
			return nil, &scheduler.DependencyNotMetError{
				WeekStart: req.WeekStart,
				Missing:   domain.ScheduleTypeOnCall,
			}
		default:
			return nil, err
		}
	}

	// 上一周已发布的同类型班表只用于打分，不存在时照常生成
	prevPublished, err := m.store.GetPublished(req.WeekStart.AddDate(0, 0, -7), req.Type)
	if err != nil && !errors.Is(err, ErrScheduleNotFound) {
		return nil, err
	}

	engine, err := scheduler.New(employees, locations, &scheduler.Options{
		Rules:      m.rules,
		ShiftHours: m.shiftHours,
		Rand:       m.rng,
	})
	if err != nil {
		return nil, err
	}

	drafts, err := engine.GenerateDrafts(req, prevPublished, publishedOnCall)
	if err != nil {
		return nil, err
	}

	if err := m.store.ReplaceDrafts(req.WeekStart, req.Type, drafts); err != nil {
		return nil, err
	}

	return drafts, nil
}

func (m *Manager) Get(id uuid.UUID) (*domain.Schedule, error) {
	return m.store.GetByID(id)
}

func (m *Manager) ListWeek(weekStart time.Time, scheduleType domain.ScheduleType) ([]*domain.Schedule, error) {
	return m.store.ListWeek(m.NormalizeWeek(weekStart), scheduleType)
}

func (m *Manager) GetPublished(weekStart time.Time, scheduleType domain.ScheduleType) (*domain.Schedule, error) {
	return m.store.GetPublished(m.NormalizeWeek(weekStart), scheduleType)
}

// Publish 把目标草稿转为已发布，同键的其余草稿保留不动
func (m *Manager) Publish(id uuid.UUID) (*domain.PublishResult, error) {
	published, err := m.store.Publish(id)
	if err != nil {
		return nil, err
	}
	return &domain.PublishResult{ID: published.ID, Status: published.Status}, nil
}

// EditCell 修改一个单元格，草稿和已发布的班表都允许编辑。
// lab-assignment 班表的单元格必须取自封闭的标签集合
func (m *Manager) EditCell(id uuid.UUID, subject string, day domain.Weekday, value string) (*domain.Schedule, error) {
	if !domain.IsValidWeekday(day) {
		return nil, &scheduler.ValidationError{Reason: fmt.Sprintf("非法的星期: %s", day)}
	}

	s, err := m.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s.Type == domain.ScheduleTypeLabAssignment && !domain.IsValidLabel(domain.AssignmentLabel(value)) {
		return nil, &scheduler.ValidationError{Reason: fmt.Sprintf("非法的标签: %s", value)}
	}

	return m.store.UpdateCell(id, subject, day, value)
}

func (m *Manager) Delete(id uuid.UUID) error {
	return m.store.Delete(id)
}

// CanGenerateLab 探测某周 lab-assignment 的生成前置条件是否满足
func (m *Manager) CanGenerateLab(weekStart time.Time) (bool, error) {
	_, err := m.store.GetPublished(m.NormalizeWeek(weekStart), domain.ScheduleTypeOnCall)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrScheduleNotFound):
		return false, nil
	default:
		return false, err
	}
}
