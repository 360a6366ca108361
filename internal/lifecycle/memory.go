package lifecycle

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// MemoryStore 是 Store 的内存实现，按 (weekStart, type, id) 组织班表。
// 所有方法都在同一把锁下执行，返回值是深拷贝，调用方无法越过
// 存储边界去修改内部状态
type MemoryStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[uuid.UUID]*domain.Schedule),
	}
}

func scheduleKey(weekStart time.Time, scheduleType domain.ScheduleType) string {
	return domain.WeekKey(weekStart) + "/" + string(scheduleType)
}

func cloneSchedule(s *domain.Schedule) *domain.Schedule {
	cloned := *s
	cloned.Assignments = s.Assignments.Clone()
	return &cloned
}

func (ms *MemoryStore) ReplaceDrafts(weekStart time.Time, scheduleType domain.ScheduleType, drafts []*domain.Schedule) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := scheduleKey(weekStart, scheduleType)
	for id, s := range ms.byID {
		if scheduleKey(s.WeekStart, s.Type) == key && s.Status == domain.ScheduleStatusDraft {
			delete(ms.byID, id)
		}
	}
	for _, draft := range drafts {
		ms.byID[draft.ID] = cloneSchedule(draft)
	}

	return nil
}

func (ms *MemoryStore) GetByID(id uuid.UUID) (*domain.Schedule, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, exists := ms.byID[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	return cloneSchedule(s), nil
}

func (ms *MemoryStore) ListWeek(weekStart time.Time, scheduleType domain.ScheduleType) ([]*domain.Schedule, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := scheduleKey(weekStart, scheduleType)
	schedules := []*domain.Schedule{}
	for _, s := range ms.byID {
		if scheduleKey(s.WeekStart, s.Type) == key {
			schedules = append(schedules, cloneSchedule(s))
		}
	}
	return schedules, nil
}

func (ms *MemoryStore) GetPublished(weekStart time.Time, scheduleType domain.ScheduleType) (*domain.Schedule, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := scheduleKey(weekStart, scheduleType)
	for _, s := range ms.byID {
		if scheduleKey(s.WeekStart, s.Type) == key && s.Status == domain.ScheduleStatusPublished {
			return cloneSchedule(s), nil
		}
	}
	return nil, ErrScheduleNotFound
}

func (ms *MemoryStore) Publish(id uuid.UUID) (*domain.Schedule, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	target, exists := ms.byID[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	if target.Status != domain.ScheduleStatusDraft {
		return nil, ErrScheduleNotDraft
	}

	// 同键的发布互斥在存储边界强制执行
	key := scheduleKey(target.WeekStart, target.Type)
	for _, s := range ms.byID {
		if s.ID != id && scheduleKey(s.WeekStart, s.Type) == key && s.Status == domain.ScheduleStatusPublished {
			return nil, ErrAlreadyPublished
		}
	}

	target.Status = domain.ScheduleStatusPublished
	target.Version++
	return cloneSchedule(target), nil
}

func (ms *MemoryStore) UpdateCell(id uuid.UUID, subject string, day domain.Weekday, value string) (*domain.Schedule, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	target, exists := ms.byID[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	row, exists := target.Assignments[subject]
	if !exists {
		return nil, ErrSubjectNotFound
	}

	row[day] = value
	target.Version++
	return cloneSchedule(target), nil
}

func (ms *MemoryStore) Delete(id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.byID[id]; !exists {
		return ErrScheduleNotFound
	}
	delete(ms.byID, id)
	return nil
}
