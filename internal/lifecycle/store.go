package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

var (
	ErrScheduleNotFound = errors.New("班表不存在")
	ErrScheduleNotDraft = errors.New("只有草稿状态的班表才能发布")
	ErrAlreadyPublished = errors.New("该周该类型已经存在已发布的班表")
	ErrSubjectNotFound  = errors.New("班表中不存在该行")
)

// Store 是班表集合的存储边界，§3 的不变量在这里强制执行，
// 而不是依赖调用方自觉：
//   - 同一个 (weekStart, type) 任意时刻至多一份已发布班表；
//   - ReplaceDrafts 原子地替换该键下的全部草稿，调用方不会观察到
//     替换到一半的集合。
//
// 针对同一个 (weekStart, type) 的并发调用需要由调用方自行串行化
type Store interface {
	// ReplaceDrafts 丢弃 (weekStart, type) 键下已有的全部草稿并装入新草稿，
	// 已发布的班表不受影响
	ReplaceDrafts(weekStart time.Time, scheduleType domain.ScheduleType, drafts []*domain.Schedule) error
	GetByID(id uuid.UUID) (*domain.Schedule, error)
	ListWeek(weekStart time.Time, scheduleType domain.ScheduleType) ([]*domain.Schedule, error)
	// GetPublished 返回该键下已发布的班表，不存在时返回 ErrScheduleNotFound
	GetPublished(weekStart time.Time, scheduleType domain.ScheduleType) (*domain.Schedule, error)
	// Publish 把目标草稿转为已发布，同键的其余草稿保持原样
	Publish(id uuid.UUID) (*domain.Schedule, error)
	// UpdateCell 原地修改一个 (subject, day) 单元格，不改变状态，
	// 草稿和已发布的班表都允许编辑
	UpdateCell(id uuid.UUID, subject string, day domain.Weekday, value string) (*domain.Schedule, error)
	// Delete 删除班表，任何状态下都允许，对同键的其他班表没有副作用
	Delete(id uuid.UUID) error
}
