package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

const defaultShiftHours = 8

// Scheduler 是周班表生成引擎，lab-assignment 和 on-call 两种班表
// 共用同一份可用性、打分和规则逻辑，不允许出现第二份实现
type Scheduler struct {
	employees  []*domain.Employee
	locations  []*domain.Location
	rules      []Rule
	coverage   map[string]domain.AssignmentLabel
	shiftHours float64
	rng        *rand.Rand
}

type Options struct {
	// Rules 为 nil 时使用 DefaultRules
	Rules []Rule
	// Coverage 为 nil 时使用 DefaultOnCallCoverage
	Coverage map[string]domain.AssignmentLabel
	// ShiftHours 为 0 时使用默认名义工时
	ShiftHours float64
	// Rand 允许测试注入固定种子；为 nil 时每次生成使用新种子
	Rand *rand.Rand
}

// New 在任何生成工作开始之前校验输入快照，
// 快照非法时返回 ValidationError
func New(employees []*domain.Employee, locations []*domain.Location, opts *Options) (*Scheduler, error) {
	if opts == nil {
		opts = &Options{}
	}

	for _, emp := range employees {
		for _, req := range emp.TimeOffRequests {
			if req.StartDate.After(req.EndDate) {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("员工 %s 存在开始日期晚于结束日期的休假申请", emp.Name),
				}
			}
			switch req.Status {
			case domain.TimeOffPending, domain.TimeOffApproved, domain.TimeOffDenied:
			default:
				return nil, &ValidationError{
					Reason: fmt.Sprintf("员工 %s 存在未知状态的休假申请: %s", emp.Name, req.Status),
				}
			}
		}
	}

	s := &Scheduler{
		employees:  employees,
		locations:  locations,
		rules:      opts.Rules,
		coverage:   opts.Coverage,
		shiftHours: opts.ShiftHours,
		rng:        opts.Rand,
	}
	if s.rules == nil {
		s.rules = DefaultRules()
	}
	if s.coverage == nil {
		s.coverage = DefaultOnCallCoverage()
	}
	if s.shiftHours == 0 {
		s.shiftHours = defaultShiftHours
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return s, nil
}

// GenerateDrafts 为一次生成请求产生 N 份相互独立的候选班表，全部为草稿状态。
// prevPublished 是上一周已发布的同类型班表（可为 nil），只用于打分；
// publishedOnCall 是同一周已发布的 on-call 班表，lab-assignment 生成的前置条件。
// 任何错误都发生在产出草稿之前，失败的调用不会产生部分结果
func (s *Scheduler) GenerateDrafts(req domain.GenerateRequest, prevPublished *domain.Schedule, publishedOnCall *domain.Schedule) ([]*domain.Schedule, error) {
	if req.WeekStart.IsZero() {
		return nil, &ValidationError{Reason: "weekStart 不能为空"}
	}
	if req.DraftCount <= 0 {
		return nil, &ValidationError{Reason: "draftCount 必须为正数"}
	}

	switch req.Type {
	case domain.ScheduleTypeLabAssignment:
		if req.EmptySeed {
			return nil, &ValidationError{Reason: "lab-assignment 班表不支持空白模式"}
		}
		if publishedOnCall == nil {
			return nil, &DependencyNotMetError{WeekStart: req.WeekStart, Missing: domain.ScheduleTypeOnCall}
		}
		if _, exists := publishedOnCall.Assignments[PrimaryLocation]; !exists {
			return nil, &ConfigurationError{Missing: PrimaryLocation}
		}
	case domain.ScheduleTypeOnCall:
		if !s.hasLocation(PrimaryLocation) {
			return nil, &ConfigurationError{Missing: PrimaryLocation}
		}
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("未知的班表类型: %s", req.Type)}
	}

	drafts := make([]*domain.Schedule, 0, req.DraftCount)
	for i := 0; i < req.DraftCount; i++ {
		var grid domain.AssignmentGrid
		switch req.Type {
		case domain.ScheduleTypeLabAssignment:
			grid = s.generateLabGrid(req.WeekStart, prevPublished, publishedOnCall)
		case domain.ScheduleTypeOnCall:
			if req.EmptySeed {
				grid = s.emptyOnCallGrid()
			} else {
				grid = s.generateOnCallGrid(req.WeekStart, prevPublished)
			}
		}

		drafts = append(drafts, &domain.Schedule{
			ID:          uuid.New(),
			WeekStart:   req.WeekStart,
			Type:        req.Type,
			Status:      domain.ScheduleStatusDraft,
			Assignments: grid,
			CreatedAt:   time.Now().UTC(),
		})
	}

	return drafts, nil
}

func (s *Scheduler) hasLocation(name string) bool {
	for _, loc := range s.locations {
		if loc.Name == name {
			return true
		}
	}
	return false
}
