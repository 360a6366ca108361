package scheduler

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// generateLabGrid 构建一周的 lab-assignment 网格，行是员工，单元格是标签。
// 每个单元格按 休假 > 强制规则 > on-call 覆盖 > 打分器 的优先级求解，
// 没有任何候选的单元格保持未分配，这不是错误
func (s *Scheduler) generateLabGrid(weekStart time.Time, prevWeek *domain.Schedule, onCall *domain.Schedule) domain.AssignmentGrid {
	grid := make(domain.AssignmentGrid, len(s.employees))
	for _, emp := range s.employees {
		row := make(map[domain.Weekday]string, len(domain.RotationDays))
		for _, day := range domain.RotationDays {
			row[day] = string(domain.LabelUnassigned)
		}
		grid[emp.Name] = row
	}

	byName := make(map[string]*domain.Employee, len(s.employees))
	for _, emp := range s.employees {
		byName[emp.Name] = emp
	}

	slotCounts := make(map[uuid.UUID]int)

	for _, day := range domain.RotationDays {
		date := domain.DateOfWeekday(weekStart, day)
		hoursToday := make(map[uuid.UUID]float64)
		labelCounts := make(map[domain.AssignmentLabel]int)
		settled := make(map[uuid.UUID]bool)

		// 已批准的休假最先求值，直接钉死为 PTO，后面的任何规则都不再适用
		for _, emp := range s.employees {
			if IsOnApprovedLeave(emp, date) {
				grid[emp.Name][day] = string(domain.LabelPTO)
				settled[emp.ID] = true
			}
		}

		// 强制规则只在员工当天可用时生效，
		// 否则会违背"非空非 PTO 单元格必须落在可用星期内"这条性质
		for _, emp := range s.employees {
			if settled[emp.ID] || !IsAvailableOn(emp, date) {
				continue
			}
			if label, ok := forcedLabel(s.rules, emp.Name, day); ok {
				grid[emp.Name][day] = string(label)
				settled[emp.ID] = true
				labelCounts[label]++
				slotCounts[emp.ID]++
				hoursToday[emp.ID] += s.shiftHours
			}
		}

		// 跨班表规则：当天在某地点值班的员工，lab 单元格强制为地点对应的标签。
		// 它覆盖打分器的结果，但不覆盖休假和前面的强制规则
		for _, locName := range sortedCoverageLocations(s.coverage) {
			coveringName := onCallAssignee(onCall, locName, day)
			if coveringName == "" {
				continue
			}
			emp, exists := byName[coveringName]
			if !exists || settled[emp.ID] || !IsAvailableOn(emp, date) {
				continue
			}
			label := s.coverage[locName]
			grid[emp.Name][day] = string(label)
			settled[emp.ID] = true
			labelCounts[label]++
			slotCounts[emp.ID]++
			hoursToday[emp.ID] += s.shiftHours
		}

		// 剩下的单元格由打分器填充：每次取当天覆盖最少的标签，
		// 在未被禁止的候选中选出得分最高的员工，一次调用恰好落一个单元格
		pool := make([]*domain.Employee, 0, len(s.employees))
		for _, emp := range s.employees {
			if !settled[emp.ID] && IsAvailableOn(emp, date) {
				pool = append(pool, emp)
			}
		}

		for len(pool) > 0 {
			label, candidates := s.nextOpenSlot(day, pool, labelCounts)
			if label == domain.LabelUnassigned {
				// 所有标签对剩余员工都被禁止，对应单元格保持未分配
				break
			}

			ctx := &scoreContext{
				scheduleType: domain.ScheduleTypeLabAssignment,
				day:          day,
				slot:         string(label),
				prevWeek:     prevWeek,
				slotCounts:   slotCounts,
				hoursToday:   hoursToday,
				shiftHours:   s.shiftHours,
			}
			top := pickCandidate(s.rng, candidates, ctx)

			grid[top.Name][day] = string(label)
			labelCounts[label]++
			slotCounts[top.ID]++
			hoursToday[top.ID] += s.shiftHours
			pool = removeEmployee(pool, top.ID)
		}
	}

	return grid
}

// nextOpenSlot 返回当天覆盖数最少、且还有合法候选的标签，
// 覆盖数相同时保持标签表中的顺序
func (s *Scheduler) nextOpenSlot(day domain.Weekday, pool []*domain.Employee, labelCounts map[domain.AssignmentLabel]int) (domain.AssignmentLabel, []*domain.Employee) {
	order := make([]domain.AssignmentLabel, len(domain.RotationLabels))
	copy(order, domain.RotationLabels)
	sort.SliceStable(order, func(i, j int) bool {
		return labelCounts[order[i]] < labelCounts[order[j]]
	})

	for _, label := range order {
		candidates := make([]*domain.Employee, 0, len(pool))
		for _, emp := range pool {
			if !isForbidden(s.rules, emp.Name, day, label) {
				candidates = append(candidates, emp)
			}
		}
		if len(candidates) > 0 {
			return label, candidates
		}
	}

	return domain.LabelUnassigned, nil
}

// generateOnCallGrid 构建一周的 on-call 网格，行是地点，单元格是员工姓名。
// 学生完全不参与 on-call，一个员工一天最多只值守一个地点
func (s *Scheduler) generateOnCallGrid(weekStart time.Time, prevWeek *domain.Schedule) domain.AssignmentGrid {
	grid := s.emptyOnCallGrid()
	slotCounts := make(map[uuid.UUID]int)

	for _, day := range domain.RotationDays {
		date := domain.DateOfWeekday(weekStart, day)
		hoursToday := make(map[uuid.UUID]float64)
		usedToday := make(map[uuid.UUID]bool)

		for _, loc := range s.locations {
			candidates := make([]*domain.Employee, 0, len(s.employees))
			for _, emp := range s.employees {
				if emp.Role == domain.RoleStudent {
					continue
				}
				if usedToday[emp.ID] || !IsAvailableOn(emp, date) || IsOnApprovedLeave(emp, date) {
					continue
				}
				candidates = append(candidates, emp)
			}

			ctx := &scoreContext{
				scheduleType: domain.ScheduleTypeOnCall,
				day:          day,
				slot:         loc.Name,
				prevWeek:     prevWeek,
				slotCounts:   slotCounts,
				hoursToday:   hoursToday,
				shiftHours:   s.shiftHours,
			}
			top := pickCandidate(s.rng, candidates, ctx)
			if top == nil {
				// 候选为空不是错误，单元格保持空白
				continue
			}

			grid[loc.Name][day] = top.Name
			usedToday[top.ID] = true
			slotCounts[top.ID]++
			hoursToday[top.ID] += s.shiftHours
		}
	}

	return grid
}

// emptyOnCallGrid 产生全空白的 on-call 网格，用于完全手工排班的场景
func (s *Scheduler) emptyOnCallGrid() domain.AssignmentGrid {
	grid := make(domain.AssignmentGrid, len(s.locations))
	for _, loc := range s.locations {
		row := make(map[domain.Weekday]string, len(domain.RotationDays))
		for _, day := range domain.RotationDays {
			row[day] = ""
		}
		grid[loc.Name] = row
	}
	return grid
}

func onCallAssignee(onCall *domain.Schedule, locName string, day domain.Weekday) string {
	if onCall == nil {
		return ""
	}
	return onCall.Assignments[locName][day]
}

func sortedCoverageLocations(coverage map[string]domain.AssignmentLabel) []string {
	names := make([]string, 0, len(coverage))
	for name := range coverage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func removeEmployee(pool []*domain.Employee, id uuid.UUID) []*domain.Employee {
	for i, emp := range pool {
		if emp.ID == id {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
