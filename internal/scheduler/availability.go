package scheduler

import (
	"slices"
	"time"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// IsAvailableOn 检查员工的可用星期集合是否包含 date 所在的星期。
// 纯函数，只依赖员工记录和日期本身
func IsAvailableOn(emp *domain.Employee, date time.Time) bool {
	return slices.Contains(emp.AvailableWeekdays, domain.WeekdayOf(date))
}

// IsOnApprovedLeave 检查员工在 date 当天是否处于已批准的休假中。
// 只按自然日比较（包含起止两端），只有 approved 状态的申请才生效
func IsOnApprovedLeave(emp *domain.Employee, date time.Time) bool {
	day := truncateToDate(date)
	for _, req := range emp.TimeOffRequests {
		if req.Status != domain.TimeOffApproved {
			continue
		}
		start := truncateToDate(req.StartDate)
		end := truncateToDate(req.EndDate)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
