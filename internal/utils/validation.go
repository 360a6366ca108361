package utils

import (
	"fmt"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

func ValidateTimeOffRequestDates(request *domain.TimeOffRequest) error {
	if request.StartDate.IsZero() || request.EndDate.IsZero() {
		return fmt.Errorf("休假的起止日期不能为空")
	}
	if request.StartDate.After(request.EndDate) {
		return fmt.Errorf("休假的开始日期不能晚于结束日期")
	}
	return nil
}

func ValidateEmployeeAvailability(employee *domain.Employee) error {
	seen := make(map[domain.Weekday]bool)
	for _, day := range employee.AvailableWeekdays {
		if !domain.IsValidWeekday(day) {
			return fmt.Errorf("非法的可用星期: %s", day)
		}
		if seen[day] {
			return fmt.Errorf("可用星期中存在重复项: %s", day)
		}
		seen[day] = true
	}
	return nil
}
