package scheduler

import (
	"fmt"
	"time"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// ConfigurationError 表示生成班表所必须的地点记录缺失，
// 本次生成调用直接失败，不会重试
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("缺少必须的地点记录: %s", e.Missing)
}

// DependencyNotMetError 表示 lab-assignment 班表的前置条件不满足：
// 对应周的 on-call 班表还没有发布
type DependencyNotMetError struct {
	WeekStart time.Time
	Missing   domain.ScheduleType
}

func (e *DependencyNotMetError) Error() string {
	return fmt.Sprintf("%s 周的 %s 班表尚未发布，无法生成", domain.WeekKey(e.WeekStart), e.Missing)
}

// ValidationError 表示输入在开始生成之前就被拒绝了
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
