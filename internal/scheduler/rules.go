package scheduler

import (
	"slices"

	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

type RuleKind int

const (
	// RuleForce 强制某个单元格使用固定标签
	RuleForce RuleKind = iota
	// RuleForbid 把某个标签从该单元格的候选池中移除
	RuleForbid
)

// Rule 是一条固定的院内业务规则。
// 规则表按顺序求值：休假产生的 PTO 优先于任何规则，
// 第一条命中的强制规则直接决定单元格内容，
// 禁止规则则在打分前收窄候选池
type Rule struct {
	Name    string
	Subject string
	// Days 为 nil 表示每天都命中
	Days []domain.Weekday
	Kind RuleKind
	// 对于 RuleForbid，Label 为空表示禁止所有标签
	Label domain.AssignmentLabel
}

func (r Rule) matches(subject string, day domain.Weekday) bool {
	if r.Subject != subject {
		return false
	}
	return r.Days == nil || slices.Contains(r.Days, day)
}

// DefaultRules 返回目前生效的院内规则
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "Emilio 周一至周四固定负责 THC",
			Subject: "Emilio",
			Days:    []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday},
			Kind:    RuleForce,
			Label:   domain.LabelTHC,
		},
		{
			Name:    "Emilio 周五不排班",
			Subject: "Emilio",
			Days:    []domain.Weekday{domain.Friday},
			Kind:    RuleForbid,
			Label:   domain.LabelUnassigned,
		},
		{
			Name:    "Martha 周二周五固定负责移植住院",
			Subject: "Martha",
			Days:    []domain.Weekday{domain.Tuesday, domain.Friday},
			Kind:    RuleForce,
			Label:   domain.LabelTXInpat,
		},
	}
}

func forcedLabel(rules []Rule, subject string, day domain.Weekday) (domain.AssignmentLabel, bool) {
	for _, r := range rules {
		if r.Kind == RuleForce && r.matches(subject, day) {
			return r.Label, true
		}
	}
	return domain.LabelUnassigned, false
}

func isForbidden(rules []Rule, subject string, day domain.Weekday, label domain.AssignmentLabel) bool {
	for _, r := range rules {
		if r.Kind != RuleForbid || !r.matches(subject, day) {
			continue
		}
		if r.Label == domain.LabelUnassigned || r.Label == label {
			return true
		}
	}
	return false
}

// PrimaryLocation 是 on-call 班表必须存在的主地点，
// 找不到时生成调用以 ConfigurationError 失败
const PrimaryLocation = "JDCH"

// DefaultOnCallCoverage 是跨班表规则的地点到标签映射：
// 某天在某地点值班的员工，当天的 lab-assignment 单元格被强制为对应标签
func DefaultOnCallCoverage() map[string]domain.AssignmentLabel {
	return map[string]domain.AssignmentLabel{
		"JDCH": domain.LabelORInpat,
		"W/M":  domain.LabelMWHMHM,
	}
}
