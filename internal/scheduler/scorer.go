package scheduler

import (
	"math/rand"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/jdch-echo-lab/duty-roster/backend/internal/domain"
)

// scoreContext 携带一次打分所需的槽位信息和本轮生成的累计状态
type scoreContext struct {
	scheduleType domain.ScheduleType
	day          domain.Weekday
	// slot 是槽位标识：lab-assignment 为标签，on-call 为地点名
	slot string
	// prevWeek 是上一周已发布的同类型班表，可能为 nil
	prevWeek *domain.Schedule
	// slotCounts 统计本轮生成中每个员工已经被分到的槽位数
	slotCounts map[uuid.UUID]int
	// hoursToday 统计员工当天已分配的名义工时
	hoursToday map[uuid.UUID]float64
	shiftHours float64
}

// pickCandidate 从合法候选中选出得分最高的员工，候选为空时返回 nil。
// 先用 Fisher-Yates 洗牌打乱顺序，再按加权启发式打分做稳定排序，
// 因此同分的并列完全由洗牌决定，这也是引擎中唯一的随机性来源
func pickCandidate(rng *rand.Rand, eligible []*domain.Employee, ctx *scoreContext) *domain.Employee {
	if len(eligible) == 0 {
		return nil
	}

	shuffled := slices.Clone(eligible)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	scores := make(map[uuid.UUID]int, len(shuffled))
	for _, emp := range shuffled {
		scores[emp.ID] = scoreEmployee(emp, ctx)
	}

	sort.SliceStable(shuffled, func(i, j int) bool {
		return scores[shuffled[i].ID] > scores[shuffled[j].ID]
	})

	return shuffled[0]
}

func scoreEmployee(emp *domain.Employee, ctx *scoreContext) int {
	score := 0

	// 上一周同一天没有排过同样的槽位则加 3 分，降低连续重复
	if !hadSameSlotLastWeek(emp, ctx) {
		score += 3
	}

	// 本轮中已分到的槽位越多得分越低，让整周的负载自然均衡
	score += (5 - ctx.slotCounts[emp.ID]) * 2

	if ctx.hoursToday[emp.ID] < emp.MaxHoursPerDay {
		score += 2
	}

	if slices.Contains(emp.PreferredShifts, ctx.slot) {
		score++
	}

	return score
}

func hadSameSlotLastWeek(emp *domain.Employee, ctx *scoreContext) bool {
	if ctx.prevWeek == nil {
		return false
	}

	switch ctx.scheduleType {
	case domain.ScheduleTypeLabAssignment:
		// lab 班表的行是员工，单元格是标签
		return ctx.prevWeek.Assignments[emp.Name][ctx.day] == ctx.slot
	case domain.ScheduleTypeOnCall:
		// on-call 班表的行是地点，单元格是员工姓名
		return ctx.prevWeek.Assignments[ctx.slot][ctx.day] == emp.Name
	default:
		return false
	}
}
