package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type ScheduleType string

const (
	ScheduleTypeLabAssignment ScheduleType = "lab-assignment"
	ScheduleTypeOnCall        ScheduleType = "on-call"
)

type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

// AssignmentLabel 是一个封闭的取值集合，大小写和拼写必须与前端保持一致
type AssignmentLabel string

const (
	LabelInpatients AssignmentLabel = "Inpatients"
	LabelCathInpat  AssignmentLabel = "Cath/Inpat."
	LabelORInpat    AssignmentLabel = "OR/Inpat."
	LabelSedatInpat AssignmentLabel = "Sedat./Inpat."
	LabelMWHMHM     AssignmentLabel = "MWH/MHM"
	LabelTHC        AssignmentLabel = "THC"
	LabelTXInpat    AssignmentLabel = "TX-Inpat."
	LabelMPGFetal   AssignmentLabel = "MPG-Fetal"
	LabelPTO        AssignmentLabel = "PTO"
	LabelNA         AssignmentLabel = "N/A"
	LabelUnassigned AssignmentLabel = ""
)

// RotationLabels 是生成器轮转填充的业务标签，不包含 PTO 和 N/A，
// PTO 只会由休假产生，N/A 只允许手工编辑时填入
var RotationLabels = []AssignmentLabel{
	LabelInpatients,
	LabelCathInpat,
	LabelORInpat,
	LabelSedatInpat,
	LabelMWHMHM,
	LabelTHC,
	LabelTXInpat,
	LabelMPGFetal,
}

var allLabels = append([]AssignmentLabel{LabelPTO, LabelNA, LabelUnassigned}, RotationLabels...)

func IsValidLabel(label AssignmentLabel) bool {
	return slices.Contains(allLabels, label)
}

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// RotationDays 是排班表覆盖的天数，两种班表都只排周一到周五
var RotationDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayOfTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

var timeOfWeekday = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

func WeekdayOf(t time.Time) Weekday {
	return weekdayOfTime[t.Weekday()]
}

func IsValidWeekday(day Weekday) bool {
	_, ok := timeOfWeekday[day]
	return ok
}

// ParseWeekStartDay 解析配置中的每周第一天，只允许 Monday 和 Sunday
func ParseWeekStartDay(s string) (time.Weekday, error) {
	switch s {
	case "Monday":
		return time.Monday, nil
	case "Sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("非法的每周第一天: %s", s)
	}
}

// NormalizeWeekStart 把任意日期归一化到其所在周的第一天（只保留日期部分，UTC）。
// 同一逻辑周的所有班表必须使用相同的归一化结果，否则相等性比较会失败
func NormalizeWeekStart(t time.Time, firstDay time.Weekday) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) - int(firstDay) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// DateOfWeekday 返回归一化后的周起始日期所在周中某个 weekday 对应的日期
func DateOfWeekday(weekStart time.Time, day Weekday) time.Time {
	offset := (int(timeOfWeekday[day]) - int(weekStart.Weekday()) + 7) % 7
	return weekStart.AddDate(0, 0, offset)
}

// WeekKey 返回用于 (weekStart, type) 键比较的日期串
func WeekKey(weekStart time.Time) string {
	return weekStart.Format("2006-01-02")
}

// AssignmentGrid: subject -> weekday -> 单元格内容。
// lab-assignment 班表的 subject 是员工姓名，单元格是 AssignmentLabel；
// on-call 班表的 subject 是地点名称，单元格是员工姓名
type AssignmentGrid map[string]map[Weekday]string

// Clone 深拷贝，避免草稿之间共享底层 map
func (g AssignmentGrid) Clone() AssignmentGrid {
	cloned := make(AssignmentGrid, len(g))
	for subject, row := range g {
		clonedRow := make(map[Weekday]string, len(row))
		for day, value := range row {
			clonedRow[day] = value
		}
		cloned[subject] = clonedRow
	}
	return cloned
}

type Schedule struct {
	ID          uuid.UUID      `json:"id"`
	WeekStart   time.Time      `json:"weekStart"`
	Type        ScheduleType   `json:"scheduleType"`
	Status      ScheduleStatus `json:"status"`
	Assignments AssignmentGrid `json:"assignments"`
	CreatedAt   time.Time      `json:"createdAt"`
	Version     int32          `json:"-"`
}

type GenerateRequest struct {
	WeekStart  time.Time    `json:"weekStart"`
	Type       ScheduleType `json:"scheduleType"`
	DraftCount int          `json:"draftCount"`
	// EmptySeed 只对 on-call 班表有效，生成全空的网格供手工排班
	EmptySeed bool `json:"emptySeed"`
}

type PublishResult struct {
	ID     uuid.UUID      `json:"id"`
	Status ScheduleStatus `json:"status"`
}
