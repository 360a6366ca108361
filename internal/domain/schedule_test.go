package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWeekStart(t *testing.T) {
	// 2026-03-04 是周三
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	monday := NormalizeWeekStart(wednesday, time.Monday)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), monday)

	sunday := NormalizeWeekStart(wednesday, time.Sunday)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), sunday)

	// 已经是周起始日的日期归一化到自身
	assert.Equal(t, monday, NormalizeWeekStart(monday, time.Monday))
}

func TestDateOfWeekday(t *testing.T) {
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, weekStart, DateOfWeekday(weekStart, Monday))
	assert.Equal(t, weekStart.AddDate(0, 0, 4), DateOfWeekday(weekStart, Friday))
	assert.Equal(t, Friday, WeekdayOf(DateOfWeekday(weekStart, Friday)))
}

func TestParseWeekStartDay(t *testing.T) {
	day, err := ParseWeekStartDay("Monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, day)

	day, err = ParseWeekStartDay("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	_, err = ParseWeekStartDay("Wednesday")
	assert.Error(t, err)
}

func TestIsValidLabel(t *testing.T) {
	for _, label := range RotationLabels {
		assert.True(t, IsValidLabel(label))
	}
	assert.True(t, IsValidLabel(LabelPTO))
	assert.True(t, IsValidLabel(LabelNA))
	assert.True(t, IsValidLabel(LabelUnassigned))

	assert.False(t, IsValidLabel("Surgery"))
	// 标签集合是封闭的，大小写敏感
	assert.False(t, IsValidLabel("pto"))
}

func TestAssignmentGridClone(t *testing.T) {
	grid := AssignmentGrid{
		"Martha": {Monday: string(LabelTHC)},
	}

	cloned := grid.Clone()
	cloned["Martha"][Monday] = string(LabelPTO)

	assert.Equal(t, string(LabelTHC), grid["Martha"][Monday])
}
