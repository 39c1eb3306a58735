package domain

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// SchedulingConstraints represents the instructor's booking limits and
// default operating-hours window.
//
// A copy returned to a caller is a snapshot: concurrent updates never mutate
// an already returned value.
type SchedulingConstraints struct {
	MaxHoursPerDay    float64
	MaxLessonsPerDay  int
	MaxHoursPerWeek   float64
	MaxLessonsPerWeek int

	// Дефолтные границы рабочего дня, используются когда для дня недели
	// нет отдельной записи WorkingHours
	EarliestStartTime types.TimeString
	LatestEndTime     types.TimeString

	MinBufferBetweenLessons int // минуты

	UpdatedAt time.Time
}

// Clone returns an independent copy of the constraints
func (c *SchedulingConstraints) Clone() *SchedulingConstraints {
	out := *c
	return &out
}

// ConstraintsUpdate partial update of scheduling constraints; nil fields keep
// their current value
type ConstraintsUpdate struct {
	MaxHoursPerDay          *float64
	MaxLessonsPerDay        *int
	MaxHoursPerWeek         *float64
	MaxLessonsPerWeek       *int
	EarliestStartTime       *types.TimeString
	LatestEndTime           *types.TimeString
	MinBufferBetweenLessons *int
}

// HasChanges reports whether at least one field is set
func (u ConstraintsUpdate) HasChanges() bool {
	return u.MaxHoursPerDay != nil ||
		u.MaxLessonsPerDay != nil ||
		u.MaxHoursPerWeek != nil ||
		u.MaxLessonsPerWeek != nil ||
		u.EarliestStartTime != nil ||
		u.LatestEndTime != nil ||
		u.MinBufferBetweenLessons != nil
}

// WorkingHours represents the operating window for a single weekday
type WorkingHours struct {
	Weekday time.Weekday
	Start   types.TimeString
	End     types.TimeString
	Enabled bool
}

// WorkingHoursByDay maps weekdays to their operating windows.
// A weekday missing from the map falls back to the flat constraint defaults.
type WorkingHoursByDay map[time.Weekday]WorkingHours

// Clone returns an independent copy of the map
func (w WorkingHoursByDay) Clone() WorkingHoursByDay {
	out := make(WorkingHoursByDay, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ForDate возвращает рабочие часы для конкретной даты с учётом дефолтов
// из ограничений; ok=false если для дня недели нет отдельной записи
func (w WorkingHoursByDay) ForDate(date time.Time) (WorkingHours, bool) {
	wh, ok := w[date.Weekday()]
	return wh, ok
}
