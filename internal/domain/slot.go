package domain

import "time"

// TimeSlot represents a candidate bookable time window of fixed duration.
// Immutable once produced: re-annotation creates a new value, the original
// is never mutated in place.
type TimeSlot struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Available       bool
	Reason          string // причина недоступности, пустая для доступных слотов
}

// Причины недоступности слота
// Проверки применяются по порядку, слот получает причину первой сработавшей
const (
	ReasonOverlap     = "conflicts with an existing booking"
	ReasonDailyLimit  = "daily hour limit exceeded"
	ReasonDailyCount  = "daily lesson limit exceeded"
	ReasonWeeklyLimit = "weekly hour limit exceeded"
	ReasonWeeklyCount = "weekly lesson limit exceeded"
	ReasonBuffer      = "insufficient buffer time between lessons"
)

// Hours returns the slot duration in hours
func (s *TimeSlot) Hours() float64 {
	return float64(s.DurationMinutes) / 60.0
}

// ConstraintFlags aggregate flags explaining why a day has fewer slots
type ConstraintFlags struct {
	DailyLimitReached     bool
	WeeklyLimitReached    bool
	OutsideOperatingHours bool
}

// DayAvailability computed availability for a single day.
// Derived data: recomputed fresh on every call, never partially updated.
type DayAvailability struct {
	Date                time.Time
	Slots               []TimeSlot
	TotalAvailableSlots int
	TotalAvailableHours float64
	Flags               ConstraintFlags
}

// WeekAvailability computed availability for a Monday-aligned week
type WeekAvailability struct {
	WeekStart time.Time // понедельник
	WeekEnd   time.Time // WeekStart + 7 дней
	Days      []DayAvailability

	TotalWeeklyHours       float64
	RemainingWeeklyHours   float64
	RemainingWeeklyLessons int
}
