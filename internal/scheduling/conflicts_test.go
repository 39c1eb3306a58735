package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

func slotAt(day time.Time, hour, minute, durationMinutes int) domain.TimeSlot {
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return domain.TimeSlot{
		Start:           start,
		End:             start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
		Available:       true,
	}
}

func eventAt(day time.Time, startHour, startMinute, durationMinutes int) domain.CalendarEvent {
	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, day.Location())
	return domain.CalendarEvent{
		ID:     "evt-1",
		Start:  start,
		End:    start.Add(time.Duration(durationMinutes) * time.Minute),
		Status: domain.EventStatusConfirmed,
	}
}

func TestMarkBusyConflicts(t *testing.T) {
	day := date(2025, 6, 4)

	t.Run("overlapping slot is marked busy", func(t *testing.T) {
		slots := []domain.TimeSlot{slotAt(day, 10, 0, 60)}
		events := []domain.CalendarEvent{eventAt(day, 10, 30, 60)}

		out := MarkBusyConflicts(slots, events, 15)

		require.Len(t, out, 1)
		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonOverlap, out[0].Reason)
	})

	t.Run("buffer extends the event on both sides", func(t *testing.T) {
		// Событие 10:00-11:00, буфер 15 минут
		events := []domain.CalendarEvent{eventAt(day, 10, 0, 60)}

		// Слот заканчивается в 9:50 - внутри буфера перед событием
		before := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 8, 50, 60)}, events, 15)
		assert.False(t, before[0].Available)

		// Слот начинается в 11:10 - внутри буфера после события
		after := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 11, 10, 60)}, events, 15)
		assert.False(t, after[0].Available)
	})

	t.Run("boundary exactly at buffer distance is available", func(t *testing.T) {
		// Неравенства строгие: старт ровно через buffer минут после конца
		// события не считается конфликтом
		events := []domain.CalendarEvent{eventAt(day, 10, 0, 60)}

		exactAfter := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 11, 15, 60)}, events, 15)
		assert.True(t, exactAfter[0].Available)

		exactBefore := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 8, 45, 60)}, events, 15)
		assert.True(t, exactBefore[0].Available)
	})

	t.Run("cancelled event does not block", func(t *testing.T) {
		event := eventAt(day, 10, 0, 60)
		event.Status = domain.EventStatusCancelled

		out := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 10, 0, 60)}, []domain.CalendarEvent{event}, 15)

		assert.True(t, out[0].Available)
	})

	t.Run("tentative event blocks", func(t *testing.T) {
		event := eventAt(day, 10, 0, 60)
		event.Status = domain.EventStatusTentative

		out := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 10, 0, 60)}, []domain.CalendarEvent{event}, 15)

		assert.False(t, out[0].Available)
	})

	t.Run("malformed event is skipped", func(t *testing.T) {
		// Событие без конца не должно ронять расчёт
		event := domain.CalendarEvent{ID: "broken", Start: time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), Status: domain.EventStatusConfirmed}

		out := MarkBusyConflicts([]domain.TimeSlot{slotAt(day, 10, 0, 60)}, []domain.CalendarEvent{event}, 15)

		assert.True(t, out[0].Available)
	})

	t.Run("input slots are not mutated", func(t *testing.T) {
		slots := []domain.TimeSlot{slotAt(day, 10, 0, 60)}
		events := []domain.CalendarEvent{eventAt(day, 10, 0, 60)}

		_ = MarkBusyConflicts(slots, events, 15)

		assert.True(t, slots[0].Available)
	})

	t.Run("already busy slot keeps its original reason", func(t *testing.T) {
		slot := slotAt(day, 10, 0, 60)
		slot.Available = false
		slot.Reason = domain.ReasonDailyLimit

		out := MarkBusyConflicts([]domain.TimeSlot{slot}, []domain.CalendarEvent{eventAt(day, 10, 0, 60)}, 15)

		assert.Equal(t, domain.ReasonDailyLimit, out[0].Reason)
	})
}

func defaultConstraints() domain.SchedulingConstraints {
	return domain.SchedulingConstraints{
		MaxHoursPerDay:          domain.DefaultMaxHoursPerDay,
		MaxLessonsPerDay:        domain.DefaultMaxLessonsPerDay,
		MaxHoursPerWeek:         domain.DefaultMaxHoursPerWeek,
		MaxLessonsPerWeek:       domain.DefaultMaxLessonsPerWeek,
		EarliestStartTime:       domain.DefaultEarliestStartTime,
		LatestEndTime:           domain.DefaultLatestEndTime,
		MinBufferBetweenLessons: domain.DefaultMinBufferMinutes,
	}
}

func confirmedLesson(day time.Time, start string, durationMinutes int) *domain.Lesson {
	return &domain.Lesson{
		StudentID:       1,
		LessonDate:      day,
		StartTime:       types.TimeString(start),
		DurationMinutes: durationMinutes,
		Status:          domain.StatusConfirmed,
	}
}

func TestApplyStudentCaps(t *testing.T) {
	day := date(2025, 6, 4)

	t.Run("no existing lessons keeps slots available", func(t *testing.T) {
		slots := []domain.TimeSlot{slotAt(day, 9, 0, 60)}

		out := ApplyStudentCaps(slots, day, 60, nil, defaultConstraints())

		assert.True(t, out[0].Available)
	})

	t.Run("daily hour limit", func(t *testing.T) {
		// 1.5 часа уже занято, запрошен ещё час при лимите 2.0
		lessons := []*domain.Lesson{confirmedLesson(day, "09:00", 90)}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonDailyLimit, out[0].Reason)
	})

	t.Run("reaching the limit exactly is allowed", func(t *testing.T) {
		// 1 час занят, ещё час доводит ровно до лимита 2.0 - не превышение
		lessons := []*domain.Lesson{confirmedLesson(day, "09:00", 60)}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.True(t, out[0].Available)
	})

	t.Run("daily lesson count limit", func(t *testing.T) {
		// Два коротких занятия не превышают часовой лимит, но исчерпывают
		// количественный
		lessons := []*domain.Lesson{
			confirmedLesson(day, "09:00", 30),
			confirmedLesson(day, "11:00", 30),
		}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 30)}, day, 30, lessons, defaultConstraints())

		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonDailyCount, out[0].Reason)
	})

	t.Run("weekly hour limit counts other days of the week", func(t *testing.T) {
		// 5.5 часов на других днях той же недели, запрошен ещё час при лимите 6.0
		lessons := []*domain.Lesson{
			confirmedLesson(date(2025, 6, 2), "09:00", 120),
			confirmedLesson(date(2025, 6, 3), "09:00", 120),
			confirmedLesson(date(2025, 6, 5), "09:00", 90),
		}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonWeeklyLimit, out[0].Reason)
	})

	t.Run("lessons from another week are ignored", func(t *testing.T) {
		lessons := []*domain.Lesson{
			confirmedLesson(date(2025, 5, 26), "09:00", 120),
			confirmedLesson(date(2025, 5, 27), "09:00", 120),
			confirmedLesson(date(2025, 5, 28), "09:00", 120),
		}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.True(t, out[0].Available)
	})

	t.Run("buffer violation after existing lesson", func(t *testing.T) {
		// Занятие 10:00-11:00, слот в 11:10 - зазор 10 минут при буфере 15
		lessons := []*domain.Lesson{confirmedLesson(day, "10:00", 60)}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 11, 10, 60)}, day, 60, lessons, defaultConstraints())

		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonBuffer, out[0].Reason)
	})

	t.Run("buffer boundary exactly at buffer distance is allowed", func(t *testing.T) {
		lessons := []*domain.Lesson{confirmedLesson(day, "10:00", 60)}

		after := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 11, 15, 60)}, day, 60, lessons, defaultConstraints())
		assert.True(t, after[0].Available)

		before := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 8, 45, 60)}, day, 60, lessons, defaultConstraints())
		assert.True(t, before[0].Available)
	})

	t.Run("cancelled lessons do not consume quota", func(t *testing.T) {
		lessons := []*domain.Lesson{
			{StudentID: 1, LessonDate: day, StartTime: "09:00", DurationMinutes: 120, Status: domain.StatusCancelledByStudent},
			{StudentID: 1, LessonDate: day, StartTime: "11:00", DurationMinutes: 120, Status: domain.StatusNoShow},
		}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.True(t, out[0].Available)
	})

	t.Run("pending lessons do not consume quota", func(t *testing.T) {
		lessons := []*domain.Lesson{
			{StudentID: 1, LessonDate: day, StartTime: "09:00", DurationMinutes: 120, Status: domain.StatusPending},
		}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 14, 0, 60)}, day, 60, lessons, defaultConstraints())

		assert.True(t, out[0].Available)
	})

	t.Run("first failing check wins", func(t *testing.T) {
		// Дневной часовой лимит и буфер нарушены одновременно - причина
		// должна быть от первой проверки
		lessons := []*domain.Lesson{confirmedLesson(day, "10:00", 90)}

		out := ApplyStudentCaps([]domain.TimeSlot{slotAt(day, 11, 40, 60)}, day, 60, lessons, defaultConstraints())

		assert.False(t, out[0].Available)
		assert.Equal(t, domain.ReasonDailyLimit, out[0].Reason)
	})

	t.Run("slot already marked busy is left untouched", func(t *testing.T) {
		slot := slotAt(day, 10, 0, 60)
		slot.Available = false
		slot.Reason = domain.ReasonOverlap

		lessons := []*domain.Lesson{confirmedLesson(day, "09:00", 120)}

		out := ApplyStudentCaps([]domain.TimeSlot{slot}, day, 60, lessons, defaultConstraints())

		assert.Equal(t, domain.ReasonOverlap, out[0].Reason)
	})
}
