package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

type fakeSchedule struct {
	constraints domain.SchedulingConstraints
	// disabledDates даты, для которых день объявлен нерабочим
	disabledDates map[string]bool
}

func (f *fakeSchedule) GetConstraints(_ context.Context) (*domain.SchedulingConstraints, error) {
	c := f.constraints
	return &c, nil
}

func (f *fakeSchedule) GetWorkingHoursForDate(_ context.Context, date time.Time) (domain.WorkingHours, bool, error) {
	if f.disabledDates[date.Format(domain.DateFormat)] {
		return domain.WorkingHours{Weekday: date.Weekday(), Enabled: false}, true, nil
	}
	return domain.WorkingHours{}, false, nil
}

type fakeEvents struct {
	events []domain.CalendarEvent
}

func (f *fakeEvents) GetEvents(_ context.Context, start, end time.Time) ([]domain.CalendarEvent, error) {
	out := make([]domain.CalendarEvent, 0)
	for _, e := range f.events {
		if e.Start.Before(end) && e.End.After(start) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLessons struct {
	lessons []*domain.Lesson
}

func (f *fakeLessons) GetWithFilter(_ context.Context, filter domain.LessonsFilter) ([]*domain.Lesson, error) {
	out := make([]*domain.Lesson, 0)
	for _, l := range f.lessons {
		if filter.StudentID != nil && l.StudentID != *filter.StudentID {
			continue
		}
		if filter.StartDate != nil && l.LessonDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && l.LessonDate.After(*filter.EndDate) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestCalculator(schedule *fakeSchedule, events *fakeEvents, lessons *fakeLessons) *Calculator {
	if schedule == nil {
		schedule = &fakeSchedule{constraints: defaultConstraints()}
	}
	if events == nil {
		events = &fakeEvents{}
	}
	if lessons == nil {
		lessons = &fakeLessons{}
	}
	return NewCalculator(schedule, events, lessons, nopLogger{})
}

func TestCalculateDay(t *testing.T) {
	ctx := context.Background()
	day := date(2025, 6, 4)

	t.Run("empty day produces full slot grid", func(t *testing.T) {
		calc := newTestCalculator(nil, nil, nil)

		result, err := calc.CalculateDay(ctx, day, 60, nil)
		require.NoError(t, err)

		// 09:00-17:00, 60 минут + 15 минут буфера
		assert.Len(t, result.Slots, 6)
		assert.Equal(t, 6, result.TotalAvailableSlots)
		assert.InDelta(t, 6.0, result.TotalAvailableHours, 0.001)
		assert.False(t, result.Flags.OutsideOperatingHours)
	})

	t.Run("calendar event blocks overlapping slots", func(t *testing.T) {
		// Событие 10:00-12:00: с учётом буфера в 15 минут блокирует слоты
		// 09:00 (конец в буфере перед событием), 10:15 и 11:30
		events := &fakeEvents{events: []domain.CalendarEvent{eventAt(day, 10, 0, 120)}}
		calc := newTestCalculator(nil, events, nil)

		result, err := calc.CalculateDay(ctx, day, 60, nil)
		require.NoError(t, err)

		require.Len(t, result.Slots, 6)
		assert.Equal(t, 3, result.TotalAvailableSlots)
		for _, slot := range result.Slots[:3] {
			assert.False(t, slot.Available)
			assert.Equal(t, domain.ReasonOverlap, slot.Reason)
		}
		for _, slot := range result.Slots[3:] {
			assert.True(t, slot.Available)
		}
	})

	t.Run("another student's lesson blocks the slot for everyone", func(t *testing.T) {
		lessons := &fakeLessons{lessons: []*domain.Lesson{
			{StudentID: 7, LessonDate: day, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		calc := newTestCalculator(nil, nil, lessons)

		studentID := int64(1)
		result, err := calc.CalculateDay(ctx, day, 60, &studentID)
		require.NoError(t, err)

		assert.False(t, result.Slots[0].Available)
		assert.Equal(t, domain.ReasonOverlap, result.Slots[0].Reason)
	})

	t.Run("non-working day sets the flag and yields no slots", func(t *testing.T) {
		schedule := &fakeSchedule{
			constraints:   defaultConstraints(),
			disabledDates: map[string]bool{day.Format(domain.DateFormat): true},
		}
		calc := newTestCalculator(schedule, nil, nil)

		result, err := calc.CalculateDay(ctx, day, 60, nil)
		require.NoError(t, err)

		assert.Empty(t, result.Slots)
		assert.True(t, result.Flags.OutsideOperatingHours)
		assert.Zero(t, result.TotalAvailableSlots)
	})

	t.Run("student at daily limit has no available slots", func(t *testing.T) {
		studentID := int64(1)
		lessons := &fakeLessons{lessons: []*domain.Lesson{
			{StudentID: studentID, LessonDate: day, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
			{StudentID: studentID, LessonDate: day, StartTime: "10:15", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		calc := newTestCalculator(nil, nil, lessons)

		result, err := calc.CalculateDay(ctx, day, 60, &studentID)
		require.NoError(t, err)

		assert.Zero(t, result.TotalAvailableSlots)
		assert.True(t, result.Flags.DailyLimitReached)
	})

	t.Run("anonymous request skips personal caps", func(t *testing.T) {
		// Те же два занятия, но без studentID: заняты только пересечения
		lessons := &fakeLessons{lessons: []*domain.Lesson{
			{StudentID: 1, LessonDate: day, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
			{StudentID: 1, LessonDate: day, StartTime: "10:15", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		calc := newTestCalculator(nil, nil, lessons)

		result, err := calc.CalculateDay(ctx, day, 60, nil)
		require.NoError(t, err)

		assert.Greater(t, result.TotalAvailableSlots, 0)
		assert.False(t, result.Flags.DailyLimitReached)
	})
}

func TestCalculateWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("week is monday aligned and covers seven days", func(t *testing.T) {
		calc := newTestCalculator(nil, nil, nil)

		result, err := calc.CalculateWeek(ctx, date(2025, 6, 4), 60, nil)
		require.NoError(t, err)

		assert.Equal(t, date(2025, 6, 2), result.WeekStart)
		assert.Equal(t, date(2025, 6, 9), result.WeekEnd)
		require.Len(t, result.Days, 7)
		assert.Equal(t, date(2025, 6, 2), result.Days[0].Date)
		assert.Equal(t, date(2025, 6, 8), result.Days[6].Date)
	})

	t.Run("remaining quota reflects consumed lessons", func(t *testing.T) {
		studentID := int64(1)
		lessons := &fakeLessons{lessons: []*domain.Lesson{
			{StudentID: studentID, LessonDate: date(2025, 6, 2), StartTime: "09:00", DurationMinutes: 90, Status: domain.StatusConfirmed},
			{StudentID: studentID, LessonDate: date(2025, 6, 3), StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}}
		calc := newTestCalculator(nil, nil, lessons)

		result, err := calc.CalculateWeek(ctx, date(2025, 6, 4), 60, &studentID)
		require.NoError(t, err)

		// 6.0 - 2.5 потраченных часа
		assert.InDelta(t, 3.5, result.RemainingWeeklyHours, 0.001)
		assert.Equal(t, 3, result.RemainingWeeklyLessons)
	})

	t.Run("remaining quota never goes negative", func(t *testing.T) {
		studentID := int64(1)
		lessons := &fakeLessons{lessons: []*domain.Lesson{
			{StudentID: studentID, LessonDate: date(2025, 6, 2), StartTime: "09:00", DurationMinutes: 240, Status: domain.StatusConfirmed},
			{StudentID: studentID, LessonDate: date(2025, 6, 3), StartTime: "09:00", DurationMinutes: 240, Status: domain.StatusConfirmed},
		}}
		calc := newTestCalculator(nil, nil, lessons)

		result, err := calc.CalculateWeek(ctx, date(2025, 6, 4), 60, &studentID)
		require.NoError(t, err)

		assert.Zero(t, result.RemainingWeeklyHours)
	})

	t.Run("without student remaining quota equals configured maximum", func(t *testing.T) {
		calc := newTestCalculator(nil, nil, nil)

		result, err := calc.CalculateWeek(ctx, date(2025, 6, 4), 60, nil)
		require.NoError(t, err)

		assert.InDelta(t, domain.DefaultMaxHoursPerWeek, result.RemainingWeeklyHours, 0.001)
		assert.Equal(t, domain.DefaultMaxLessonsPerWeek, result.RemainingWeeklyLessons)
	})
}

func TestFindNextSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first slot not earlier than from", func(t *testing.T) {
		calc := newTestCalculator(nil, nil, nil)

		from := time.Date(2025, 6, 4, 10, 30, 0, 0, time.UTC)
		slot, err := calc.FindNextSlot(ctx, from, 60, nil, 7)
		require.NoError(t, err)

		require.NotNil(t, slot)
		// 10:15 уже начался, ближайший подходящий - 11:30
		assert.Equal(t, time.Date(2025, 6, 4, 11, 30, 0, 0, time.UTC), slot.Start)
	})

	t.Run("skips fully booked day", func(t *testing.T) {
		day := date(2025, 6, 4)
		events := &fakeEvents{events: []domain.CalendarEvent{eventAt(day, 0, 0, 24*60)}}
		calc := newTestCalculator(nil, events, nil)

		slot, err := calc.FindNextSlot(ctx, day, 60, nil, 7)
		require.NoError(t, err)

		require.NotNil(t, slot)
		assert.Equal(t, time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC), slot.Start)
	})

	t.Run("exhausted horizon returns nil without error", func(t *testing.T) {
		schedule := &fakeSchedule{
			constraints: domain.SchedulingConstraints{
				MaxHoursPerDay:    domain.DefaultMaxHoursPerDay,
				MaxLessonsPerDay:  domain.DefaultMaxLessonsPerDay,
				MaxHoursPerWeek:   domain.DefaultMaxHoursPerWeek,
				MaxLessonsPerWeek: domain.DefaultMaxLessonsPerWeek,
				// Окно короче любой длительности занятия
				EarliestStartTime:       "09:00",
				LatestEndTime:           "09:15",
				MinBufferBetweenLessons: domain.DefaultMinBufferMinutes,
			},
		}
		calc := newTestCalculator(schedule, nil, nil)

		slot, err := calc.FindNextSlot(ctx, date(2025, 6, 4), 60, nil, 5)
		require.NoError(t, err)
		assert.Nil(t, slot)
	})
}
