package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/integrations/gcalendar"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

type mockLessonRepo struct {
	dayLessons     []*domain.Lesson
	studentLessons []*domain.Lesson

	created         *domain.Lesson
	createErr       error
	calendarEventID *string
}

func (m *mockLessonRepo) Create(_ context.Context, lesson *domain.Lesson) (*domain.Lesson, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	out := *lesson
	out.ID = 42
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	m.created = &out
	return &out, nil
}

func (m *mockLessonRepo) GetWithFilter(_ context.Context, filter domain.LessonsFilter) ([]*domain.Lesson, error) {
	if filter.StudentID != nil {
		return m.studentLessons, nil
	}
	return m.dayLessons, nil
}

func (m *mockLessonRepo) SetCalendarEventID(_ context.Context, _ int64, eventID string) error {
	m.calendarEventID = &eventID
	return nil
}

type mockSchedule struct {
	constraints  domain.SchedulingConstraints
	workingHours *domain.WorkingHours
}

func (m *mockSchedule) GetConstraints(_ context.Context) (*domain.SchedulingConstraints, error) {
	c := m.constraints
	return &c, nil
}

func (m *mockSchedule) GetWorkingHoursForDate(_ context.Context, _ time.Time) (domain.WorkingHours, bool, error) {
	if m.workingHours == nil {
		return domain.WorkingHours{}, false, nil
	}
	return *m.workingHours, true, nil
}

type mockCalendar struct {
	busy      bool
	isBusyErr error

	isBusyCalls int
	busyStart   time.Time
	busyEnd     time.Time
	busyBuffer  int

	createErr   error
	createCalls int
}

func (m *mockCalendar) IsBusy(_ context.Context, start, end time.Time, bufferMinutes int) (bool, error) {
	m.isBusyCalls++
	m.busyStart = start
	m.busyEnd = end
	m.busyBuffer = bufferMinutes
	if m.isBusyErr != nil {
		return false, m.isBusyErr
	}
	return m.busy, nil
}

func (m *mockCalendar) CreateEvent(_ context.Context, data *gcalendar.EventData) (*domain.CalendarEvent, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &domain.CalendarEvent{
		ID:    "cal-evt-1",
		Title: data.Title,
		Start: data.Start,
		End:   data.End,
	}, nil
}

type mockTxManager struct {
	invocations int
	err         error
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.invocations++
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

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

type fixture struct {
	uc       *UseCase
	repo     *mockLessonRepo
	schedule *mockSchedule
	calendar *mockCalendar
	tx       *mockTxManager
	cache    *availcache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     &mockLessonRepo{},
		schedule: &mockSchedule{constraints: defaultConstraints()},
		calendar: &mockCalendar{},
		tx:       &mockTxManager{},
		cache:    availcache.New(100, time.Hour),
	}
	t.Cleanup(f.cache.Stop)

	f.uc = NewUseCase(f.repo, f.schedule, f.calendar, f.tx, f.cache, nopLogger{})
	// Фиксированное "сейчас": вторник 3 июня 2025, 08:00
	f.uc.timeProvider = fixedTime{now: time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)}

	return f
}

func validRequest() *Request {
	return &Request{
		StudentID:       1,
		Date:            time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 60,
		LessonType:      "standard",
	}
}

func TestExecuteSuccess(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("availability:1:2025-06-04:60", "stale", time.Minute)
	f.cache.Set("schedule:constraints", "config", time.Minute)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, 1, f.tx.invocations)

	// Кэш доступности сброшен, конфигурация расписания осталась
	_, ok := f.cache.Get("availability:1:2025-06-04:60")
	assert.False(t, ok)
	_, ok = f.cache.Get("schedule:constraints")
	assert.True(t, ok)

	// Внешний календарь опрошен free/busy запросом по запрошенному окну
	assert.Equal(t, 1, f.calendar.isBusyCalls)
	assert.Equal(t, time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), f.calendar.busyStart)
	assert.Equal(t, time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC), f.calendar.busyEnd)
	assert.Equal(t, domain.DefaultMinBufferMinutes, f.calendar.busyBuffer)

	// Занятие синхронизировано с внешним календарём
	assert.Equal(t, 1, f.calendar.createCalls)
	require.NotNil(t, f.repo.calendarEventID)
	assert.Equal(t, "cal-evt-1", *f.repo.calendarEventID)
	require.NotNil(t, resp.CalendarEventID)
	assert.Equal(t, "cal-evt-1", *resp.CalendarEventID)
}

func TestExecuteCalendarFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.calendar.createErr = gcalendar.ErrNoCredential

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Занятие создано, но без привязки к календарю
	assert.Equal(t, int64(42), resp.ID)
	assert.Nil(t, resp.CalendarEventID)
	assert.Nil(t, f.repo.calendarEventID)
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"non-positive student", func(r *Request) { r.StudentID = 0 }, ErrInvalidInput},
		{"missing date", func(r *Request) { r.Date = time.Time{} }, ErrInvalidInput},
		{"missing start time", func(r *Request) { r.StartTime = "" }, ErrInvalidInput},
		{"malformed start time", func(r *Request) { r.StartTime = "25:99" }, ErrInvalidInput},
		{"duration too short", func(r *Request) { r.DurationMinutes = 15 }, ErrInvalidInput},
		{"duration too long", func(r *Request) { r.DurationMinutes = 300 }, ErrInvalidInput},
		{"unknown lesson type", func(r *Request) { r.LessonType = "night" }, ErrInvalidInput},
		{"past date", func(r *Request) { r.Date = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) }, ErrInvalidDate},
		{"beyond planning horizon", func(r *Request) { r.Date = time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC) }, ErrDateTooFarInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			// Отказ на валидации не должен доходить до транзакции
			assert.Zero(t, f.tx.invocations)
		})
	}
}

func TestExecuteTooLateToBook(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	// Бронирование на сегодня в прошлом времени дня
	req.Date = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	req.StartTime = "07:30"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestExecuteOutsideWorkingHours(t *testing.T) {
	t.Run("before opening", func(t *testing.T) {
		f := newFixture(t)

		req := validRequest()
		req.StartTime = "08:00"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("lesson would run past closing", func(t *testing.T) {
		f := newFixture(t)

		req := validRequest()
		req.StartTime = "16:30"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("day disabled by working hours", func(t *testing.T) {
		f := newFixture(t)
		f.schedule.workingHours = &domain.WorkingHours{Weekday: time.Wednesday, Enabled: false}

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("day-specific window overrides defaults", func(t *testing.T) {
		f := newFixture(t)
		f.schedule.workingHours = &domain.WorkingHours{
			Weekday: time.Wednesday,
			Start:   "12:00",
			End:     "18:00",
			Enabled: true,
		}

		// 10:00 в пределах дефолтного окна, но вне окна конкретного дня
		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})
}

func TestExecuteSlotRejections(t *testing.T) {
	day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	confirmed := func(d time.Time, start types.TimeString, minutes int) *domain.Lesson {
		return &domain.Lesson{
			StudentID:       1,
			LessonDate:      d,
			StartTime:       start,
			DurationMinutes: minutes,
			Status:          domain.StatusConfirmed,
		}
	}

	t.Run("external calendar reports busy window", func(t *testing.T) {
		f := newFixture(t)
		f.calendar.busy = true

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotConflict)
		assert.Nil(t, f.repo.created)
		// Занятость снаружи известна до транзакции - транзакция не открывается
		assert.Zero(t, f.tx.invocations)
	})

	t.Run("overlap with another student's lesson", func(t *testing.T) {
		f := newFixture(t)
		other := confirmed(day, "10:30", 60)
		other.StudentID = 7
		f.repo.dayLessons = []*domain.Lesson{other}

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("daily hour limit", func(t *testing.T) {
		f := newFixture(t)
		f.repo.studentLessons = []*domain.Lesson{confirmed(day, "14:00", 90)}

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)
	})

	t.Run("daily lesson count", func(t *testing.T) {
		f := newFixture(t)
		f.repo.studentLessons = []*domain.Lesson{
			confirmed(day, "13:00", 30),
			confirmed(day, "15:00", 30),
		}

		req := validRequest()
		req.DurationMinutes = 30

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrDailyCountExceeded)
	})

	t.Run("weekly hour limit", func(t *testing.T) {
		f := newFixture(t)
		f.repo.studentLessons = []*domain.Lesson{
			confirmed(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "09:00", 120),
			confirmed(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "09:00", 120),
			confirmed(time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), "09:00", 90),
		}

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrWeeklyLimitExceeded)
	})

	t.Run("buffer violation", func(t *testing.T) {
		f := newFixture(t)
		// Занятие студента 11:10-12:10: зазор после запрошенного слота
		// 10:00-11:00 составляет 10 минут при требуемых 15
		f.repo.studentLessons = []*domain.Lesson{confirmed(day, "11:10", 60)}

		_, err := f.uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrBufferViolation)
	})

	t.Run("cancelled lessons do not block", func(t *testing.T) {
		f := newFixture(t)
		blocked := confirmed(day, "10:00", 60)
		blocked.Status = domain.StatusCancelledByStudent
		f.repo.dayLessons = []*domain.Lesson{blocked}

		resp, err := f.uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
	})
}

func TestExecuteTransactionFailure(t *testing.T) {
	f := newFixture(t)
	f.tx.err = errors.New("serialization conflict")
	f.cache.Set("availability:1:2025-06-04:60", "stale", time.Minute)

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)

	// Провал транзакции не должен трогать ни кэш, ни календарь
	_, ok := f.cache.Get("availability:1:2025-06-04:60")
	assert.True(t, ok)
	assert.Zero(t, f.calendar.createCalls)
}
