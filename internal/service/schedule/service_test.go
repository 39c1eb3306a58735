package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	scheduleRepo "github.com/KerelosNasser/driving-school-sub004/internal/infra/storage/schedule"
	"github.com/KerelosNasser/driving-school-sub004/internal/service/schedule/models"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/ptr"
)

type mockRepo struct {
	constraints    *domain.SchedulingConstraints
	constraintsErr error
	workingHours   domain.WorkingHoursByDay
	vacationDays   []time.Time

	constraintsCalls int
	updatedWith      *domain.ConstraintsUpdate
	upserted         []domain.WorkingHours
	addedVacation    []time.Time
	removedVacation  []time.Time
}

func (m *mockRepo) GetConstraints(_ context.Context) (*domain.SchedulingConstraints, error) {
	m.constraintsCalls++
	if m.constraintsErr != nil {
		return nil, m.constraintsErr
	}
	c := *m.constraints
	return &c, nil
}

func (m *mockRepo) UpdateConstraints(_ context.Context, update domain.ConstraintsUpdate) error {
	m.updatedWith = &update
	return nil
}

func (m *mockRepo) GetWorkingHours(_ context.Context) (domain.WorkingHoursByDay, error) {
	if m.workingHours == nil {
		return make(domain.WorkingHoursByDay), nil
	}
	return m.workingHours.Clone(), nil
}

func (m *mockRepo) UpsertWorkingHours(_ context.Context, wh domain.WorkingHours) error {
	m.upserted = append(m.upserted, wh)
	return nil
}

func (m *mockRepo) GetVacationDays(_ context.Context, from, to time.Time) ([]time.Time, error) {
	out := make([]time.Time, 0)
	for _, d := range m.vacationDays {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) AddVacationDay(_ context.Context, day time.Time) error {
	m.addedVacation = append(m.addedVacation, day)
	return nil
}

func (m *mockRepo) RemoveVacationDay(_ context.Context, day time.Time) error {
	m.removedVacation = append(m.removedVacation, day)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService(t *testing.T, repo *mockRepo) *Service {
	t.Helper()

	cache := availcache.New(100, time.Hour)
	t.Cleanup(cache.Stop)

	return NewService(repo, cache, time.Minute, []int64{100}, nil, nopLogger{})
}

func storedConstraints() *domain.SchedulingConstraints {
	return &domain.SchedulingConstraints{
		MaxHoursPerDay:          3.0,
		MaxLessonsPerDay:        3,
		MaxHoursPerWeek:         10.0,
		MaxLessonsPerWeek:       8,
		EarliestStartTime:       "08:00",
		LatestEndTime:           "18:00",
		MinBufferBetweenLessons: 30,
	}
}

func TestGetConstraints(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored constraints and caches them", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}
		svc := newTestService(t, repo)

		first, err := svc.GetConstraints(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, first.MaxHoursPerDay, 0.001)

		_, err = svc.GetConstraints(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, repo.constraintsCalls)
	})

	t.Run("missing row falls back to defaults", func(t *testing.T) {
		repo := &mockRepo{constraintsErr: scheduleRepo.ErrConstraintsNotFound}
		svc := newTestService(t, repo)

		constraints, err := svc.GetConstraints(ctx)
		require.NoError(t, err)

		assert.InDelta(t, domain.DefaultMaxHoursPerDay, constraints.MaxHoursPerDay, 0.001)
		assert.Equal(t, domain.DefaultMaxLessonsPerWeek, constraints.MaxLessonsPerWeek)
	})

	t.Run("callers get independent copies", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}
		svc := newTestService(t, repo)

		first, err := svc.GetConstraints(ctx)
		require.NoError(t, err)

		first.MaxHoursPerDay = 99

		second, err := svc.GetConstraints(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, second.MaxHoursPerDay, 0.001)
	})
}

func TestGetWorkingHoursForDate(t *testing.T) {
	ctx := context.Background()
	wednesday := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	t.Run("vacation day is non-working", func(t *testing.T) {
		repo := &mockRepo{
			constraints:  storedConstraints(),
			vacationDays: []time.Time{wednesday},
		}
		svc := newTestService(t, repo)

		_, ok, err := svc.GetWorkingHoursForDate(ctx, wednesday)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("disabled weekday is non-working", func(t *testing.T) {
		repo := &mockRepo{
			constraints: storedConstraints(),
			workingHours: domain.WorkingHoursByDay{
				time.Wednesday: {Weekday: time.Wednesday, Enabled: false},
			},
		}
		svc := newTestService(t, repo)

		_, ok, err := svc.GetWorkingHoursForDate(ctx, wednesday)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("configured weekday returns its window", func(t *testing.T) {
		repo := &mockRepo{
			constraints: storedConstraints(),
			workingHours: domain.WorkingHoursByDay{
				time.Wednesday: {Weekday: time.Wednesday, Start: "12:00", End: "20:00", Enabled: true},
			},
		}
		svc := newTestService(t, repo)

		wh, ok, err := svc.GetWorkingHoursForDate(ctx, wednesday)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "12:00", wh.Start.String())
		assert.Equal(t, "20:00", wh.End.String())
	})

	t.Run("missing weekday row gets default window", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}
		svc := newTestService(t, repo)

		wh, ok, err := svc.GetWorkingHoursForDate(ctx, wednesday)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, domain.DefaultEarliestStartTime, wh.Start.String())
		assert.True(t, wh.Enabled)
	})
}

func TestUpdateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("manager updates constraints", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}
		svc := newTestService(t, repo)

		resp, err := svc.UpdateSchedule(ctx, &models.UpdateScheduleRequest{
			UserID:         100,
			MaxHoursPerDay: ptr.Ptr(4.0),
			WorkingHours: []models.WorkingHoursUpdate{
				{Weekday: 0, Enabled: false},
			},
			AddVacationDays:    []string{"2025-07-01"},
			RemoveVacationDays: []string{"2025-06-15"},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		require.NotNil(t, repo.updatedWith)
		assert.InDelta(t, 4.0, *repo.updatedWith.MaxHoursPerDay, 0.001)

		require.Len(t, repo.upserted, 1)
		assert.Equal(t, time.Sunday, repo.upserted[0].Weekday)

		require.Len(t, repo.addedVacation, 1)
		assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), repo.addedVacation[0])
		require.Len(t, repo.removedVacation, 1)
	})

	t.Run("non-manager is rejected", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}
		svc := newTestService(t, repo)

		_, err := svc.UpdateSchedule(ctx, &models.UpdateScheduleRequest{
			UserID:         7,
			MaxHoursPerDay: ptr.Ptr(4.0),
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Nil(t, repo.updatedWith)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			req  *models.UpdateScheduleRequest
		}{
			{"non-positive daily hours", &models.UpdateScheduleRequest{UserID: 100, MaxHoursPerDay: ptr.Ptr(0.0)}},
			{"negative buffer", &models.UpdateScheduleRequest{UserID: 100, MinBufferBetweenLessons: ptr.Ptr(-5)}},
			{"malformed start time", &models.UpdateScheduleRequest{UserID: 100, EarliestStartTime: ptr.Ptr("9am")}},
			{"inverted window", &models.UpdateScheduleRequest{UserID: 100,
				EarliestStartTime: ptr.Ptr("18:00"), LatestEndTime: ptr.Ptr("09:00")}},
			{"weekday out of range", &models.UpdateScheduleRequest{UserID: 100,
				WorkingHours: []models.WorkingHoursUpdate{{Weekday: 7, Start: "09:00", End: "17:00", Enabled: true}}}},
			{"inverted working hours", &models.UpdateScheduleRequest{UserID: 100,
				WorkingHours: []models.WorkingHoursUpdate{{Weekday: 1, Start: "17:00", End: "09:00", Enabled: true}}}},
			{"malformed vacation date", &models.UpdateScheduleRequest{UserID: 100,
				AddVacationDays: []string{"July 1st"}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockRepo{constraints: storedConstraints()}
				svc := newTestService(t, repo)

				_, err := svc.UpdateSchedule(ctx, tt.req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("update invalidates cached availability", func(t *testing.T) {
		repo := &mockRepo{constraints: storedConstraints()}

		cache := availcache.New(100, time.Hour)
		t.Cleanup(cache.Stop)
		svc := NewService(repo, cache, time.Minute, []int64{100}, nil, nopLogger{})

		cache.Set("availability:1:2025-06-04:60", "stale", time.Minute)
		cache.Set("schedule:constraints", storedConstraints(), time.Minute)

		_, err := svc.UpdateSchedule(ctx, &models.UpdateScheduleRequest{
			UserID:         100,
			MaxHoursPerDay: ptr.Ptr(4.0),
		})
		require.NoError(t, err)

		_, ok := cache.Get("availability:1:2025-06-04:60")
		assert.False(t, ok)
	})
}
