package schedule

import (
	"context"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// ScheduleRepository интерфейс репозитория настроек расписания
type ScheduleRepository interface {
	GetConstraints(ctx context.Context) (*domain.SchedulingConstraints, error)
	UpdateConstraints(ctx context.Context, update domain.ConstraintsUpdate) error
	GetWorkingHours(ctx context.Context) (domain.WorkingHoursByDay, error)
	UpsertWorkingHours(ctx context.Context, wh domain.WorkingHours) error
	GetVacationDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
	AddVacationDay(ctx context.Context, day time.Time) error
	RemoveVacationDay(ctx context.Context, day time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
