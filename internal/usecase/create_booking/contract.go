package create_booking

import (
	"context"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/integrations/gcalendar"
)

// LessonRepository интерфейс репозитория занятий
type LessonRepository interface {
	Create(ctx context.Context, lesson *domain.Lesson) (*domain.Lesson, error)
	GetWithFilter(ctx context.Context, filter domain.LessonsFilter) ([]*domain.Lesson, error)
	SetCalendarEventID(ctx context.Context, id int64, eventID string) error
}

// ScheduleSource источник ограничений и рабочих часов
type ScheduleSource interface {
	GetConstraints(ctx context.Context) (*domain.SchedulingConstraints, error)
	GetWorkingHoursForDate(ctx context.Context, date time.Time) (domain.WorkingHours, bool, error)
}

// CalendarClient интерфейс клиента внешнего календаря
type CalendarClient interface {
	IsBusy(ctx context.Context, start, end time.Time, bufferMinutes int) (bool, error)
	CreateEvent(ctx context.Context, data *gcalendar.EventData) (*domain.CalendarEvent, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
