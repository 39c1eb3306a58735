package get_week_availability

import (
	"context"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// AvailabilityCalculator интерфейс калькулятора доступности
type AvailabilityCalculator interface {
	CalculateWeek(ctx context.Context, weekStart time.Time, durationMinutes int, studentID *int64) (*domain.WeekAvailability, error)
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
