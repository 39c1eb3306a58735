package find_next_slot

import (
	"context"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// AvailabilityCalculator интерфейс калькулятора доступности
type AvailabilityCalculator interface {
	FindNextSlot(ctx context.Context, from time.Time, durationMinutes int, studentID *int64, maxDays int) (*domain.TimeSlot, error)
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
