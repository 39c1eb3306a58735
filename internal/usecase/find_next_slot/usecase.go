package find_next_slot

import (
	"context"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// UseCase use case поиска ближайшего доступного слота
//
// Результат не кэшируется: ответ зависит от момента запроса, и устаревший
// "ближайший" слот хуже, чем лишний расчёт.
type UseCase struct {
	calculator   AvailabilityCalculator
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(calculator AvailabilityCalculator, logger Logger) *UseCase {
	return &UseCase{
		calculator:   calculator,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case поиска ближайшего слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindNextSlot: user=%d, student=%v, duration=%d, maxDays=%d",
		req.UserID, req.StudentID, req.DurationMinutes, req.MaxDays)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FindNextSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Точка отсчёта - сейчас, если не указана явно или указана в прошлом
	from := req.From
	now := uc.timeProvider.Now()
	if from.IsZero() || from.Before(now) {
		from = now
	}

	// 3. Сканируем горизонт
	slot, err := uc.calculator.FindNextSlot(ctx, from, req.DurationMinutes, req.StudentID, req.MaxDays)
	if err != nil {
		uc.logger.Error("FindNextSlot: search failed: %v", err)
		return nil, fmt.Errorf("%w: failed to find next slot: %v", ErrInternal, err)
	}

	if slot == nil {
		uc.logger.Info("FindNextSlot: no available slot within horizon for user=%d", req.UserID)
		return &Response{Found: false}, nil
	}

	uc.logger.Info("FindNextSlot: found slot %s %s for user=%d",
		slot.Start.Format(domain.DateFormat), types.NewTimeString(slot.Start), req.UserID)

	return &Response{
		Found: true,
		Slot: &Slot{
			Date:            dayOnly(slot.Start),
			StartTime:       types.NewTimeString(slot.Start),
			EndTime:         types.NewTimeString(slot.End),
			DurationMinutes: slot.DurationMinutes,
		},
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StudentID != nil && *req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	if req.DurationMinutes < domain.MinLessonDurationMinutes || req.DurationMinutes > domain.MaxLessonDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidDuration, domain.MinLessonDurationMinutes, domain.MaxLessonDurationMinutes)
	}

	if req.MaxDays < 0 {
		return fmt.Errorf("%w: maxDays must not be negative", ErrInvalidInput)
	}

	return nil
}

// dayOnly обнуляет время, оставляя только дату
func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
