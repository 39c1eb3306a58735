package create_booking

import (
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/scheduling"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes < domain.MinLessonDurationMinutes || req.DurationMinutes > domain.MaxLessonDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinLessonDurationMinutes, domain.MaxLessonDurationMinutes)
	}

	if _, ok := allowedLessonTypes[req.LessonType]; !ok {
		return fmt.Errorf("%w: unknown lesson type %q", ErrInvalidInput, req.LessonType)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(date, now time.Time) error {
	if dayOnly(date).Before(dayOnly(now)) {
		return ErrInvalidDate
	}

	maxDate := dayOnly(now).AddDate(0, 0, domain.MaxSearchDays)
	if dayOnly(date).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, domain.MaxSearchDays)
	}

	return nil
}

// validateSlotWindow проверяет, что слот целиком лежит в рабочем окне дня
func validateSlotWindow(startMin, durationMinutes int, window scheduling.Window) error {
	if !window.Enabled {
		return ErrOutsideWorkingHours
	}
	if startMin < window.StartMinutes || startMin+durationMinutes > window.EndMinutes {
		return ErrOutsideWorkingHours
	}
	return nil
}

// slotRejection конвертирует причину недоступности слота в ошибку usecase
// Причины приходят из той же цепочки проверок, что размечает слоты в выдаче
// доступности, поэтому отказ бронирования всегда согласован с ней
func slotRejection(reason string) error {
	switch reason {
	case domain.ReasonOverlap:
		return ErrSlotConflict
	case domain.ReasonDailyLimit:
		return ErrDailyLimitExceeded
	case domain.ReasonDailyCount:
		return ErrDailyCountExceeded
	case domain.ReasonWeeklyLimit:
		return ErrWeeklyLimitExceeded
	case domain.ReasonWeeklyCount:
		return ErrWeeklyCountExceeded
	case domain.ReasonBuffer:
		return ErrBufferViolation
	default:
		return fmt.Errorf("%w: slot rejected: %s", ErrInternal, reason)
	}
}

// dayOnly обнуляет время, оставляя только дату
func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
