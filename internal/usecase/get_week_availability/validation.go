package get_week_availability

import (
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/scheduling"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StudentID != nil && *req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	if req.DurationMinutes < domain.MinLessonDurationMinutes || req.DurationMinutes > domain.MaxLessonDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidDuration, domain.MinLessonDurationMinutes, domain.MaxLessonDurationMinutes)
	}

	// Прошедшие недели не запрашиваются; текущая неделя допустима,
	// даже если её понедельник уже позади
	weekStart := scheduling.WeekStart(req.Date)
	if weekStart.Before(scheduling.WeekStart(now)) {
		return ErrInvalidDate
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, domain.MaxSearchDays)
	if weekStart.After(maxDate) {
		return fmt.Errorf("%w: can only view %d days ahead", ErrDateTooFarInFuture, domain.MaxSearchDays)
	}

	return nil
}
