package get_available_slots

import (
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StudentID != nil && *req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	if err := validateDuration(req.DurationMinutes); err != nil {
		return err
	}

	if isDateInPast(req.Date, now) {
		return ErrInvalidDate
	}

	// Дата за пределами горизонта поиска бессмысленна - расписание там ещё не известно
	maxDate := dayOnly(now).AddDate(0, 0, domain.MaxSearchDays)
	if dayOnly(req.Date).After(maxDate) {
		return fmt.Errorf("%w: can only view %d days ahead", ErrDateTooFarInFuture, domain.MaxSearchDays)
	}

	return nil
}

// validateDuration проверяет длительность занятия
func validateDuration(durationMinutes int) error {
	if durationMinutes < domain.MinLessonDurationMinutes || durationMinutes > domain.MaxLessonDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidDuration, domain.MinLessonDurationMinutes, domain.MaxLessonDurationMinutes)
	}
	return nil
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	return dayOnly(date).Before(dayOnly(now))
}

// dayOnly обнуляет время, оставляя только дату
func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
