package domain

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// LessonStatus represents the status of a driving lesson booking
type LessonStatus string

const (
	StatusPending            LessonStatus = "pending"
	StatusConfirmed          LessonStatus = "confirmed"
	StatusCompleted          LessonStatus = "completed"
	StatusCancelledByStudent LessonStatus = "cancelled_by_student"
	StatusCancelledBySchool  LessonStatus = "cancelled_by_school"
	StatusNoShow             LessonStatus = "no_show"
)

// Lesson represents a booked driving lesson
type Lesson struct {
	ID              int64
	StudentID       int64
	LessonDate      time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          LessonStatus
	LessonType      string // standard / highway / test_preparation

	Notes *string

	// CalendarEventID ID события во внешнем календаре инструктора (если синхронизировано)
	CalendarEventID *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlocking returns true if the lesson occupies its time window for conflict
// detection. Only confirmed lessons block a slot; pending requests do not.
func (l *Lesson) IsBlocking() bool {
	return l.Status == StatusConfirmed
}

// CountsTowardLimits returns true if the lesson consumes the student's
// daily/weekly hour and lesson quota
func (l *Lesson) CountsTowardLimits() bool {
	return l.Status == StatusConfirmed
}

// IsCancelled returns true if the lesson has been cancelled
func (l *Lesson) IsCancelled() bool {
	return l.Status == StatusCancelledByStudent || l.Status == StatusCancelledBySchool
}

// CanBeCancelled returns true if the lesson can still be cancelled
func (l *Lesson) CanBeCancelled() bool {
	return l.Status == StatusPending || l.Status == StatusConfirmed
}

// Hours returns the lesson duration in hours
func (l *Lesson) Hours() float64 {
	return float64(l.DurationMinutes) / 60.0
}

// LessonsFilter фильтр для выборки занятий
type LessonsFilter struct {
	StudentID       *int64        // Фильтр по студенту (опционально)
	StartDate       *time.Time    // Начало периода (опционально)
	EndDate         *time.Time    // Конец периода (опционально)
	Status          *LessonStatus // Фильтр по статусу (опционально)
	IncludeInactive bool          // Включать ли отмененные и no-show занятия
}
