package models

import (
	"errors"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid lesson status")
)

// Request модели

// CancelLessonRequest запрос на отмену занятия
type CancelLessonRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса занятия
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetStudentLessonsRequest запрос на получение занятий студента
type GetStudentLessonsRequest struct {
	StudentID int64   `json:"studentId"`
	UserID    int64   `json:"userId"`
	Status    *string `json:"status,omitempty"`
}

// GetSchoolLessonsRequest запрос на получение занятий школы с фильтрацией
type GetSchoolLessonsRequest struct {
	UserID          int64      `json:"userId"`
	StudentID       *int64     `json:"studentId,omitempty"`       // Фильтр по студенту (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые занятия
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetSchoolLessonsRequest) ToDomainFilter() (domain.LessonsFilter, error) {
	filter := domain.LessonsFilter{
		StudentID:       r.StudentID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainLessonStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// LessonResponse ответ с данными занятия
type LessonResponse struct {
	ID              int64            `json:"id"`
	StudentID       int64            `json:"studentId"`
	LessonDate      time.Time        `json:"lessonDate"`
	StartTime       types.TimeString `json:"startTime"`
	DurationMinutes int              `json:"durationMinutes"`
	Status          string           `json:"status"`
	LessonType      string           `json:"lessonType"`

	Notes           *string `json:"notes,omitempty"`
	CalendarEventID *string `json:"calendarEventId,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LessonListResponse список занятий
type LessonListResponse struct {
	Lessons []LessonResponse `json:"lessons"`
	Total   int              `json:"total"`
}

// FromDomainLesson конвертирует domain модель в response
func FromDomainLesson(lesson *domain.Lesson) *LessonResponse {
	return &LessonResponse{
		ID:                 lesson.ID,
		StudentID:          lesson.StudentID,
		LessonDate:         lesson.LessonDate,
		StartTime:          lesson.StartTime,
		DurationMinutes:    lesson.DurationMinutes,
		Status:             string(lesson.Status),
		LessonType:         lesson.LessonType,
		Notes:              lesson.Notes,
		CalendarEventID:    lesson.CalendarEventID,
		CancellationReason: lesson.CancellationReason,
		CancelledAt:        lesson.CancelledAt,
		CreatedAt:          lesson.CreatedAt,
		UpdatedAt:          lesson.UpdatedAt,
	}
}

// FromDomainLessonList конвертирует список domain моделей в response
func FromDomainLessonList(lessons []*domain.Lesson) *LessonListResponse {
	resp := &LessonListResponse{
		Lessons: make([]LessonResponse, 0, len(lessons)),
		Total:   len(lessons),
	}

	for _, lesson := range lessons {
		resp.Lessons = append(resp.Lessons, *FromDomainLesson(lesson))
	}

	return resp
}

// ToDomainLessonStatus валидирует и конвертирует строку в domain статус
func ToDomainLessonStatus(status string) (domain.LessonStatus, error) {
	switch domain.LessonStatus(status) {
	case domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelledByStudent,
		domain.StatusCancelledBySchool,
		domain.StatusNoShow:
		return domain.LessonStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}
