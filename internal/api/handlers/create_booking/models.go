package create_booking

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	createBooking "github.com/KerelosNasser/driving-school-sub004/internal/usecase/create_booking"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// CreateLessonRequest HTTP request model
type CreateLessonRequest struct {
	LessonDate      string  `json:"lessonDate"` // "2025-10-15"
	StartTime       string  `json:"startTime"`  // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	LessonType      string  `json:"lessonType"`
	Notes           *string `json:"notes,omitempty"`
}

// LessonResponse HTTP response model
type LessonResponse struct {
	ID              int64   `json:"id"`
	StudentID       int64   `json:"studentId"`
	LessonDate      string  `json:"lessonDate"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	LessonType      string  `json:"lessonType"`
	Notes           *string `json:"notes,omitempty"`
	CalendarEventID *string `json:"calendarEventId,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// ID студента приходит из контекста аутентификации, а не из тела
func (r *CreateLessonRequest) ToUseCaseRequest(studentID int64) (*createBooking.Request, error) {
	lessonDate, err := time.Parse(domain.DateFormat, r.LessonDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		StudentID:       studentID,
		Date:            lessonDate,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		LessonType:      r.LessonType,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *LessonResponse {
	return &LessonResponse{
		ID:              resp.ID,
		StudentID:       resp.StudentID,
		LessonDate:      resp.LessonDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		LessonType:      resp.LessonType,
		Notes:           resp.Notes,
		CalendarEventID: resp.CalendarEventID,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
