package lessons

import (
	"context"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// LessonRepository интерфейс репозитория занятий
type LessonRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Lesson, error)
	GetByStudentID(ctx context.Context, studentID int64, status *domain.LessonStatus) ([]*domain.Lesson, error)
	GetWithFilter(ctx context.Context, filter domain.LessonsFilter) ([]*domain.Lesson, error)
	UpdateStatus(ctx context.Context, id int64, status domain.LessonStatus) error
	Cancel(ctx context.Context, id int64, status domain.LessonStatus, reason string) error
}

// CalendarClient интерфейс клиента внешнего календаря
type CalendarClient interface {
	DeleteEvent(ctx context.Context, eventID string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
