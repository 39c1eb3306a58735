package cancel_lesson

import (
	"context"

	"github.com/KerelosNasser/driving-school-sub004/internal/service/lessons/models"
)

type LessonService interface {
	Cancel(ctx context.Context, lessonID int64, req *models.CancelLessonRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
