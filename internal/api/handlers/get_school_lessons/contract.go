package get_school_lessons

import (
	"context"

	"github.com/KerelosNasser/driving-school-sub004/internal/service/lessons/models"
)

type LessonService interface {
	GetSchoolLessons(ctx context.Context, req *models.GetSchoolLessonsRequest) (*models.LessonListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
