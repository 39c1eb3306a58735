package create_booking

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Допустимые типы занятий
var allowedLessonTypes = map[string]struct{}{
	"standard":         {},
	"highway":          {},
	"test_preparation": {},
}

// Request модель запроса на бронирование занятия
type Request struct {
	StudentID       int64            // ID студента
	Date            time.Time        // Дата занятия (без времени)
	StartTime       types.TimeString // Время начала (например, "10:00")
	DurationMinutes int              // Длительность занятия в минутах
	LessonType      string           // standard / highway / test_preparation
	Notes           *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным занятием
type Response struct {
	ID              int64            // ID созданного занятия
	StudentID       int64            // ID студента
	LessonDate      time.Time        // Дата занятия
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус занятия
	LessonType      string           // Тип занятия

	Notes           *string // Заметки
	CalendarEventID *string // ID события во внешнем календаре (если синхронизировано)

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
