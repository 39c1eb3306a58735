package domain

// Default scheduling constraints, used when the configuration store has no
// row yet or the stored values are malformed
const (
	DefaultMaxHoursPerDay    = 2.0
	DefaultMaxLessonsPerDay  = 2
	DefaultMaxHoursPerWeek   = 6.0
	DefaultMaxLessonsPerWeek = 5

	DefaultEarliestStartTime = "09:00"
	DefaultLatestEndTime     = "17:00"

	DefaultMinBufferMinutes = 15
)

// Business validation constants
const (
	MinLessonDurationMinutes = 30
	MaxLessonDurationMinutes = 240 // 4 часа

	MaxSearchDays = 90 // жёсткий потолок для поиска ближайшего слота

	DefaultSearchDays = 30

	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов неактивных занятий
// Используется для фильтрации при подсчёте доступных слотов
var InactiveStatuses = []LessonStatus{
	StatusCancelledByStudent,
	StatusCancelledBySchool,
	StatusNoShow,
}

// ActiveStatuses список статусов активных занятий
var ActiveStatuses = []LessonStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
