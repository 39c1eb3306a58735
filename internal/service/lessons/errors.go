package lessons

import "errors"

var (
	// ErrLessonNotFound возвращается, когда занятие не найдено
	ErrLessonNotFound = errors.New("lessons.service: lesson not found")

	// ErrAccessDenied возвращается при отсутствии прав доступа
	ErrAccessDenied = errors.New("lessons.service: access denied")

	// ErrCannotCancel возвращается, когда занятие нельзя отменить (уже завершено или отменено)
	ErrCannotCancel = errors.New("lessons.service: lesson cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("lessons.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("lessons.service: internal error")
)
