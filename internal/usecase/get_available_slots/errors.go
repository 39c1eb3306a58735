package get_available_slots

import "errors"

var (
	// ErrInvalidDate возвращается при некорректной дате запроса
	ErrInvalidDate = errors.New("invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата за горизонтом поиска
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidDuration возвращается при недопустимой длительности занятия
	ErrInvalidDuration = errors.New("invalid lesson duration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
