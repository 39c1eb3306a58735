package get_week_availability

import "errors"

var (
	// ErrInvalidDate возвращается при некорректной дате запроса
	ErrInvalidDate = errors.New("invalid date")

	// ErrDateTooFarInFuture возвращается, когда неделя за горизонтом поиска
	ErrDateTooFarInFuture = errors.New("week is too far in the future")

	// ErrInvalidDuration возвращается при недопустимой длительности занятия
	ErrInvalidDuration = errors.New("invalid lesson duration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
