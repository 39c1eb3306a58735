package find_next_slot

import "errors"

var (
	// ErrInvalidDuration возвращается при недопустимой длительности занятия
	ErrInvalidDuration = errors.New("invalid lesson duration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
