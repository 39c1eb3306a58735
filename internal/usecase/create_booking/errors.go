package create_booking

import "errors"

var (
	// ErrInvalidDate возвращается при некорректной дате занятия
	ErrInvalidDate = errors.New("create_booking: invalid lesson date")

	// ErrDateTooFarInFuture возвращается, когда дата за горизонтом планирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook возвращается при попытке забронировать уже начавшийся слот
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrOutsideWorkingHours возвращается, когда слот вне рабочего окна дня
	ErrOutsideWorkingHours = errors.New("create_booking: slot is outside working hours")

	// ErrSlotConflict возвращается, когда слот пересекается с существующим занятием
	// или событием внешнего календаря
	ErrSlotConflict = errors.New("create_booking: slot conflicts with an existing booking")

	// ErrDailyLimitExceeded возвращается при превышении дневного лимита часов
	ErrDailyLimitExceeded = errors.New("create_booking: daily hour limit exceeded")

	// ErrDailyCountExceeded возвращается при превышении дневного лимита занятий
	ErrDailyCountExceeded = errors.New("create_booking: daily lesson limit exceeded")

	// ErrWeeklyLimitExceeded возвращается при превышении недельного лимита часов
	ErrWeeklyLimitExceeded = errors.New("create_booking: weekly hour limit exceeded")

	// ErrWeeklyCountExceeded возвращается при превышении недельного лимита занятий
	ErrWeeklyCountExceeded = errors.New("create_booking: weekly lesson limit exceeded")

	// ErrBufferViolation возвращается, когда слот нарушает буфер между занятиями
	ErrBufferViolation = errors.New("create_booking: insufficient buffer time between lessons")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
