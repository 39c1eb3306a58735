package gcalendar

import "errors"

var (
	// ErrNoCredential возвращается, когда не удалось получить действующий токен
	// Чтения при этом деградируют до пустого результата, записи падают громко
	ErrNoCredential = errors.New("gcalendar client: no valid credential")

	// ErrEventNotFound возвращается, когда событие не найдено в календаре
	ErrEventNotFound = errors.New("gcalendar client: event not found")

	// ErrUnavailable возвращается, когда провайдер календаря недоступен
	// после исчерпания повторов
	ErrUnavailable = errors.New("gcalendar client: provider unavailable")

	// ErrInvalidInput возвращается при некорректных данных события
	ErrInvalidInput = errors.New("gcalendar client: invalid event data")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("gcalendar client: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("gcalendar client: internal error")
)
