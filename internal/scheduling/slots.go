package scheduling

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// Window разрешённое окно рабочего дня в минутах от полуночи
// Получается из WorkingHours конкретного дня либо из дефолтных границ
// ограничений (см. resolveWindow в calculator.go)
type Window struct {
	StartMinutes int
	EndMinutes   int
	Enabled      bool
}

// GenerateSlots генерирует кандидатов-слотов на день с фиксированной длительностью
//
// Курсор стартует на границе открытия и после каждого слота сдвигается на
// durationMinutes + bufferMinutes, поэтому соседние слоты уже разделены
// минимальным буфером. Все слоты рождаются доступными - знание о конфликтах
// появляется на следующем этапе.
//
// Выходной или слишком короткое окно - это пустой список, а не ошибка.
func GenerateSlots(date time.Time, durationMinutes int, window Window, bufferMinutes int) []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)

	if !window.Enabled || durationMinutes <= 0 {
		return slots
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	cursor := window.StartMinutes
	// Слот, заканчивающийся ровно на границе закрытия, включается
	for cursor+durationMinutes <= window.EndMinutes {
		start := dayStart.Add(time.Duration(cursor) * time.Minute)
		end := start.Add(time.Duration(durationMinutes) * time.Minute)

		slots = append(slots, domain.TimeSlot{
			Start:           start,
			End:             end,
			DurationMinutes: durationMinutes,
			Available:       true,
		})

		cursor += durationMinutes + bufferMinutes
	}

	return slots
}

// WeekStart возвращает понедельник недели, содержащей date (полночь)
// Неделя везде в сервисе выровнена по понедельнику, независимо от локали
func WeekStart(date time.Time) time.Time {
	dayOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(dayOnly.Weekday()) + 6) % 7
	return dayOnly.AddDate(0, 0, -offset)
}
