package get_available_slots

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Request модель запроса доступных слотов на день
type Request struct {
	UserID          int64     // ID пользователя (для логирования и прав доступа)
	StudentID       *int64    // Студент для персональных лимитов (опционально)
	Date            time.Time // Дата, на которую запрашиваются слоты (без времени)
	DurationMinutes int       // Желаемая длительность занятия в минутах
}

// Response модель ответа со слотами на день
type Response struct {
	Date            time.Time // Дата, на которую рассчитаны слоты
	DurationMinutes int       // Длительность занятия
	Slots           []Slot    // Все слоты дня, включая недоступные

	TotalAvailableSlots int     // Количество доступных слотов
	TotalAvailableHours float64 // Суммарная длительность доступных слотов в часах

	Flags Flags // Агрегированные флаги, объясняющие малое количество слотов
}

// Slot модель временного слота
type Slot struct {
	StartTime       types.TimeString // Время начала (например, "10:00")
	EndTime         types.TimeString // Время конца
	DurationMinutes int              // Длительность в минутах
	Available       bool             // Доступен ли слот для бронирования
	Reason          string           // Причина недоступности, пустая для доступных
}

// Flags агрегированные флаги дня
type Flags struct {
	DailyLimitReached     bool
	WeeklyLimitReached    bool
	OutsideOperatingHours bool
}

// fromDomainDay конвертирует расчёт доступности в response
func fromDomainDay(day *domain.DayAvailability, durationMinutes int) *Response {
	resp := &Response{
		Date:                day.Date,
		DurationMinutes:     durationMinutes,
		Slots:               make([]Slot, 0, len(day.Slots)),
		TotalAvailableSlots: day.TotalAvailableSlots,
		TotalAvailableHours: day.TotalAvailableHours,
		Flags: Flags{
			DailyLimitReached:     day.Flags.DailyLimitReached,
			WeeklyLimitReached:    day.Flags.WeeklyLimitReached,
			OutsideOperatingHours: day.Flags.OutsideOperatingHours,
		},
	}

	for _, slot := range day.Slots {
		resp.Slots = append(resp.Slots, Slot{
			StartTime:       types.NewTimeString(slot.Start),
			EndTime:         types.NewTimeString(slot.End),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
			Reason:          slot.Reason,
		})
	}

	return resp
}
