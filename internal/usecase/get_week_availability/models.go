package get_week_availability

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Request модель запроса доступности на неделю
type Request struct {
	UserID          int64     // ID пользователя (для логирования и прав доступа)
	StudentID       *int64    // Студент для персональных лимитов (опционально)
	Date            time.Time // Любая дата внутри интересующей недели
	DurationMinutes int       // Желаемая длительность занятия в минутах
}

// Response модель ответа с доступностью на неделю
type Response struct {
	WeekStart       time.Time // Понедельник недели
	WeekEnd         time.Time // WeekStart + 7 дней
	DurationMinutes int
	Days            []Day // Ровно 7 дней, с понедельника

	TotalWeeklyHours       float64 // Суммарная доступность недели в часах
	RemainingWeeklyHours   float64 // Остаток недельной квоты студента в часах
	RemainingWeeklyLessons int     // Остаток недельной квоты студента в занятиях
}

// Day доступность одного дня недели
type Day struct {
	Date                time.Time
	Slots               []Slot
	TotalAvailableSlots int
	TotalAvailableHours float64
	Flags               Flags
}

// Slot модель временного слота
type Slot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Available       bool
	Reason          string
}

// Flags агрегированные флаги дня
type Flags struct {
	DailyLimitReached     bool
	WeeklyLimitReached    bool
	OutsideOperatingHours bool
}

// fromDomainWeek конвертирует расчёт недели в response
func fromDomainWeek(week *domain.WeekAvailability, durationMinutes int) *Response {
	resp := &Response{
		WeekStart:              week.WeekStart,
		WeekEnd:                week.WeekEnd,
		DurationMinutes:        durationMinutes,
		Days:                   make([]Day, 0, len(week.Days)),
		TotalWeeklyHours:       week.TotalWeeklyHours,
		RemainingWeeklyHours:   week.RemainingWeeklyHours,
		RemainingWeeklyLessons: week.RemainingWeeklyLessons,
	}

	for _, day := range week.Days {
		out := Day{
			Date:                day.Date,
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
			out.Slots = append(out.Slots, Slot{
				StartTime:       types.NewTimeString(slot.Start),
				EndTime:         types.NewTimeString(slot.End),
				DurationMinutes: slot.DurationMinutes,
				Available:       slot.Available,
				Reason:          slot.Reason,
			})
		}

		resp.Days = append(resp.Days, out)
	}

	return resp
}
