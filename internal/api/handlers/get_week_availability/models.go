package get_week_availability

import (
	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	getWeekAvailability "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_week_availability"
)

// WeekResponse HTTP response model
type WeekResponse struct {
	WeekStart       string `json:"weekStart"`
	WeekEnd         string `json:"weekEnd"`
	DurationMinutes int    `json:"durationMinutes"`
	Days            []Day  `json:"days"`

	TotalWeeklyHours       float64 `json:"totalWeeklyHours"`
	RemainingWeeklyHours   float64 `json:"remainingWeeklyHours"`
	RemainingWeeklyLessons int     `json:"remainingWeeklyLessons"`
}

// Day доступность одного дня недели
type Day struct {
	Date                string  `json:"date"`
	Slots               []Slot  `json:"slots"`
	TotalAvailableSlots int     `json:"totalAvailableSlots"`
	TotalAvailableHours float64 `json:"totalAvailableHours"`
	Flags               Flags   `json:"flags"`
}

// Slot HTTP модель временного слота
type Slot struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
}

// Flags агрегированные флаги дня
type Flags struct {
	DailyLimitReached     bool `json:"dailyLimitReached"`
	WeeklyLimitReached    bool `json:"weeklyLimitReached"`
	OutsideOperatingHours bool `json:"outsideOperatingHours"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getWeekAvailability.Response) *WeekResponse {
	out := &WeekResponse{
		WeekStart:              resp.WeekStart.Format(domain.DateFormat),
		WeekEnd:                resp.WeekEnd.Format(domain.DateFormat),
		DurationMinutes:        resp.DurationMinutes,
		Days:                   make([]Day, 0, len(resp.Days)),
		TotalWeeklyHours:       resp.TotalWeeklyHours,
		RemainingWeeklyHours:   resp.RemainingWeeklyHours,
		RemainingWeeklyLessons: resp.RemainingWeeklyLessons,
	}

	for _, day := range resp.Days {
		outDay := Day{
			Date:                day.Date.Format(domain.DateFormat),
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
			outDay.Slots = append(outDay.Slots, Slot{
				StartTime:       slot.StartTime.String(),
				EndTime:         slot.EndTime.String(),
				DurationMinutes: slot.DurationMinutes,
				Available:       slot.Available,
				Reason:          slot.Reason,
			})
		}

		out.Days = append(out.Days, outDay)
	}

	return out
}
