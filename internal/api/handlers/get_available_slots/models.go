package get_available_slots

import (
	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	getAvailableSlots "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date                string  `json:"date"`
	DurationMinutes     int     `json:"durationMinutes"`
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
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	out := &SlotsResponse{
		Date:                resp.Date.Format(domain.DateFormat),
		DurationMinutes:     resp.DurationMinutes,
		Slots:               make([]Slot, 0, len(resp.Slots)),
		TotalAvailableSlots: resp.TotalAvailableSlots,
		TotalAvailableHours: resp.TotalAvailableHours,
		Flags: Flags{
			DailyLimitReached:     resp.Flags.DailyLimitReached,
			WeeklyLimitReached:    resp.Flags.WeeklyLimitReached,
			OutsideOperatingHours: resp.Flags.OutsideOperatingHours,
		},
	}

	for _, slot := range resp.Slots {
		out.Slots = append(out.Slots, Slot{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
			Reason:          slot.Reason,
		})
	}

	return out
}
