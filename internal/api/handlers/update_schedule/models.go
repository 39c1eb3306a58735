package update_schedule

import "github.com/KerelosNasser/driving-school-sub004/internal/service/schedule/models"

// UpdateScheduleRequest HTTP request model
// Все поля опциональны - обновляются только переданные
type UpdateScheduleRequest struct {
	MaxHoursPerDay          *float64 `json:"maxHoursPerDay,omitempty"`
	MaxLessonsPerDay        *int     `json:"maxLessonsPerDay,omitempty"`
	MaxHoursPerWeek         *float64 `json:"maxHoursPerWeek,omitempty"`
	MaxLessonsPerWeek       *int     `json:"maxLessonsPerWeek,omitempty"`
	EarliestStartTime       *string  `json:"earliestStartTime,omitempty"`
	LatestEndTime           *string  `json:"latestEndTime,omitempty"`
	MinBufferBetweenLessons *int     `json:"minBufferBetweenLessons,omitempty"`

	WorkingHours []WorkingHoursUpdate `json:"workingHours,omitempty"`

	AddVacationDays    []string `json:"addVacationDays,omitempty"`
	RemoveVacationDays []string `json:"removeVacationDays,omitempty"`
}

// WorkingHoursUpdate обновление рабочих часов на день недели
type WorkingHoursUpdate struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest(userID int64) *models.UpdateScheduleRequest {
	req := &models.UpdateScheduleRequest{
		UserID:                  userID,
		MaxHoursPerDay:          r.MaxHoursPerDay,
		MaxLessonsPerDay:        r.MaxLessonsPerDay,
		MaxHoursPerWeek:         r.MaxHoursPerWeek,
		MaxLessonsPerWeek:       r.MaxLessonsPerWeek,
		EarliestStartTime:       r.EarliestStartTime,
		LatestEndTime:           r.LatestEndTime,
		MinBufferBetweenLessons: r.MinBufferBetweenLessons,
		AddVacationDays:         r.AddVacationDays,
		RemoveVacationDays:      r.RemoveVacationDays,
	}

	for _, wh := range r.WorkingHours {
		req.WorkingHours = append(req.WorkingHours, models.WorkingHoursUpdate{
			Weekday: wh.Weekday,
			Start:   wh.Start,
			End:     wh.End,
			Enabled: wh.Enabled,
		})
	}

	return req
}
