package models

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Request модели

// UpdateScheduleRequest запрос на обновление настроек расписания
// Все поля опциональны - обновляются только переданные
type UpdateScheduleRequest struct {
	UserID int64 `json:"userId"`

	MaxHoursPerDay          *float64 `json:"maxHoursPerDay,omitempty"`
	MaxLessonsPerDay        *int     `json:"maxLessonsPerDay,omitempty"`
	MaxHoursPerWeek         *float64 `json:"maxHoursPerWeek,omitempty"`
	MaxLessonsPerWeek       *int     `json:"maxLessonsPerWeek,omitempty"`
	EarliestStartTime       *string  `json:"earliestStartTime,omitempty"`
	LatestEndTime           *string  `json:"latestEndTime,omitempty"`
	MinBufferBetweenLessons *int     `json:"minBufferBetweenLessons,omitempty"`

	WorkingHours []WorkingHoursUpdate `json:"workingHours,omitempty"`

	AddVacationDays    []string `json:"addVacationDays,omitempty"`    // даты "2006-01-02"
	RemoveVacationDays []string `json:"removeVacationDays,omitempty"` // даты "2006-01-02"
}

// WorkingHoursUpdate обновление рабочих часов на день недели
type WorkingHoursUpdate struct {
	Weekday int    `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// Response модели

// ConstraintsResponse ответ с ограничениями расписания
type ConstraintsResponse struct {
	MaxHoursPerDay          float64 `json:"maxHoursPerDay"`
	MaxLessonsPerDay        int     `json:"maxLessonsPerDay"`
	MaxHoursPerWeek         float64 `json:"maxHoursPerWeek"`
	MaxLessonsPerWeek       int     `json:"maxLessonsPerWeek"`
	EarliestStartTime       string  `json:"earliestStartTime"`
	LatestEndTime           string  `json:"latestEndTime"`
	MinBufferBetweenLessons int     `json:"minBufferBetweenLessons"`

	WorkingHours []WorkingHoursResponse `json:"workingHours"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkingHoursResponse рабочие часы на день недели
type WorkingHoursResponse struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// FromDomainConstraints конвертирует domain модели в response
func FromDomainConstraints(c *domain.SchedulingConstraints, hours domain.WorkingHoursByDay) *ConstraintsResponse {
	resp := &ConstraintsResponse{
		MaxHoursPerDay:          c.MaxHoursPerDay,
		MaxLessonsPerDay:        c.MaxLessonsPerDay,
		MaxHoursPerWeek:         c.MaxHoursPerWeek,
		MaxLessonsPerWeek:       c.MaxLessonsPerWeek,
		EarliestStartTime:       string(c.EarliestStartTime),
		LatestEndTime:           string(c.LatestEndTime),
		MinBufferBetweenLessons: c.MinBufferBetweenLessons,
		WorkingHours:            make([]WorkingHoursResponse, 0, len(hours)),
		UpdatedAt:               c.UpdatedAt,
	}

	// Стабильный порядок: воскресенье..суббота
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		wh, ok := hours[weekday]
		if !ok {
			continue
		}
		resp.WorkingHours = append(resp.WorkingHours, WorkingHoursResponse{
			Weekday: int(wh.Weekday),
			Start:   string(wh.Start),
			End:     string(wh.End),
			Enabled: wh.Enabled,
		})
	}

	return resp
}

// ToDomainUpdate конвертирует request в domain обновление ограничений
func (r *UpdateScheduleRequest) ToDomainUpdate() domain.ConstraintsUpdate {
	update := domain.ConstraintsUpdate{
		MaxHoursPerDay:          r.MaxHoursPerDay,
		MaxLessonsPerDay:        r.MaxLessonsPerDay,
		MaxHoursPerWeek:         r.MaxHoursPerWeek,
		MaxLessonsPerWeek:       r.MaxLessonsPerWeek,
		MinBufferBetweenLessons: r.MinBufferBetweenLessons,
	}

	if r.EarliestStartTime != nil {
		ts := types.TimeString(*r.EarliestStartTime)
		update.EarliestStartTime = &ts
	}
	if r.LatestEndTime != nil {
		ts := types.TimeString(*r.LatestEndTime)
		update.LatestEndTime = &ts
	}

	return update
}
