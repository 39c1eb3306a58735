package gcalendar

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// EventData данные для создания или обновления события в календаре
type EventData struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// Wire-модели провайдера. Нетипизированные данные провайдера не выходят
// за границу этого пакета - наружу отдается только domain.CalendarEvent

type eventResource struct {
	ID          string          `json:"id"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Start       eventTime       `json:"start"`
	End         eventTime       `json:"end"`
	Attendees   []eventAttendee `json:"attendees"`
}

type eventTime struct {
	// DateTime задан для обычных событий (RFC3339)
	DateTime string `json:"dateTime,omitempty"`
	// Date задан для событий на весь день (YYYY-MM-DD, конец эксклюзивный)
	Date string `json:"date,omitempty"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type eventsPage struct {
	Items         []eventResource `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

type freeBusyRequest struct {
	TimeMin string `json:"timeMin"`
	TimeMax string `json:"timeMax"`
}

type freeBusyInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type freeBusyResponse struct {
	Busy []freeBusyInterval `json:"busy"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// normalizeEvent переводит событие провайдера в доменную модель
//
// Все времена приводятся к абсолютным меткам. У событий на весь день провайдер
// отдает эксклюзивную границу следующего дня - она конвертируется в
// "конец дня минус секунда", чтобы событие до 2026-01-02 не конфликтовало
// со слотами 2026-01-03. Отсутствующие поля получают пустые значения, чтобы
// потребители не ветвились на "а есть ли поле".
func normalizeEvent(raw eventResource) domain.CalendarEvent {
	event := domain.CalendarEvent{
		ID:          raw.ID,
		Title:       raw.Summary,
		Description: raw.Description,
		Status:      raw.Status,
		Attendees:   make([]string, 0, len(raw.Attendees)),
	}

	if event.Status == "" {
		event.Status = domain.EventStatusConfirmed
	}

	for _, a := range raw.Attendees {
		event.Attendees = append(event.Attendees, a.Email)
	}

	event.Start, event.AllDay = parseEventTime(raw.Start, false)
	end, _ := parseEventTime(raw.End, true)
	event.End = end

	return event
}

// parseEventTime парсит время события; isEnd управляет инклюзивной
// нормализацией границы all-day событий
func parseEventTime(et eventTime, isEnd bool) (time.Time, bool) {
	if et.DateTime != "" {
		t, err := time.Parse(time.RFC3339, et.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, false
	}

	if et.Date != "" {
		d, err := time.Parse(domain.DateFormat, et.Date)
		if err != nil {
			return time.Time{}, true
		}
		if isEnd {
			// Эксклюзивная граница -> инклюзивный конец предыдущего дня
			return d.Add(-time.Second), true
		}
		return d, true
	}

	return time.Time{}, false
}
