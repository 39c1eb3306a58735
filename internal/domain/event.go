package domain

import "time"

// Статусы событий внешнего календаря после нормализации
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// CalendarEvent represents a normalized event from the external calendar.
// Produced by a single translation function at the provider boundary;
// untyped provider payloads never leak past it.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Status      string
	Attendees   []string
}

// IsBusy returns true if the event occupies its time window for conflict
// detection. Cancelled events are ignored.
func (e *CalendarEvent) IsBusy() bool {
	return e.Status != EventStatusCancelled
}

// IsValid returns true if the event has usable start/end timestamps.
// Third-party data is sometimes malformed; invalid events are skipped
// rather than failing the whole computation.
func (e *CalendarEvent) IsValid() bool {
	return !e.Start.IsZero() && !e.End.IsZero() && e.Start.Before(e.End)
}
