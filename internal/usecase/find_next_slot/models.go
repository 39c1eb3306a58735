package find_next_slot

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Request модель запроса поиска ближайшего доступного слота
type Request struct {
	UserID          int64     // ID пользователя (для логирования и прав доступа)
	StudentID       *int64    // Студент для персональных лимитов (опционально)
	From            time.Time // Момент, начиная с которого искать (по умолчанию - сейчас)
	DurationMinutes int       // Желаемая длительность занятия в минутах
	MaxDays         int       // Горизонт поиска в днях (0 - дефолтный)
}

// Response модель ответа поиска ближайшего слота
// Found=false означает, что горизонт поиска исчерпан без единого слота
type Response struct {
	Found bool  `json:"found"`
	Slot  *Slot `json:"slot,omitempty"`
}

// Slot найденный слот
type Slot struct {
	Date            time.Time        `json:"date"`
	StartTime       types.TimeString `json:"startTime"`
	EndTime         types.TimeString `json:"endTime"`
	DurationMinutes int              `json:"durationMinutes"`
}
