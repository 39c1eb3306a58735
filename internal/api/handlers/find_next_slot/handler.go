package find_next_slot

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/api/handlers"
	"github.com/KerelosNasser/driving-school-sub004/internal/api/middleware"
	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	findNextSlot "github.com/KerelosNasser/driving-school-sub004/internal/usecase/find_next_slot"
)

const (
	msgInvalidFrom     = "некорректный формат параметра from, ожидается RFC3339"
	msgInvalidDuration = "некорректная длительность занятия"
	msgInvalidMaxDays  = "некорректный горизонт поиска"
	msgInvalidStudent  = "некорректный ID студента"
	msgMissingUserID   = "отсутствует ID пользователя"
)

type Handler struct {
	useCase FindNextSlotUseCase
	logger  Logger
}

func NewHandler(useCase FindNextSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability/next?durationMinutes=60&from=2025-10-15T10:00:00Z&maxDays=14&studentId=42
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /availability/next - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()

	durationMinutes, err := strconv.Atoi(query.Get("durationMinutes"))
	if err != nil {
		h.logger.Warn("GET /availability/next - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	var from time.Time
	if raw := query.Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.logger.Warn("GET /availability/next - Invalid from: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
	}

	maxDays := 0
	if raw := query.Get("maxDays"); raw != "" {
		maxDays, err = strconv.Atoi(raw)
		if err != nil {
			h.logger.Warn("GET /availability/next - Invalid maxDays: %v", err)
			handlers.RespondBadRequest(w, msgInvalidMaxDays)
			return
		}
	}

	var studentID *int64
	if raw := query.Get("studentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("GET /availability/next - Invalid student ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStudent)
			return
		}
		studentID = &id
	}

	result, err := h.useCase.Execute(r.Context(), &findNextSlot.Request{
		UserID:          userID,
		StudentID:       studentID,
		From:            from,
		DurationMinutes: durationMinutes,
		MaxDays:         maxDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, findNextSlot.ErrInvalidDuration):
			h.logger.Warn("GET /availability/next - Invalid duration: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, findNextSlot.ErrInvalidInput):
			h.logger.Warn("GET /availability/next - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /availability/next - Failed: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Found {
		h.logger.Info("GET /availability/next - Found slot %s %s: user_id=%d",
			result.Slot.Date.Format(domain.DateFormat), result.Slot.StartTime, userID)
	} else {
		h.logger.Info("GET /availability/next - No slot within horizon: user_id=%d", userID)
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}
