package get_week_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/api/handlers"
	"github.com/KerelosNasser/driving-school-sub004/internal/api/middleware"
	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	getWeekAvailability "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_week_availability"
)

const (
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration = "некорректная длительность занятия"
	msgInvalidStudent  = "некорректный ID студента"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgWeekInPast      = "неделя в прошлом"
	msgWeekTooFar      = "неделя слишком далеко в будущем"
)

type Handler struct {
	useCase GetWeekAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetWeekAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability/week?date=YYYY-MM-DD&durationMinutes=60&studentId=42
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /availability/week - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /availability/week - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	durationMinutes, err := strconv.Atoi(query.Get("durationMinutes"))
	if err != nil {
		h.logger.Warn("GET /availability/week - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	var studentID *int64
	if raw := query.Get("studentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("GET /availability/week - Invalid student ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStudent)
			return
		}
		studentID = &id
	}

	result, err := h.useCase.Execute(r.Context(), &getWeekAvailability.Request{
		UserID:          userID,
		StudentID:       studentID,
		Date:            date,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, getWeekAvailability.ErrInvalidDate):
			h.logger.Warn("GET /availability/week - Week in past: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgWeekInPast)

		case errors.Is(err, getWeekAvailability.ErrDateTooFarInFuture):
			h.logger.Warn("GET /availability/week - Week too far: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgWeekTooFar)

		case errors.Is(err, getWeekAvailability.ErrInvalidDuration):
			h.logger.Warn("GET /availability/week - Invalid duration: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, getWeekAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability/week - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /availability/week - Failed: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability/week - %.1f available hours: user_id=%d, week=%s",
		result.TotalWeeklyHours, userID, result.WeekStart.Format(domain.DateFormat))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
