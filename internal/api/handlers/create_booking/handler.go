package create_booking

import (
	"errors"
	"net/http"

	"github.com/KerelosNasser/driving-school-sub004/internal/api/handlers"
	"github.com/KerelosNasser/driving-school-sub004/internal/api/middleware"
	createBooking "github.com/KerelosNasser/driving-school-sub004/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateOrTime   = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgSlotConflict        = "выбранный временной слот уже занят"
	msgDailyLimit          = "превышен дневной лимит часов вождения"
	msgDailyCount          = "превышен дневной лимит количества занятий"
	msgWeeklyLimit         = "превышен недельный лимит часов вождения"
	msgWeeklyCount         = "превышен недельный лимит количества занятий"
	msgBufferViolation     = "недостаточный перерыв между занятиями"
	msgOutsideWorkingHours = "слот вне рабочих часов инструктора"
	msgInvalidLessonDate   = "некорректная дата занятия"
	msgDateTooFar          = "дата занятия слишком далеко в будущем"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/lessons
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /lessons - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateLessonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /lessons - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /lessons - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /lessons - Slot conflict: student_id=%d, date=%s, time=%s",
				userID, req.LessonDate, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrDailyLimitExceeded):
			h.logger.Warn("POST /lessons - Daily hour limit: student_id=%d", userID)
			handlers.RespondConflict(w, msgDailyLimit)

		case errors.Is(err, createBooking.ErrDailyCountExceeded):
			h.logger.Warn("POST /lessons - Daily lesson limit: student_id=%d", userID)
			handlers.RespondConflict(w, msgDailyCount)

		case errors.Is(err, createBooking.ErrWeeklyLimitExceeded):
			h.logger.Warn("POST /lessons - Weekly hour limit: student_id=%d", userID)
			handlers.RespondConflict(w, msgWeeklyLimit)

		case errors.Is(err, createBooking.ErrWeeklyCountExceeded):
			h.logger.Warn("POST /lessons - Weekly lesson limit: student_id=%d", userID)
			handlers.RespondConflict(w, msgWeeklyCount)

		case errors.Is(err, createBooking.ErrBufferViolation):
			h.logger.Warn("POST /lessons - Buffer violation: student_id=%d", userID)
			handlers.RespondConflict(w, msgBufferViolation)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /lessons - Outside working hours: student_id=%d", userID)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /lessons - Invalid lesson date: student_id=%d", userID)
			handlers.RespondBadRequest(w, msgInvalidLessonDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /lessons - Date too far in future: student_id=%d", userID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /lessons - Too late to book: student_id=%d", userID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /lessons - Invalid input: student_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /lessons - Failed to create lesson: student_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /lessons - Lesson created successfully: lesson_id=%d, student_id=%d",
		result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
