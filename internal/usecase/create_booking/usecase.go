package create_booking

import (
	"context"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/integrations/gcalendar"
	"github.com/KerelosNasser/driving-school-sub004/internal/scheduling"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// UseCase use case для бронирования занятия
//
// Кэшированная доступность никогда не принимает решение о записи: все проверки
// выполняются заново в сериализуемой транзакции по свежим данным, с блокировкой
// занятий дня через FOR UPDATE. Два студента, претендующие на один слот,
// сериализуются на уровне БД - один получает запись, второй отказ.
type UseCase struct {
	lessonRepo   LessonRepository
	schedule     ScheduleSource
	calendar     CalendarClient
	txManager    TransactionManager
	cache        *availcache.Cache
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	lessonRepo LessonRepository,
	schedule ScheduleSource,
	calendar CalendarClient,
	txManager TransactionManager,
	cache *availcache.Cache,
	logger Logger,
) *UseCase {
	return &UseCase{
		lessonRepo:   lessonRepo,
		schedule:     schedule,
		calendar:     calendar,
		txManager:    txManager,
		cache:        cache,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case бронирования занятия
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: student=%d, date=%s, time=%s, duration=%d, type=%s",
		req.StudentID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes, req.LessonType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Валидация даты
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 3. Слот на сегодня не должен быть уже начавшимся
	if isSameDay(req.Date, now) && req.StartTime.IsBefore(types.NewTimeString(now)) {
		uc.logger.Warn("CreateBooking: slot %s already started", req.StartTime)
		return nil, ErrTooLateToBook
	}

	// 4. Действующие ограничения - нужны до транзакции ради буфера
	// для проверки внешнего календаря
	constraints, err := uc.schedule.GetConstraints(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get constraints: %v", err)
		return nil, fmt.Errorf("%w: failed to get constraints: %v", ErrInternal, err)
	}

	slotStart, err := req.StartTime.OnDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	slotEnd := slotStart.Add(time.Duration(req.DurationMinutes) * time.Minute)

	// 5. Занятость внешнего календаря проверяется free/busy запросом по
	// запрошенному окну - до транзакции: HTTP вызову не место внутри
	// сериализуемой транзакции
	busy, err := uc.calendar.IsBusy(ctx, slotStart, slotEnd, constraints.MinBufferBetweenLessons)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check calendar busy: %v", err)
		return nil, fmt.Errorf("%w: failed to check calendar busy: %v", ErrInternal, err)
	}
	if busy {
		uc.logger.Warn("CreateBooking: slot %s conflicts with external calendar", req.StartTime)
		return nil, ErrSlotConflict
	}

	dayFrom := dayOnly(req.Date)

	var result *domain.Lesson

	// 6. Все проверки и запись выполняются в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Рабочее окно дня
		window, err := uc.resolveWindow(txCtx, req.Date, constraints)
		if err != nil {
			return err
		}

		startMin, err := req.StartTime.MinutesFromMidnight()
		if err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}

		if err := validateSlotWindow(startMin, req.DurationMinutes, window); err != nil {
			uc.logger.Warn("CreateBooking: slot %s outside working hours on %s",
				req.StartTime, req.Date.Format(domain.DateFormat))
			return err
		}

		// 6.2. Занятия дня с блокировкой FOR UPDATE - конкурирующая запись
		// на эту дату будет ждать завершения нашей транзакции
		dayLessons, err := uc.lessonRepo.GetWithFilter(txCtx, domain.LessonsFilter{
			StartDate: &dayFrom,
			EndDate:   &dayFrom,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get day lessons: %v", err)
			return fmt.Errorf("%w: failed to get day lessons: %v", ErrInternal, err)
		}

		// 6.3. Занятия студента за неделю - для лимитов и буфера
		weekStart := scheduling.WeekStart(req.Date)
		weekEnd := weekStart.AddDate(0, 0, 6)
		studentLessons, err := uc.lessonRepo.GetWithFilter(txCtx, domain.LessonsFilter{
			StudentID: &req.StudentID,
			StartDate: &weekStart,
			EndDate:   &weekEnd,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get student lessons: %v", err)
			return fmt.Errorf("%w: failed to get student lessons: %v", ErrInternal, err)
		}

		// 6.4. Прогоняем запрошенный слот через ту же цепочку проверок,
		// что размечает слоты в выдаче доступности
		if err := uc.checkSlot(req, dayLessons, studentLessons, *constraints); err != nil {
			uc.logger.Warn("CreateBooking: slot rejected for student=%d: %v", req.StudentID, err)
			return err
		}

		// 6.5. Создаем занятие
		lesson := &domain.Lesson{
			StudentID:       req.StudentID,
			LessonDate:      dayFrom,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Status:          domain.StatusConfirmed,
			LessonType:      req.LessonType,
			Notes:           req.Notes,
		}

		created, err := uc.lessonRepo.Create(txCtx, lesson)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create lesson: %v", err)
			return fmt.Errorf("%w: failed to create lesson: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created lesson id=%d", result.ID)

	// 7. Занятое место должно исчезнуть из выдачи доступности немедленно
	uc.invalidateAvailability()

	// 8. Синхронизация с внешним календарём - best-effort после коммита:
	// занятие уже в БД, сбой календаря его не отменяет
	uc.syncCalendarEvent(ctx, result)

	return &Response{
		ID:              result.ID,
		StudentID:       result.StudentID,
		LessonDate:      result.LessonDate,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		LessonType:      result.LessonType,
		Notes:           result.Notes,
		CalendarEventID: result.CalendarEventID,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// checkSlot прогоняет запрошенный слот через проверки пересечений и лимитов
// Внешний календарь здесь уже не участвует - его занятость проверена
// free/busy запросом до транзакции
func (uc *UseCase) checkSlot(
	req *Request,
	dayLessons []*domain.Lesson,
	studentLessons []*domain.Lesson,
	constraints domain.SchedulingConstraints,
) error {
	start, err := req.StartTime.OnDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	slot := []domain.TimeSlot{{
		Start:           start,
		End:             start.Add(time.Duration(req.DurationMinutes) * time.Minute),
		DurationMinutes: req.DurationMinutes,
		Available:       true,
	}}

	busy := scheduling.LessonsAsBusyEvents(dayLessons)
	slot = scheduling.MarkBusyConflicts(slot, busy, constraints.MinBufferBetweenLessons)
	slot = scheduling.ApplyStudentCaps(slot, req.Date, req.DurationMinutes, studentLessons, constraints)

	if !slot[0].Available {
		return slotRejection(slot[0].Reason)
	}

	return nil
}

// resolveWindow определяет рабочее окно дня для даты
func (uc *UseCase) resolveWindow(ctx context.Context, date time.Time, constraints *domain.SchedulingConstraints) (scheduling.Window, error) {
	wh, ok, err := uc.schedule.GetWorkingHoursForDate(ctx, date)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get working hours: %v", err)
		return scheduling.Window{}, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	startTS := constraints.EarliestStartTime
	endTS := constraints.LatestEndTime
	enabled := true
	if ok {
		startTS = wh.Start
		endTS = wh.End
		enabled = wh.Enabled
	}

	startMin, err := startTS.MinutesFromMidnight()
	if err != nil {
		uc.logger.Warn("CreateBooking: malformed start time %q, defaulting to 00:00", startTS)
		startMin = 0
	}
	endMin, err := endTS.MinutesFromMidnight()
	if err != nil {
		uc.logger.Warn("CreateBooking: malformed end time %q, defaulting to 00:00", endTS)
		endMin = 0
	}

	return scheduling.Window{StartMinutes: startMin, EndMinutes: endMin, Enabled: enabled}, nil
}

// syncCalendarEvent создает событие во внешнем календаре и привязывает его к занятию
func (uc *UseCase) syncCalendarEvent(ctx context.Context, lesson *domain.Lesson) {
	start, err := lesson.StartTime.OnDate(lesson.LessonDate)
	if err != nil {
		uc.logger.Warn("CreateBooking: cannot sync lesson id=%d to calendar: %v", lesson.ID, err)
		return
	}

	event, err := uc.calendar.CreateEvent(ctx, &gcalendar.EventData{
		Title:       fmt.Sprintf("Driving lesson (%s)", lesson.LessonType),
		Description: fmt.Sprintf("Lesson #%d, student #%d", lesson.ID, lesson.StudentID),
		Start:       start,
		End:         start.Add(time.Duration(lesson.DurationMinutes) * time.Minute),
	})
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to create calendar event for lesson id=%d: %v", lesson.ID, err)
		return
	}

	if err := uc.lessonRepo.SetCalendarEventID(ctx, lesson.ID, event.ID); err != nil {
		uc.logger.Warn("CreateBooking: failed to store calendar event id for lesson id=%d: %v", lesson.ID, err)
		return
	}

	lesson.CalendarEventID = &event.ID
	uc.logger.Info("CreateBooking: lesson id=%d synced to calendar event %s", lesson.ID, event.ID)
}

// invalidateAvailability сбрасывает кэш рассчитанной доступности
func (uc *UseCase) invalidateAvailability() {
	if removed, err := uc.cache.InvalidatePattern("^availability:"); err == nil && removed > 0 {
		uc.logger.Info("CreateBooking: evicted %d availability cache entries", removed)
	}
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
