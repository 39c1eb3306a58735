package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// ScheduleSource источник ограничений и рабочих часов
// Возвращает снапшоты - калькулятор никогда не держит живую ссылку на конфигурацию
type ScheduleSource interface {
	GetConstraints(ctx context.Context) (*domain.SchedulingConstraints, error)
	// GetWorkingHoursForDate возвращает рабочие часы на дату
	// ok=false означает, что для дня недели нет отдельной записи и нужно
	// использовать дефолтные границы из ограничений
	GetWorkingHoursForDate(ctx context.Context, date time.Time) (domain.WorkingHours, bool, error)
}

// EventSource источник событий внешнего календаря
// При недоступности календаря реализация возвращает пустой список, а не ошибку
type EventSource interface {
	GetEvents(ctx context.Context, start, end time.Time) ([]domain.CalendarEvent, error)
}

// LessonSource источник локальных занятий
type LessonSource interface {
	GetWithFilter(ctx context.Context, filter domain.LessonsFilter) ([]*domain.Lesson, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Calculator вычисляет доступность: день, неделя, поиск ближайшего слота
//
// Оркестрирует генерацию слотов и разметку конфликтов. Чистая арифметика
// синхронна; внешние источники (календарь, БД) опрашиваются до начала
// фильтрации - никакой спекулятивной разметки по неполным данным.
type Calculator struct {
	schedule ScheduleSource
	events   EventSource
	lessons  LessonSource
	log      Logger
}

// NewCalculator создает новый калькулятор доступности
func NewCalculator(schedule ScheduleSource, events EventSource, lessons LessonSource, log Logger) *Calculator {
	return &Calculator{
		schedule: schedule,
		events:   events,
		lessons:  lessons,
		log:      log,
	}
}

// CalculateDay вычисляет доступность на один день
//
// Слот недоступен для всех, как только его занял любой студент; персональные
// лимиты и буфер применяются только когда указан studentID и только по его
// собственным занятиям.
func (c *Calculator) CalculateDay(ctx context.Context, date time.Time, durationMinutes int, studentID *int64) (*domain.DayAvailability, error) {
	constraints, err := c.schedule.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculator: failed to get constraints: %w", err)
	}

	window, err := c.resolveWindow(ctx, date, *constraints)
	if err != nil {
		return nil, err
	}

	slots := GenerateSlots(date, durationMinutes, window, constraints.MinBufferBetweenLessons)

	result := &domain.DayAvailability{
		Date:  dayStart(date),
		Slots: slots,
	}

	if len(slots) == 0 {
		// Выходной, отпуск или окно короче длительности занятия
		result.Flags.OutsideOperatingHours = true
		return result, nil
	}

	// Сначала полностью получаем внешние события и локальные занятия,
	// только потом начинаем фильтрацию
	from := dayStart(date)
	to := from.AddDate(0, 0, 1)

	events, err := c.events.GetEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("calculator: failed to get calendar events: %w", err)
	}

	dayLessons, err := c.lessons.GetWithFilter(ctx, domain.LessonsFilter{
		StartDate: &from,
		EndDate:   &from,
	})
	if err != nil {
		return nil, fmt.Errorf("calculator: failed to get lessons: %w", err)
	}

	busy := append(events, LessonsAsBusyEvents(dayLessons)...)
	slots = MarkBusyConflicts(slots, busy, constraints.MinBufferBetweenLessons)

	if studentID != nil {
		studentLessons, err := c.studentWeekLessons(ctx, *studentID, date)
		if err != nil {
			return nil, err
		}

		slots = ApplyStudentCaps(slots, date, durationMinutes, studentLessons, *constraints)
		result.Flags.DailyLimitReached = containsReason(slots, domain.ReasonDailyLimit, domain.ReasonDailyCount)
		result.Flags.WeeklyLimitReached = containsReason(slots, domain.ReasonWeeklyLimit, domain.ReasonWeeklyCount)
	}

	result.Slots = slots
	for _, slot := range slots {
		if slot.Available {
			result.TotalAvailableSlots++
			result.TotalAvailableHours += slot.Hours()
		}
	}

	return result, nil
}

// CalculateWeek вычисляет доступность на неделю, выровненную по понедельнику
func (c *Calculator) CalculateWeek(ctx context.Context, weekStart time.Time, durationMinutes int, studentID *int64) (*domain.WeekAvailability, error) {
	start := WeekStart(weekStart)

	result := &domain.WeekAvailability{
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, 7),
		Days:      make([]domain.DayAvailability, 0, 7),
	}

	for i := 0; i < 7; i++ {
		day, err := c.CalculateDay(ctx, start.AddDate(0, 0, i), durationMinutes, studentID)
		if err != nil {
			return nil, err
		}
		result.Days = append(result.Days, *day)
		result.TotalWeeklyHours += day.TotalAvailableHours
	}

	constraints, err := c.schedule.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculator: failed to get constraints: %w", err)
	}

	result.RemainingWeeklyHours = constraints.MaxHoursPerWeek
	result.RemainingWeeklyLessons = constraints.MaxLessonsPerWeek

	if studentID != nil {
		lessons, err := c.studentWeekLessons(ctx, *studentID, start)
		if err != nil {
			return nil, err
		}

		consumed := usageForRange(lessons, start, start.AddDate(0, 0, 7))

		result.RemainingWeeklyHours = constraints.MaxHoursPerWeek - consumed.hours
		if result.RemainingWeeklyHours < 0 {
			result.RemainingWeeklyHours = 0
		}

		result.RemainingWeeklyLessons = constraints.MaxLessonsPerWeek - consumed.lessons
		if result.RemainingWeeklyLessons < 0 {
			result.RemainingWeeklyLessons = 0
		}
	}

	return result, nil
}

// FindNextSlot ищет ближайший доступный слот начиная с from
//
// Сканирует день за днём и останавливается на первом дне с доступным слотом,
// начинающимся не раньше from. Полный недельный расчёт здесь был бы
// расточителен - большинству вызывающих нужен только ближайший слот.
// Возвращает nil, если горизонт в maxDays исчерпан.
func (c *Calculator) FindNextSlot(ctx context.Context, from time.Time, durationMinutes int, studentID *int64, maxDays int) (*domain.TimeSlot, error) {
	if maxDays <= 0 {
		maxDays = domain.DefaultSearchDays
	}
	if maxDays > domain.MaxSearchDays {
		maxDays = domain.MaxSearchDays
	}

	for i := 0; i < maxDays; i++ {
		date := dayStart(from).AddDate(0, 0, i)

		day, err := c.CalculateDay(ctx, date, durationMinutes, studentID)
		if err != nil {
			return nil, err
		}

		for _, slot := range day.Slots {
			if slot.Available && !slot.Start.Before(from) {
				found := slot
				return &found, nil
			}
		}
	}

	return nil, nil
}

// resolveWindow определяет окно рабочего дня для даты
//
// Кривые строки "HH:MM" в конфигурации не валят расчёт доступности:
// граница по умолчанию - полночь, с предупреждением в логе
func (c *Calculator) resolveWindow(ctx context.Context, date time.Time, constraints domain.SchedulingConstraints) (Window, error) {
	startTS := constraints.EarliestStartTime
	endTS := constraints.LatestEndTime
	enabled := true

	wh, ok, err := c.schedule.GetWorkingHoursForDate(ctx, date)
	if err != nil {
		return Window{}, fmt.Errorf("calculator: failed to get working hours: %w", err)
	}
	if ok {
		startTS = wh.Start
		endTS = wh.End
		enabled = wh.Enabled
	}

	startMin, err := startTS.MinutesFromMidnight()
	if err != nil {
		c.log.Warn("calculator: malformed start time %q for %s, defaulting to 00:00", startTS, date.Format(domain.DateFormat))
		startMin = 0
	}

	endMin, err := endTS.MinutesFromMidnight()
	if err != nil {
		c.log.Warn("calculator: malformed end time %q for %s, defaulting to 00:00", endTS, date.Format(domain.DateFormat))
		endMin = 0
	}

	return Window{StartMinutes: startMin, EndMinutes: endMin, Enabled: enabled}, nil
}

// studentWeekLessons получает занятия студента за неделю, содержащую date
// Неделя нужна целиком: недельные лимиты считаются по понедельничному окну
func (c *Calculator) studentWeekLessons(ctx context.Context, studentID int64, date time.Time) ([]*domain.Lesson, error) {
	weekStart := WeekStart(date)
	weekEnd := weekStart.AddDate(0, 0, 6)

	lessons, err := c.lessons.GetWithFilter(ctx, domain.LessonsFilter{
		StudentID: &studentID,
		StartDate: &weekStart,
		EndDate:   &weekEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("calculator: failed to get student lessons: %w", err)
	}

	return lessons, nil
}

func containsReason(slots []domain.TimeSlot, reasons ...string) bool {
	for _, slot := range slots {
		for _, reason := range reasons {
			if slot.Reason == reason {
				return true
			}
		}
	}
	return false
}
