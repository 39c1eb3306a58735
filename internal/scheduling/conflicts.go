package scheduling

import (
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
)

// MarkBusyConflicts аннотирует слоты, пересекающиеся с занятыми событиями
//
// Формула пересечения с буфером, симметрично расширяющим событие:
//
//	slot.Start < event.End + buffer И slot.End > event.Start - buffer
//
// Неравенства строгие: слот, начинающийся ровно через buffer минут после
// конца события, доступен. События без корректных start/end пропускаются
// как неконфликтующие - внешние данные бывают битыми, и одно кривое событие
// не должно ронять весь расчёт.
//
// Возвращается новый список, входные слоты не мутируются.
func MarkBusyConflicts(slots []domain.TimeSlot, events []domain.CalendarEvent, bufferMinutes int) []domain.TimeSlot {
	buffer := time.Duration(bufferMinutes) * time.Minute

	out := make([]domain.TimeSlot, len(slots))
	for i, slot := range slots {
		annotated := slot

		if annotated.Available {
			for j := range events {
				event := &events[j]
				if !event.IsValid() || !event.IsBusy() {
					continue
				}

				if slot.Start.Before(event.End.Add(buffer)) && slot.End.After(event.Start.Add(-buffer)) {
					annotated.Available = false
					annotated.Reason = domain.ReasonOverlap
					break
				}
			}
		}

		out[i] = annotated
	}

	return out
}

// LessonsAsBusyEvents конвертирует блокирующие занятия в занятые интервалы
// для проверки пересечений. Занятия с некорректным временем пропускаются.
func LessonsAsBusyEvents(lessons []*domain.Lesson) []domain.CalendarEvent {
	events := make([]domain.CalendarEvent, 0, len(lessons))

	for _, lesson := range lessons {
		if !lesson.IsBlocking() {
			continue
		}

		start, err := lesson.StartTime.OnDate(lesson.LessonDate)
		if err != nil {
			continue
		}

		events = append(events, domain.CalendarEvent{
			ID:     "lesson",
			Start:  start,
			End:    start.Add(time.Duration(lesson.DurationMinutes) * time.Minute),
			Status: domain.EventStatusConfirmed,
		})
	}

	return events
}

// usage суммарное потребление квоты студентом за период
type usage struct {
	hours   float64
	lessons int
}

// ApplyStudentCaps применяет персональные лимиты студента и проверку буфера
// к уже размеченным слотам
//
// Порядок проверок фиксирован: пересечение (уже сделано ранее), дневной лимит,
// недельный лимит, буферная близость. Слот получает причину первой сработавшей
// проверки и никогда не несёт несколько причин одновременно.
func ApplyStudentCaps(
	slots []domain.TimeSlot,
	date time.Time,
	requestedDuration int,
	studentLessons []*domain.Lesson,
	constraints domain.SchedulingConstraints,
) []domain.TimeSlot {
	requestedHours := float64(requestedDuration) / 60.0

	daily := usageForRange(studentLessons, dayStart(date), dayStart(date).AddDate(0, 0, 1))
	weekly := usageForRange(studentLessons, WeekStart(date), WeekStart(date).AddDate(0, 0, 7))

	out := make([]domain.TimeSlot, len(slots))
	for i, slot := range slots {
		annotated := slot

		if annotated.Available {
			switch {
			case daily.hours+requestedHours > constraints.MaxHoursPerDay:
				annotated.Available = false
				annotated.Reason = domain.ReasonDailyLimit

			case daily.lessons >= constraints.MaxLessonsPerDay:
				annotated.Available = false
				annotated.Reason = domain.ReasonDailyCount

			case weekly.hours+requestedHours > constraints.MaxHoursPerWeek:
				annotated.Available = false
				annotated.Reason = domain.ReasonWeeklyLimit

			case weekly.lessons >= constraints.MaxLessonsPerWeek:
				annotated.Available = false
				annotated.Reason = domain.ReasonWeeklyCount

			case violatesBuffer(slot, studentLessons, constraints.MinBufferBetweenLessons):
				annotated.Available = false
				annotated.Reason = domain.ReasonBuffer
			}
		}

		out[i] = annotated
	}

	return out
}

// violatesBuffer проверяет, что слот не попадает ближе чем на buffer минут
// к границе существующего занятия студента (с любой стороны)
//
// Проверка отделена от проверки пересечения: жёсткое пересечение и нехватка
// буфера требуют разных сообщений пользователю. Граница ровно в buffer минут
// допустима - неравенства строгие, согласованно с формулой пересечения.
func violatesBuffer(slot domain.TimeSlot, lessons []*domain.Lesson, bufferMinutes int) bool {
	if bufferMinutes <= 0 {
		return false
	}
	buffer := time.Duration(bufferMinutes) * time.Minute

	for _, lesson := range lessons {
		if !lesson.CountsTowardLimits() {
			continue
		}

		lessonStart, err := lesson.StartTime.OnDate(lesson.LessonDate)
		if err != nil {
			continue
		}
		lessonEnd := lessonStart.Add(time.Duration(lesson.DurationMinutes) * time.Minute)

		// Слот после занятия: зазор между концом занятия и началом слота
		if !slot.Start.Before(lessonEnd) {
			if slot.Start.Sub(lessonEnd) < buffer {
				return true
			}
			continue
		}

		// Слот до занятия: зазор между концом слота и началом занятия
		if !slot.End.After(lessonStart) {
			if lessonStart.Sub(slot.End) < buffer {
				return true
			}
		}
	}

	return false
}

// usageForRange суммирует часы и количество занятий студента в [from, to)
func usageForRange(lessons []*domain.Lesson, from, to time.Time) usage {
	var u usage

	for _, lesson := range lessons {
		if !lesson.CountsTowardLimits() {
			continue
		}

		day := dayStart(lesson.LessonDate)
		if day.Before(from) || !day.Before(to) {
			continue
		}

		u.hours += lesson.Hours()
		u.lessons++
	}

	return u
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
