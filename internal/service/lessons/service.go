package lessons

import (
	"context"
	"errors"
	"fmt"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	lessonRepo "github.com/KerelosNasser/driving-school-sub004/internal/infra/storage/lesson"
	"github.com/KerelosNasser/driving-school-sub004/internal/service/lessons/models"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
)

// Service сервис для работы с занятиями
type Service struct {
	lessonRepo LessonRepository
	calendar   CalendarClient
	cache      *availcache.Cache
	managerIDs []int64
	logger     Logger
}

// NewService создает новый экземпляр сервиса занятий
func NewService(
	lessonRepo LessonRepository,
	calendar CalendarClient,
	cache *availcache.Cache,
	managerIDs []int64,
	logger Logger,
) *Service {
	return &Service{
		lessonRepo: lessonRepo,
		calendar:   calendar,
		cache:      cache,
		managerIDs: managerIDs,
		logger:     logger,
	}
}

// GetByID получает занятие по ID
// Студент видит только свои занятия, менеджер школы - любые
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.LessonResponse, error) {
	s.logger.Info("GetByID: fetching lesson id=%d for user=%d", id, userID)

	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("GetByID: lesson id=%d not found", id)
			return nil, ErrLessonNotFound
		}
		s.logger.Error("GetByID: repository error for lesson id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(lesson, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to lesson id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched lesson id=%d", id)
	return models.FromDomainLesson(lesson), nil
}

// GetStudentLessons получает историю занятий студента
// Студент видит только свою историю, менеджер школы - любую
func (s *Service) GetStudentLessons(ctx context.Context, req *models.GetStudentLessonsRequest) (*models.LessonListResponse, error) {
	s.logger.Info("GetStudentLessons: fetching lessons for student=%d, user=%d, status=%v",
		req.StudentID, req.UserID, req.Status)

	if req.UserID != req.StudentID && !s.isManager(req.UserID) {
		s.logger.Warn("GetStudentLessons: access denied for user=%d to student=%d", req.UserID, req.StudentID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.LessonStatus
	if req.Status != nil {
		status, err := models.ToDomainLessonStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetStudentLessons: invalid status=%s for student=%d", *req.Status, req.StudentID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	lessons, err := s.lessonRepo.GetByStudentID(ctx, req.StudentID, domainStatus)
	if err != nil {
		s.logger.Error("GetStudentLessons: repository error for student=%d: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: GetStudentLessons - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStudentLessons: successfully fetched %d lessons for student=%d", len(lessons), req.StudentID)
	return models.FromDomainLessonList(lessons), nil
}

// GetSchoolLessons получает занятия школы с гибкой фильтрацией
// Поддерживает фильтрацию по студенту, периоду, статусу и включению неактивных
// занятий. Доступно только менеджерам школы.
func (s *Service) GetSchoolLessons(ctx context.Context, req *models.GetSchoolLessonsRequest) (*models.LessonListResponse, error) {
	s.logger.Info("GetSchoolLessons: fetching lessons for user=%d", req.UserID)

	if !s.isManager(req.UserID) {
		s.logger.Warn("GetSchoolLessons: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetSchoolLessons: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	lessons, err := s.lessonRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetSchoolLessons: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetSchoolLessons - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSchoolLessons: successfully fetched %d lessons", len(lessons))
	return models.FromDomainLessonList(lessons), nil
}

// Cancel отменяет занятие
// Студент может отменить только своё занятие (cancelled_by_student),
// менеджер школы - любое (cancelled_by_school)
//
// Удаление события из внешнего календаря выполняется best-effort: отмена
// в БД уже состоялась, поэтому сбой календаря логируется, но не откатывает её
func (s *Service) Cancel(ctx context.Context, lessonID int64, req *models.CancelLessonRequest) error {
	s.logger.Info("Cancel: cancelling lesson id=%d by user=%d", lessonID, req.UserID)

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("Cancel: lesson id=%d not found", lessonID)
			return ErrLessonNotFound
		}
		s.logger.Error("Cancel: repository error for lesson id=%d: %v", lessonID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !lesson.CanBeCancelled() {
		s.logger.Warn("Cancel: lesson id=%d cannot be cancelled, status=%s", lessonID, lesson.Status)
		return ErrCannotCancel
	}

	// Определяем статус отмены в зависимости от прав доступа
	var cancelStatus domain.LessonStatus
	if lesson.StudentID == req.UserID {
		cancelStatus = domain.StatusCancelledByStudent
	} else {
		if !s.isManager(req.UserID) {
			s.logger.Warn("Cancel: access denied for user=%d to cancel lesson id=%d", req.UserID, lessonID)
			return ErrAccessDenied
		}
		cancelStatus = domain.StatusCancelledBySchool
	}

	if err := s.lessonRepo.Cancel(ctx, lessonID, cancelStatus, req.CancellationReason); err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("Cancel: lesson id=%d not found during cancellation", lessonID)
			return ErrLessonNotFound
		}
		s.logger.Error("Cancel: repository error for lesson id=%d: %v", lessonID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Освободившийся слот должен сразу стать видимым
	s.invalidateAvailability()

	if lesson.CalendarEventID != nil {
		if err := s.calendar.DeleteEvent(ctx, *lesson.CalendarEventID); err != nil {
			s.logger.Warn("Cancel: failed to delete calendar event %s for lesson id=%d: %v",
				*lesson.CalendarEventID, lessonID, err)
		}
	}

	s.logger.Info("Cancel: successfully cancelled lesson id=%d with status=%s", lessonID, cancelStatus)
	return nil
}

// UpdateStatus обновляет статус занятия (подтверждение, завершение, no-show)
// Доступно только менеджерам школы
func (s *Service) UpdateStatus(ctx context.Context, lessonID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating lesson id=%d to status=%s by user=%d",
		lessonID, req.Status, req.UserID)

	if !s.isManager(req.UserID) {
		s.logger.Warn("UpdateStatus: access denied for user=%d", req.UserID)
		return ErrAccessDenied
	}

	newStatus, err := models.ToDomainLessonStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for lesson id=%d", req.Status, lessonID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if err := s.lessonRepo.UpdateStatus(ctx, lessonID, newStatus); err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("UpdateStatus: lesson id=%d not found", lessonID)
			return ErrLessonNotFound
		}
		s.logger.Error("UpdateStatus: repository error for lesson id=%d: %v", lessonID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Смена статуса меняет участие занятия в конфликтах и квотах
	s.invalidateAvailability()

	s.logger.Info("UpdateStatus: successfully updated lesson id=%d to status=%s", lessonID, newStatus)
	return nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к занятию
func (s *Service) checkUserAccess(lesson *domain.Lesson, userID int64) error {
	if lesson.StudentID == userID {
		return nil
	}
	if s.isManager(userID) {
		return nil
	}
	return ErrAccessDenied
}

// isManager проверяет, является ли пользователь менеджером школы
func (s *Service) isManager(userID int64) bool {
	for _, id := range s.managerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// invalidateAvailability сбрасывает кэш рассчитанной доступности
// Инструктор один, поэтому изменение любого занятия затрагивает слоты всех студентов
func (s *Service) invalidateAvailability() {
	if removed, err := s.cache.InvalidatePattern("^availability:"); err == nil && removed > 0 {
		s.logger.Info("invalidateAvailability: evicted %d cache entries", removed)
	}
}
