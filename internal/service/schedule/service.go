package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	scheduleRepo "github.com/KerelosNasser/driving-school-sub004/internal/infra/storage/schedule"
	"github.com/KerelosNasser/driving-school-sub004/internal/service/schedule/models"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/metrics"
	"github.com/KerelosNasser/driving-school-sub004/pkg/types"
)

// Ключи кэша настроек расписания
const (
	cacheKeyConstraints  = "schedule:constraints"
	cacheKeyWorkingHours = "schedule:working_hours"
	cacheKeyVacation     = "schedule:vacation:" // + дата "2006-01-02"
)

// Service сервис настроек расписания
//
// Читающие методы отдают снапшоты из кэша: расчёт доступности дергает
// ограничения на каждый день диапазона, и без кэша одна неделя стоила бы
// семь походов в БД. Запись инвалидирует весь кэш расписания целиком.
//
// Возвращаемые значения всегда копии - вызывающие могут мутировать их,
// не трогая кэш.
type Service struct {
	scheduleRepo ScheduleRepository
	cache        *availcache.Cache
	cacheTTL     time.Duration
	managerIDs   []int64
	metrics      *metrics.Metrics // может быть nil, если метрики выключены
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	cache *availcache.Cache,
	cacheTTL time.Duration,
	managerIDs []int64,
	m *metrics.Metrics,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		managerIDs:   managerIDs,
		metrics:      m,
		logger:       logger,
	}
}

// GetConstraints возвращает действующие ограничения планирования
// Если ограничения не настроены, возвращает дефолтные значения
func (s *Service) GetConstraints(ctx context.Context) (*domain.SchedulingConstraints, error) {
	if cached, ok := s.cache.Get(cacheKeyConstraints); ok {
		s.observeCache("schedule", true)
		return cached.(*domain.SchedulingConstraints).Clone(), nil
	}
	s.observeCache("schedule", false)

	constraints, err := s.scheduleRepo.GetConstraints(ctx)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConstraintsNotFound) {
			s.logger.Info("GetConstraints: no constraints configured, using defaults")
			constraints = defaultConstraints()
		} else {
			s.logger.Error("GetConstraints: repository error: %v", err)
			return nil, fmt.Errorf("%w: GetConstraints - repository error: %v", ErrInternal, err)
		}
	}

	s.cache.Set(cacheKeyConstraints, constraints.Clone(), s.cacheTTL)
	return constraints, nil
}

// GetWorkingHoursForDate возвращает рабочие часы на конкретную дату
// Второй результат false означает нерабочий день (выходной или отпуск)
func (s *Service) GetWorkingHoursForDate(ctx context.Context, date time.Time) (domain.WorkingHours, bool, error) {
	onVacation, err := s.isVacationDay(ctx, date)
	if err != nil {
		return domain.WorkingHours{}, false, err
	}
	if onVacation {
		return domain.WorkingHours{Weekday: date.Weekday()}, false, nil
	}

	hours, err := s.getWorkingHours(ctx)
	if err != nil {
		return domain.WorkingHours{}, false, err
	}

	wh, ok := hours.ForDate(date)
	if !ok || !wh.Enabled {
		return domain.WorkingHours{Weekday: date.Weekday()}, false, nil
	}

	return wh, true, nil
}

// GetSchedule возвращает полные настройки расписания для API
func (s *Service) GetSchedule(ctx context.Context) (*models.ConstraintsResponse, error) {
	constraints, err := s.GetConstraints(ctx)
	if err != nil {
		return nil, err
	}

	hours, err := s.getWorkingHours(ctx)
	if err != nil {
		return nil, err
	}

	return models.FromDomainConstraints(constraints, hours), nil
}

// UpdateSchedule обновляет настройки расписания
// Доступно только менеджерам школы. Обновляются только переданные поля.
// После обновления кэш расписания и рассчитанной доступности сбрасывается -
// новые ограничения должны действовать немедленно
func (s *Service) UpdateSchedule(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ConstraintsResponse, error) {
	s.logger.Info("UpdateSchedule: updating schedule settings by user=%d", req.UserID)

	if err := s.checkManagerAccess(req.UserID); err != nil {
		s.logger.Warn("UpdateSchedule: access denied for user=%d", req.UserID)
		return nil, err
	}

	if err := validateUpdateRequest(req); err != nil {
		s.logger.Warn("UpdateSchedule: validation failed: %v", err)
		return nil, err
	}

	update := req.ToDomainUpdate()
	if update.HasChanges() {
		if err := s.scheduleRepo.UpdateConstraints(ctx, update); err != nil {
			s.logger.Error("UpdateSchedule: failed to update constraints: %v", err)
			return nil, fmt.Errorf("%w: UpdateSchedule - update constraints: %v", ErrInternal, err)
		}
	}

	for _, wh := range req.WorkingHours {
		err := s.scheduleRepo.UpsertWorkingHours(ctx, domain.WorkingHours{
			Weekday: time.Weekday(wh.Weekday),
			Start:   types.TimeString(wh.Start),
			End:     types.TimeString(wh.End),
			Enabled: wh.Enabled,
		})
		if err != nil {
			s.logger.Error("UpdateSchedule: failed to upsert working hours for weekday=%d: %v", wh.Weekday, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - upsert working hours: %v", ErrInternal, err)
		}
	}

	for _, raw := range req.AddVacationDays {
		day, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid vacation date %q", ErrInvalidInput, raw)
		}
		if err := s.scheduleRepo.AddVacationDay(ctx, day); err != nil {
			s.logger.Error("UpdateSchedule: failed to add vacation day %s: %v", raw, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - add vacation day: %v", ErrInternal, err)
		}
	}

	for _, raw := range req.RemoveVacationDays {
		day, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid vacation date %q", ErrInvalidInput, raw)
		}
		if err := s.scheduleRepo.RemoveVacationDay(ctx, day); err != nil {
			s.logger.Error("UpdateSchedule: failed to remove vacation day %s: %v", raw, err)
			return nil, fmt.Errorf("%w: UpdateSchedule - remove vacation day: %v", ErrInternal, err)
		}
	}

	s.Invalidate()

	s.logger.Info("UpdateSchedule: schedule settings updated by user=%d", req.UserID)
	return s.GetSchedule(ctx)
}

// Invalidate сбрасывает кэш настроек расписания и рассчитанной доступности
func (s *Service) Invalidate() {
	if removed, err := s.cache.InvalidatePattern("^(schedule|availability):"); err == nil && removed > 0 {
		s.logger.Info("Invalidate: evicted %d cache entries", removed)
	}
}

// getWorkingHours возвращает рабочие часы по всем дням недели (с кэшированием)
func (s *Service) getWorkingHours(ctx context.Context) (domain.WorkingHoursByDay, error) {
	if cached, ok := s.cache.Get(cacheKeyWorkingHours); ok {
		s.observeCache("schedule", true)
		return cached.(domain.WorkingHoursByDay).Clone(), nil
	}
	s.observeCache("schedule", false)

	hours, err := s.scheduleRepo.GetWorkingHours(ctx)
	if err != nil {
		s.logger.Error("getWorkingHours: repository error: %v", err)
		return nil, fmt.Errorf("%w: getWorkingHours - repository error: %v", ErrInternal, err)
	}

	// Дни, для которых нет строки в БД, считаются рабочими с дефолтным окном
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		if _, ok := hours[weekday]; !ok {
			hours[weekday] = domain.WorkingHours{
				Weekday: weekday,
				Start:   types.TimeString(domain.DefaultEarliestStartTime),
				End:     types.TimeString(domain.DefaultLatestEndTime),
				Enabled: true,
			}
		}
	}

	s.cache.Set(cacheKeyWorkingHours, hours.Clone(), s.cacheTTL)
	return hours, nil
}

// isVacationDay проверяет, приходится ли дата на день отпуска (с кэшированием)
func (s *Service) isVacationDay(ctx context.Context, date time.Time) (bool, error) {
	key := cacheKeyVacation + date.Format(domain.DateFormat)

	if cached, ok := s.cache.Get(key); ok {
		s.observeCache("schedule", true)
		return cached.(bool), nil
	}
	s.observeCache("schedule", false)

	dayOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	days, err := s.scheduleRepo.GetVacationDays(ctx, dayOnly, dayOnly)
	if err != nil {
		s.logger.Error("isVacationDay: repository error: %v", err)
		return false, fmt.Errorf("%w: isVacationDay - repository error: %v", ErrInternal, err)
	}

	onVacation := len(days) > 0
	s.cache.Set(key, onVacation, s.cacheTTL)
	return onVacation, nil
}

// checkManagerAccess проверяет, что пользователь является менеджером школы
func (s *Service) checkManagerAccess(userID int64) error {
	for _, id := range s.managerIDs {
		if id == userID {
			return nil
		}
	}
	return ErrAccessDenied
}

// observeCache записывает метрику попадания/промаха кэша (nil-safe)
func (s *Service) observeCache(kind string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(kind).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(kind).Inc()
	}
}

// validateUpdateRequest валидирует запрос на обновление настроек
func validateUpdateRequest(req *models.UpdateScheduleRequest) error {
	if req.MaxHoursPerDay != nil && *req.MaxHoursPerDay <= 0 {
		return fmt.Errorf("%w: maxHoursPerDay must be positive", ErrInvalidInput)
	}
	if req.MaxLessonsPerDay != nil && *req.MaxLessonsPerDay <= 0 {
		return fmt.Errorf("%w: maxLessonsPerDay must be positive", ErrInvalidInput)
	}
	if req.MaxHoursPerWeek != nil && *req.MaxHoursPerWeek <= 0 {
		return fmt.Errorf("%w: maxHoursPerWeek must be positive", ErrInvalidInput)
	}
	if req.MaxLessonsPerWeek != nil && *req.MaxLessonsPerWeek <= 0 {
		return fmt.Errorf("%w: maxLessonsPerWeek must be positive", ErrInvalidInput)
	}
	if req.MinBufferBetweenLessons != nil && *req.MinBufferBetweenLessons < 0 {
		return fmt.Errorf("%w: minBufferBetweenLessons must not be negative", ErrInvalidInput)
	}

	if req.EarliestStartTime != nil {
		if err := types.TimeString(*req.EarliestStartTime).Validate(); err != nil {
			return fmt.Errorf("%w: invalid earliestStartTime: %v", ErrInvalidInput, err)
		}
	}
	if req.LatestEndTime != nil {
		if err := types.TimeString(*req.LatestEndTime).Validate(); err != nil {
			return fmt.Errorf("%w: invalid latestEndTime: %v", ErrInvalidInput, err)
		}
	}
	if req.EarliestStartTime != nil && req.LatestEndTime != nil {
		earliest := types.TimeString(*req.EarliestStartTime)
		latest := types.TimeString(*req.LatestEndTime)
		if !earliest.IsBefore(latest) {
			return fmt.Errorf("%w: earliestStartTime must be before latestEndTime", ErrInvalidInput)
		}
	}

	for _, wh := range req.WorkingHours {
		if wh.Weekday < 0 || wh.Weekday > 6 {
			return fmt.Errorf("%w: weekday must be in [0, 6]", ErrInvalidInput)
		}
		if !wh.Enabled {
			continue
		}
		if err := types.TimeString(wh.Start).Validate(); err != nil {
			return fmt.Errorf("%w: invalid working hours start: %v", ErrInvalidInput, err)
		}
		if err := types.TimeString(wh.End).Validate(); err != nil {
			return fmt.Errorf("%w: invalid working hours end: %v", ErrInvalidInput, err)
		}
		if !types.TimeString(wh.Start).IsBefore(types.TimeString(wh.End)) {
			return fmt.Errorf("%w: working hours start must be before end", ErrInvalidInput)
		}
	}

	return nil
}

// defaultConstraints возвращает дефолтные ограничения планирования
func defaultConstraints() *domain.SchedulingConstraints {
	return &domain.SchedulingConstraints{
		MaxHoursPerDay:          domain.DefaultMaxHoursPerDay,
		MaxLessonsPerDay:        domain.DefaultMaxLessonsPerDay,
		MaxHoursPerWeek:         domain.DefaultMaxHoursPerWeek,
		MaxLessonsPerWeek:       domain.DefaultMaxLessonsPerWeek,
		EarliestStartTime:       types.TimeString(domain.DefaultEarliestStartTime),
		LatestEndTime:           types.TimeString(domain.DefaultLatestEndTime),
		MinBufferBetweenLessons: domain.DefaultMinBufferMinutes,
	}
}
