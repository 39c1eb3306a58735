package get_week_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/internal/scheduling"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/metrics"
)

// UseCase use case для получения доступности на неделю
//
// Неделя всегда выровнена по понедельнику: запрос с любой датой внутри недели
// попадает в одну и ту же запись кэша.
type UseCase struct {
	calculator   AvailabilityCalculator
	cache        *availcache.Cache
	cacheTTL     time.Duration
	metrics      *metrics.Metrics // может быть nil, если метрики выключены
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	calculator AvailabilityCalculator,
	cache *availcache.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		calculator:   calculator,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      m,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступности на неделю
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetWeekAvailability: user=%d, student=%v, date=%s, duration=%d",
		req.UserID, req.StudentID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("GetWeekAvailability: validation failed: %v", err)
		return nil, err
	}

	weekStart := scheduling.WeekStart(req.Date)

	// 2. Проверяем кэш
	key := cacheKey(req, weekStart)
	if cached, ok := uc.cache.Get(key); ok {
		uc.observeCache(true)
		return cached.(*Response), nil
	}
	uc.observeCache(false)

	// 3. Рассчитываем неделю
	week, err := uc.calculator.CalculateWeek(ctx, weekStart, req.DurationMinutes, req.StudentID)
	if err != nil {
		uc.logger.Error("GetWeekAvailability: calculation failed for week=%s: %v",
			weekStart.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to calculate week availability: %v", ErrInternal, err)
	}

	resp := fromDomainWeek(week, req.DurationMinutes)

	// 4. Кэшируем готовый ответ
	uc.cache.Set(key, resp, uc.cacheTTL)

	uc.logger.Info("GetWeekAvailability: %.1f available hours for week=%s",
		resp.TotalWeeklyHours, weekStart.Format(domain.DateFormat))

	return resp, nil
}

// cacheKey строит ключ кэша "availability:week:{student}:{weekStart}:{duration}"
func cacheKey(req *Request, weekStart time.Time) string {
	student := "anon"
	if req.StudentID != nil {
		student = fmt.Sprintf("%d", *req.StudentID)
	}
	return fmt.Sprintf("availability:week:%s:%s:%d", student, weekStart.Format(domain.DateFormat), req.DurationMinutes)
}

// observeCache записывает метрику попадания/промаха кэша (nil-safe)
func (uc *UseCase) observeCache(hit bool) {
	if uc.metrics == nil {
		return
	}
	if hit {
		uc.metrics.CacheHitsTotal.WithLabelValues("availability").Inc()
	} else {
		uc.metrics.CacheMissesTotal.WithLabelValues("availability").Inc()
	}
}
