package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/availcache"
	"github.com/KerelosNasser/driving-school-sub004/pkg/metrics"
)

// UseCase use case для получения доступных слотов на день
//
// Результат мемоизируется с коротким TTL: расчёт дня стоит похода во внешний
// календарь и БД, а клиенты опрашивают одни и те же даты пачками. Запись
// бронирования инвалидирует кэш по шаблону, поэтому устаревший положительный
// ответ живёт не дольше TTL и никогда не переживает известную нам запись.
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, student=%v, date=%s, duration=%d",
		req.UserID, req.StudentID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем кэш
	key := cacheKey(req)
	if cached, ok := uc.cache.Get(key); ok {
		uc.observeCache(true)
		return cached.(*Response), nil
	}
	uc.observeCache(false)

	// 3. Рассчитываем доступность
	day, err := uc.calculator.CalculateDay(ctx, req.Date, req.DurationMinutes, req.StudentID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: calculation failed for date=%s: %v",
			req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to calculate availability: %v", ErrInternal, err)
	}

	resp := fromDomainDay(day, req.DurationMinutes)

	// 4. Кэшируем готовый ответ
	uc.cache.Set(key, resp, uc.cacheTTL)

	uc.logger.Info("GetAvailableSlots: %d/%d slots available for date=%s",
		resp.TotalAvailableSlots, len(resp.Slots), req.Date.Format(domain.DateFormat))

	return resp, nil
}

// cacheKey строит ключ кэша "availability:{student}:{date}:{duration}"
func cacheKey(req *Request) string {
	student := "anon"
	if req.StudentID != nil {
		student = fmt.Sprintf("%d", *req.StudentID)
	}
	return fmt.Sprintf("availability:%s:%s:%d", student, req.Date.Format(domain.DateFormat), req.DurationMinutes)
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
