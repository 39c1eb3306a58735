package availcache

import (
	"regexp"
	"sync"
	"time"
)

// Cache in-memory кэш с TTL на запись, фоновой очисткой просроченных записей
// и вытеснением самой старой записи при превышении максимального размера.
//
// Используется для мемоизации вычисленной доступности и конфигурации расписания.
// Ключи строятся по схеме "{kind}:{subject}:{date}:{duration}", что позволяет
// инвалидировать все записи субъекта одним шаблоном при записи бронирования.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxSize int

	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	value     interface{}
	expiresAt time.Time
	storedAt  time.Time
}

// New создает кэш и запускает фоновую очистку с интервалом sweepInterval
// Кэш необходимо останавливать через Stop(), иначе горутина очистки утечёт
func New(maxSize int, sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}

	go c.sweepLoop(sweepInterval)

	return c
}

// Get возвращает значение по ключу, если оно есть и не просрочено
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set сохраняет значение с указанным TTL
// При превышении максимального размера вытесняет самую старую запись
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[key] = &entry{
		value:     value,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}

	for c.maxSize > 0 && len(c.entries) > c.maxSize {
		c.evictOldestLocked()
	}
}

// Delete удаляет запись по ключу
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePattern удаляет все записи, ключи которых соответствуют регулярному выражению
// Возвращает количество удаленных записей
func (c *Cache) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len возвращает текущее количество записей (включая ещё не выметенные просроченные)
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop останавливает фоновую очистку
// Повторные вызовы безопасны
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// evictOldestLocked удаляет запись с самым ранним временем добавления
// Вызывается под мьютексом
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.storedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// sweepLoop периодически удаляет просроченные записи
func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
