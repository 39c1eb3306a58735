package gcalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/metrics"
)

// TokenSource источник токенов доступа для запросов к провайдеру
type TokenSource interface {
	GetValidToken(ctx context.Context, subjectKey string) (string, error)
}

// Client клиент внешнего календаря инструктора
//
// Пагинация скрыта от вызывающих: GetEvents накапливает все страницы.
// Мутирующие вызовы повторяются при временных сбоях (сеть, 5xx, 429);
// ошибки валидации и прочие 4xx падают сразу.
//
// При невозможности получить токен чтения деградируют до пустого результата -
// расчёт доступности продолжает работать в режиме "внешних конфликтов не
// знаем". Записи в этом случае падают громко: молча потерянная запись
// испортила бы данные.
type Client struct {
	baseURL    string
	calendarID string
	httpClient *http.Client
	tokens     TokenSource
	log        Logger
	metrics    *metrics.Metrics // может быть nil, если метрики выключены
}

// NewClient создает новый клиент календаря
// timeout ограничивает каждый отдельный HTTP запрос (одну попытку)
func NewClient(baseURL, calendarID string, timeout time.Duration, tokens TokenSource, log Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		calendarID: calendarID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens:  tokens,
		log:     log,
		metrics: m,
	}
}

// GetEvents получает все события календаря в диапазоне [start, end)
// Прозрачно обходит все страницы провайдера
func (c *Client) GetEvents(ctx context.Context, start, end time.Time) ([]domain.CalendarEvent, error) {
	token, err := c.tokens.GetValidToken(ctx, c.calendarID)
	if err != nil {
		// Деградация: доступность считается без внешних конфликтов
		c.log.Warn("gcalendar: no credential, returning empty event list: %v", err)
		c.observe("get_events", "degraded")
		return []domain.CalendarEvent{}, nil
	}

	events := make([]domain.CalendarEvent, 0)
	pageToken := ""

	for {
		page, err := c.fetchEventsPage(ctx, token, start, end, pageToken)
		if err != nil {
			c.observe("get_events", "error")
			return nil, err
		}

		for _, raw := range page.Items {
			events = append(events, normalizeEvent(raw))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.observe("get_events", "ok")
	return events, nil
}

// CreateEvent создает событие в календаре
func (c *Client) CreateEvent(ctx context.Context, data *EventData) (*domain.CalendarEvent, error) {
	if err := validateEventData(data); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	body := eventResource{
		Summary:     data.Title,
		Description: data.Description,
		Start:       eventTime{DateTime: data.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: data.End.Format(time.RFC3339)},
	}

	var created eventResource
	if err := c.doMutating(ctx, "create_event", http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	event := normalizeEvent(created)
	return &event, nil
}

// UpdateEvent обновляет существующее событие
func (c *Client) UpdateEvent(ctx context.Context, eventID string, data *EventData) (*domain.CalendarEvent, error) {
	if err := validateEventData(data); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))
	body := eventResource{
		Summary:     data.Title,
		Description: data.Description,
		Start:       eventTime{DateTime: data.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: data.End.Format(time.RFC3339)},
	}

	var updated eventResource
	if err := c.doMutating(ctx, "update_event", http.MethodPut, endpoint, body, &updated); err != nil {
		return nil, err
	}

	event := normalizeEvent(updated)
	return &event, nil
}

// DeleteEvent удаляет событие из календаря
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))
	return c.doMutating(ctx, "delete_event", http.MethodDelete, endpoint, nil, nil)
}

// IsBusy проверяет занятость диапазона [start, end) с буферным расширением
// Дешёвая альтернатива GetEvents, когда нужен только булев ответ
func (c *Client) IsBusy(ctx context.Context, start, end time.Time, bufferMinutes int) (bool, error) {
	token, err := c.tokens.GetValidToken(ctx, c.calendarID)
	if err != nil {
		c.log.Warn("gcalendar: no credential, free/busy check degraded to free: %v", err)
		c.observe("free_busy", "degraded")
		return false, nil
	}

	buffer := time.Duration(bufferMinutes) * time.Minute
	reqBody := freeBusyRequest{
		TimeMin: start.Add(-buffer).Format(time.RFC3339),
		TimeMax: end.Add(buffer).Format(time.RFC3339),
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/freeBusy", c.baseURL, url.PathEscape(c.calendarID))

	var resp freeBusyResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, token, "", reqBody, &resp); err != nil {
		c.observe("free_busy", "error")
		return false, err
	}

	c.observe("free_busy", "ok")
	return len(resp.Busy) > 0, nil
}

// fetchEventsPage запрашивает одну страницу событий
func (c *Client) fetchEventsPage(ctx context.Context, token string, start, end time.Time, pageToken string) (*eventsPage, error) {
	q := url.Values{}
	q.Set("timeMin", start.Format(time.RFC3339))
	q.Set("timeMax", end.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), q.Encode())

	var page eventsPage
	if err := c.doJSON(ctx, http.MethodGet, endpoint, token, "", nil, &page); err != nil {
		return nil, err
	}

	if page.Items == nil {
		page.Items = []eventResource{}
	}

	return &page, nil
}

// doMutating выполняет мутирующий запрос с повторами при временных сбоях
// До 3 повторов с экспоненциальной задержкой (база 500мс, потолок 5с),
// после чего наружу уходит последняя ошибка. Ключ идемпотентности один на
// все попытки, чтобы повтор после сетевого таймаута не задвоил запись.
func (c *Client) doMutating(ctx context.Context, operation, method, endpoint string, body interface{}, out interface{}) error {
	token, err := c.tokens.GetValidToken(ctx, c.calendarID)
	if err != nil {
		c.observe(operation, "error")
		return fmt.Errorf("%w: %s: %v", ErrNoCredential, operation, err)
	}

	idempotencyKey := uuid.NewString()

	backoff := retry.WithMaxRetries(3, retry.WithCappedDuration(5*time.Second, retry.NewExponential(500*time.Millisecond)))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		reqErr := c.doJSON(ctx, method, endpoint, token, idempotencyKey, body, out)
		if reqErr == nil {
			return nil
		}
		if isTransient(reqErr) {
			c.log.Warn("gcalendar: transient failure on %s, will retry: %v", operation, reqErr)
			return retry.RetryableError(reqErr)
		}
		return reqErr
	})

	if err != nil {
		c.observe(operation, "error")
		return err
	}

	c.observe(operation, "ok")
	return nil
}

// doJSON выполняет один HTTP запрос с JSON телом и ответом
func (c *Client) doJSON(ctx context.Context, method, endpoint, token, idempotencyKey string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrEventNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(payload))
	default:
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: unexpected status %d", ErrInvalidResponse, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

// isTransient классифицирует ошибку как временную (повторяемую)
// Таймаут отдельной попытки тоже считается временным сбоем
func isTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// validateEventData проверяет данные события перед отправкой
func validateEventData(data *EventData) error {
	if data == nil {
		return fmt.Errorf("%w: event data is required", ErrInvalidInput)
	}
	if data.Start.IsZero() || data.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}
	if !data.Start.Before(data.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	return nil
}

// observe записывает метрику внешнего вызова (nil-safe)
func (c *Client) observe(operation, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.ExternalRequestsTotal.WithLabelValues("calendar", operation, outcome).Inc()
}
