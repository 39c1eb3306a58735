package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// expirySafetyBuffer токен считается просроченным за 5 минут до фактического
// истечения, чтобы не уйти в провайдера с токеном, умирающим посреди запроса
const expirySafetyBuffer = 5 * time.Minute

// defaultTokenLifetime используется, когда провайдер не вернул expiry
const defaultTokenLifetime = time.Hour

// refreshFailureWindow окно негативного кэша после провалившегося обновления:
// пока оно не истекло, обращения за токеном субъекта сразу получают
// ErrNoCredential, не проходя повторы заново. Иначе скан доступности по дням
// оплачивал бы полную лестницу задержек на каждый день диапазона.
const refreshFailureWindow = 30 * time.Second

// CachedCredential закэшированный токен доступа
// Заменяется целиком при обновлении, по полям никогда не мутируется
type CachedCredential struct {
	Token     string
	ExpiresAt time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// CredentialRefresher получает и кэширует короткоживущие токены доступа
// к внешнему календарю
//
// Проверки доступности разветвляются в несколько конкурентных внешних вызовов,
// каждому из которых нужен токен, поэтому обновление схлопывается через
// singleflight: N одновременных вызовов порождают ровно один запрос к
// провайдеру. После завершения обновления (успех или провал) полёт снимается.
type CredentialRefresher struct {
	conf *clientcredentials.Config

	group singleflight.Group

	mu          sync.Mutex
	cached      map[string]*CachedCredential
	failedUntil map[string]time.Time

	log Logger
}

// NewCredentialRefresher создает новый refresher поверх OAuth2 client credentials flow
func NewCredentialRefresher(tokenURL, clientID, clientSecret string, log Logger) *CredentialRefresher {
	return &CredentialRefresher{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"calendar.events", "calendar.freebusy"},
		},
		cached:      make(map[string]*CachedCredential),
		failedUntil: make(map[string]time.Time),
		log:         log,
	}
}

// GetValidToken возвращает действующий токен для субъекта
//
// Валидный кэшированный токен возвращается без обращения к провайдеру.
// Иначе запускается (или переиспользуется уже летящее) обновление.
// После исчерпания повторов возвращает ErrNoCredential, кэш субъекта очищается.
//
// Без настроенного token endpoint (интеграция выключена) и внутри окна
// негативного кэша отказ мгновенный - без повторов и задержек.
func (r *CredentialRefresher) GetValidToken(ctx context.Context, subjectKey string) (string, error) {
	if r.conf.TokenURL == "" {
		return "", fmt.Errorf("%w: no token endpoint configured", ErrNoCredential)
	}

	if token, ok := r.cachedToken(subjectKey); ok {
		return token, nil
	}

	if r.inFailureWindow(subjectKey) {
		return "", fmt.Errorf("%w: token refresh recently failed", ErrNoCredential)
	}

	v, err, _ := r.group.Do(subjectKey, func() (interface{}, error) {
		// Пока мы ждали своей очереди, другой вызов мог успеть обновить кэш
		if token, ok := r.cachedToken(subjectKey); ok {
			return token, nil
		}
		return r.refresh(ctx, subjectKey)
	})

	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// Invalidate сбрасывает кэшированный токен субъекта вместе с окном
// негативного кэша - следующий вызов пойдёт к провайдеру
func (r *CredentialRefresher) Invalidate(subjectKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cached, subjectKey)
	delete(r.failedUntil, subjectKey)
}

// inFailureWindow проверяет, действует ли негативный кэш для субъекта
func (r *CredentialRefresher) inFailureWindow(subjectKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.failedUntil[subjectKey]
	return ok && time.Now().Before(until)
}

// cachedToken возвращает токен из кэша, если он ещё действителен
// с учётом страховочного буфера
func (r *CredentialRefresher) cachedToken(subjectKey string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.cached[subjectKey]
	if !ok {
		return "", false
	}
	if !time.Now().Before(cred.ExpiresAt.Add(-expirySafetyBuffer)) {
		return "", false
	}
	return cred.Token, true
}

// refresh выполняет обмен учётных данных на токен с повторами
// До 3 повторов с экспоненциальной задержкой (база 500мс, потолок 5с);
// ошибки 4xx от провайдера не повторяются
func (r *CredentialRefresher) refresh(ctx context.Context, subjectKey string) (string, error) {
	backoff := retry.WithMaxRetries(3, retry.WithCappedDuration(5*time.Second, retry.NewExponential(500*time.Millisecond)))

	var token *oauth2.Token
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		t, err := r.conf.Token(ctx)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
				// Невалидные учётные данные - повторять бессмысленно
				return err
			}
			return retry.RetryableError(err)
		}
		token = t
		return nil
	})

	if err != nil {
		r.log.Error("credentials: token refresh failed for subject=%s: %v", subjectKey, err)

		// Просроченную запись держать незачем; открываем окно негативного кэша
		r.mu.Lock()
		delete(r.cached, subjectKey)
		r.failedUntil[subjectKey] = time.Now().Add(refreshFailureWindow)
		r.mu.Unlock()

		return "", fmt.Errorf("%w: %v", ErrNoCredential, err)
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(defaultTokenLifetime)
	}

	r.mu.Lock()
	r.cached[subjectKey] = &CachedCredential{
		Token:     token.AccessToken,
		ExpiresAt: expiresAt,
	}
	delete(r.failedUntil, subjectKey)
	r.mu.Unlock()

	r.log.Info("credentials: refreshed token for subject=%s, expires_at=%s", subjectKey, expiresAt.Format(time.RFC3339))
	return token.AccessToken, nil
}
