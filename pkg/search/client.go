package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deepshard/hyphae/pkg/config"
)

// ErrorType представляет тип ошибки при работе с поисковыми API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	default:
		return "unknown"
	}
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах (Rule 9).
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — транспортное ядро для всех поисковых движков.
//
// Каждый движок (perplexity.go, duckduckgo.go, semanticscholar.go)
// использует один Client со своим engineID и rate limit.
type Client struct {
	apiKey        string
	authHeader    string // пустое значение → Authorization: Bearer
	httpClient    HTTPClient
	retryAttempts int

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter // engine ID → limiter
}

// NewClient создает транспортный клиент из конфигурации движка.
//
// Поля с нулевыми значениями используют дефолты через GetDefaults().
func NewClient(cfg config.SearchEngineConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid search timeout format: %w", err)
	}

	return &Client{
		apiKey:        cfg.APIKey,
		retryAttempts: cfg.RetryAttempts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// SetAuthHeader переключает заголовок авторизации.
//
// По умолчанию ключ уходит как "Authorization: Bearer <key>". Некоторые
// API (Semantic Scholar) ждут ключ в собственном заголовке без префикса.
func (c *Client) SetAuthHeader(header string) {
	c.authHeader = header
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
//
// Анализирует текст ошибки и возвращает соответствующий тип:
//   - ErrAuthFailed: ошибки 401, unauthorized, Forbidden
//   - ErrTimeout: timeout, deadline exceeded
//   - ErrNetwork: connection refused, no such host
//   - ErrRateLimit: ошибки 429, Too Many Requests
//   - ErrUnknown: все остальные ошибки
func (c *Client) ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsg, "Forbidden") {
		return ErrAuthFailed
	}

	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	return ErrUnknown
}

// httpRequest описывает параметры HTTP запроса.
type httpRequest struct {
	method string
	url    string
	body   io.Reader
}

// doRequest выполняет HTTP запрос с retry логикой и rate limiting.
//
// Общий метод для Get() и Post(), реализующий retry loop, rate limiting
// и обработку 429 ответов.
func (c *Client) doRequest(ctx context.Context, engineID string, rateLimit int, burst int, req httpRequest, dest interface{}) error {
	limiter := c.getOrCreateLimiter(engineID, rateLimit, burst)

	var lastErr error

	for i := 0; i < c.retryAttempts; i++ {
		// Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, req.body)
		if err != nil {
			return err
		}

		if c.apiKey != "" {
			if c.authHeader != "" {
				httpReq.Header.Set(c.authHeader, c.apiKey)
			} else {
				httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
			}
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Обработка 429 (Too Many Requests)
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := 1 * time.Second // Дефолт
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.Atoi(s); err == nil {
					retryAfter = time.Duration(sec) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("search api error: status %d, body: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return nil // Успех
	}

	return fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// Get выполняет GET запрос с поддержкой Rate Limit и Retries.
//
// Параметры:
//   - ctx: контекст для отмены
//   - engineID: идентификатор движка для выбора limiter
//   - baseURL: базовый URL API
//   - rateLimit: лимит запросов в минуту
//   - burst: burst для rate limiter
//   - path: путь к endpoint
//   - params: query параметры (может быть nil)
//   - dest: указатель на структуру для unmarshal результата
func (c *Client) Get(ctx context.Context, engineID string, baseURL string, rateLimit int, burst int, path string, params url.Values, dest interface{}) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL is required (engine should provide value from config)")
	}
	if rateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive (engine should provide value from config)")
	}
	if burst <= 0 {
		return fmt.Errorf("burst must be positive (engine should provide value from config)")
	}

	u, err := url.Parse(baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	return c.doRequest(ctx, engineID, rateLimit, burst, httpRequest{
		method: http.MethodGet,
		url:    u.String(),
		body:   nil,
	}, dest)
}

// Post выполняет POST запрос с JSON телом.
//
// payload сериализуется в JSON. Остальные параметры как у Get.
func (c *Client) Post(ctx context.Context, engineID string, baseURL string, rateLimit int, burst int, path string, payload interface{}, dest interface{}) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL is required (engine should provide value from config)")
	}
	if rateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive (engine should provide value from config)")
	}
	if burst <= 0 {
		return fmt.Errorf("burst must be positive (engine should provide value from config)")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	return c.doRequest(ctx, engineID, rateLimit, burst, httpRequest{
		method: http.MethodPost,
		url:    baseURL + path,
		body:   strings.NewReader(string(encoded)),
	}, dest)
}

// GetRaw выполняет GET запрос и возвращает сырое тело ответа.
//
// Нужен движкам с не-JSON ответами (например, извлечение vqd токена
// из HTML страницы DuckDuckGo). Rate limiting и retry как у Get.
func (c *Client) GetRaw(ctx context.Context, engineID string, rawURL string, rateLimit int, burst int) ([]byte, error) {
	limiter := c.getOrCreateLimiter(engineID, rateLimit, burst)

	var lastErr error
	for i := 0; i < c.retryAttempts; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("search api error: status %d", resp.StatusCode)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// getOrCreateLimiter возвращает существующий limiter для engineID или создаёт новый.
//
// rate.Limit считается из запросов-в-минуту, burst ограничивает всплески.
// Thread-safe (Rule 5): double-checked locking под RWMutex.
func (c *Client) getOrCreateLimiter(engineID string, rateLimit int, burst int) *rate.Limiter {
	c.mu.RLock()
	limiter, ok := c.limiters[engineID]
	c.mu.RUnlock()
	if ok {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if limiter, ok := c.limiters[engineID]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), burst)
	c.limiters[engineID] = limiter
	return limiter
}
