package geocoding

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"autopark-service/internal/config"
	"autopark-service/internal/geo"
	"autopark-service/internal/metrics"
)

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Client обратный геокодер поверх внешнего HTTP-сервиса.
// Все вызовы best-effort: сбой или не-2xx дает nil и никогда не ошибку.
type Client struct {
	baseURL    string
	apiKey     string
	delay      time.Duration
	workers    int
	cacheTTL   time.Duration
	httpClient *http.Client
	cache      *redis.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config, cache *redis.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  cfg.Geocoding.BaseURL,
		apiKey:   cfg.Geocoding.APIKey,
		delay:    cfg.Geocoding.Delay,
		workers:  cfg.Geocoding.Workers,
		cacheTTL: cfg.Geocoding.CacheTTL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
		log:   log,
	}
}

// Enabled сообщает, настроен ли геокодер; переданный ключ
// перекрывает ключ из конфигурации
func (c *Client) Enabled(apiKey string) bool {
	return c.baseURL != "" && (apiKey != "" || c.apiKey != "")
}

func (c *Client) ResolveAddress(ctx context.Context, lat, lon float64) *string {
	return c.resolve(ctx, geo.Point{Latitude: lat, Longitude: lon}, "")
}

// ResolveAddressesBatch обрабатывает координаты пулом воркеров,
// разделяющих один тикер межзапросной задержки: внешний сервис
// ограничивает частоту вызовов, задержка намеренная
func (c *Client) ResolveAddressesBatch(ctx context.Context, points []geo.Point, apiKey string) map[string]*string {
	results := make(map[string]*string, len(points))
	if len(points) == 0 {
		return results
	}

	ticker := time.NewTicker(c.delay)
	defer ticker.Stop()

	jobs := make(chan geo.Point)
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := c.workers
	if workers > len(points) {
		workers = len(points)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for point := range jobs {
				select {
				case <-ctx.Done():
					mu.Lock()
					results[point.Key()] = nil
					mu.Unlock()
					continue
				case <-ticker.C:
				}
				address := c.resolve(ctx, point, apiKey)
				mu.Lock()
				results[point.Key()] = address
				mu.Unlock()
			}
		}()
	}

	for _, point := range points {
		jobs <- point
	}
	close(jobs)
	wg.Wait()

	return results
}

func (c *Client) resolve(ctx context.Context, point geo.Point, apiKey string) *string {
	if c.baseURL == "" {
		return nil
	}

	cacheKey := "revgeo:" + point.Key()
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			metrics.GeocodeRequestsTotal.WithLabelValues("cache_hit").Inc()
			return &cached
		}
	}

	started := time.Now()
	address := c.query(ctx, point, apiKey)
	metrics.GeocodeDurationSeconds.Observe(time.Since(started).Seconds())

	if address == nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, *address, c.cacheTTL).Err()
	}
	return address
}

func (c *Client) query(ctx context.Context, point geo.Point, apiKey string) *string {
	u, err := url.Parse(c.baseURL + "/reverse")
	if err != nil {
		c.log.Warn().Err(err).Msg("invalid geocoding base url")
		return nil
	}

	q := u.Query()
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(point.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(point.Longitude, 'f', 6, 64))
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Float64("lat", point.Latitude).Float64("lon", point.Longitude).Msg("geocoding request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug().Int("status", resp.StatusCode).Msg("geocoding returned non-2xx")
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.log.Debug().Err(err).Msg("geocoding returned malformed body")
		return nil
	}
	if parsed.DisplayName == "" {
		return nil
	}
	return &parsed.DisplayName
}
