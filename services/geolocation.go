package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/maypok86/otter"
	log "github.com/sirupsen/logrus"
)

const unknownLocationField = "Unknown"

type cachedLocation struct {
	Location  model.Location
	ExpiresAt time.Time
}

// GeolocationService resolves client addresses through ipinfo.io. Lookups are best-effort:
// any failure yields an "Unknown" location which is cached like a real answer so a failing
// address is not retried on every request.
type GeolocationService struct {
	appContext.DefaultService

	httpClient  *http.Client
	apiURL      string
	token       string
	cacheExpiry time.Duration
	cache       otter.Cache[string, cachedLocation]

	redisSvc *RedisService
	now      func() time.Time
}

const GEOLOCATION_SVC = "geolocation_svc"

func (svc GeolocationService) Id() string {
	return GEOLOCATION_SVC
}

func (svc *GeolocationService) Configure(ctx *appContext.Context) error {
	err := svc.init(
		shared.GetEnv("GEOLOCATION_API_URL", "https://ipinfo.io"),
		shared.GetEnv("GEOLOCATION_API_TOKEN", ""),
		shared.GetEnvDuration("GEOLOCATION_TIMEOUT", 5*time.Second),
		shared.GetEnvDuration("GEOLOCATION_CACHE_TTL", 24*time.Hour),
		shared.GetEnvInt("GEOLOCATION_CACHE_SIZE", 10_000),
	)
	if err != nil {
		return err
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *GeolocationService) init(apiURL, token string, timeout, ttl time.Duration, size int) error {
	cache, err := otter.MustBuilder[string, cachedLocation](size).
		WithTTL(ttl).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create location cache: %w", err)
	}

	svc.httpClient = &http.Client{Timeout: timeout}
	svc.apiURL = apiURL
	svc.token = token
	svc.cacheExpiry = ttl
	svc.cache = cache
	svc.now = time.Now
	return nil
}

func (svc *GeolocationService) Start() error {
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok && redisSvc.Enabled() {
		svc.redisSvc = redisSvc
	}
	return nil
}

func (svc *GeolocationService) Shutdown() {
	svc.cache.Close()
}

// Lookup never fails, callers get a local, cached, fetched or Unknown location.
func (svc *GeolocationService) Lookup(ctx context.Context, ip string) *model.Location {
	if shared.IsLocalAddress(ip) {
		return &model.Location{Country: "Local", Region: "Development", City: "Localhost"}
	}

	now := svc.now()
	if cached, ok := svc.cache.Get(ip); ok && now.Before(cached.ExpiresAt) {
		location := cached.Location
		return &location
	}

	cacheKey := "geolocation:" + ip

	if svc.redisSvc != nil {
		var stored model.Location
		if found, err := svc.redisSvc.GetJSON(ctx, cacheKey, &stored); err == nil && found {
			log.WithField("ip", ip).Debug("Geolocation redis cache hit")
			svc.remember(ip, stored, now)
			return &stored
		}
	}

	location, err := svc.fetch(ctx, ip)
	if err != nil {
		log.WithError(err).WithField("ip", ip).Warn("Failed to get geolocation")
		location = model.Location{Country: unknownLocationField, Region: unknownLocationField, City: unknownLocationField}
		svc.remember(ip, location, now)
		return &location
	}

	svc.remember(ip, location, now)
	if svc.redisSvc != nil {
		if err := svc.redisSvc.SetJSON(ctx, cacheKey, location, svc.cacheExpiry); err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Failed to cache geolocation result")
		}
	}

	return &location
}

func (svc *GeolocationService) fetch(ctx context.Context, ip string) (model.Location, error) {
	endpoint := fmt.Sprintf("%s/%s/json", svc.apiURL, url.PathEscape(ip))
	if svc.token != "" {
		endpoint += "?token=" + url.QueryEscape(svc.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Location{}, err
	}

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return model.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Location{}, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result struct {
		Country string `json:"country"`
		Region  string `json:"region"`
		City    string `json:"city"`
	}
	if err := shared.JSON().NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Location{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	return model.Location{
		Country: orUnknown(result.Country),
		Region:  orUnknown(result.Region),
		City:    orUnknown(result.City),
	}, nil
}

func (svc *GeolocationService) remember(ip string, location model.Location, now time.Time) {
	svc.cache.Set(ip, cachedLocation{Location: location, ExpiresAt: now.Add(svc.cacheExpiry)})
}

// SweepExpired removes cached lookups past their expiry, the limiter calls it inline.
func (svc *GeolocationService) SweepExpired(now time.Time) int {
	removed := 0
	svc.cache.DeleteByFunc(func(_ string, value cachedLocation) bool {
		if now.After(value.ExpiresAt) {
			removed++
			return true
		}
		return false
	})
	return removed
}

func orUnknown(v string) string {
	if v == "" {
		return unknownLocationField
	}
	return v
}
