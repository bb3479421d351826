package services

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/puzpuzpuz/xsync/v4"
	log "github.com/sirupsen/logrus"
)

// Sweeper is anything holding expiring in-process entries that the limiter should purge
// while it sweeps its own windows.
type Sweeper interface {
	SweepExpired(now time.Time) int
}

type RateLimitService struct {
	context.DefaultService

	policies map[string]model.RateLimitPolicy
	sweepers []Sweeper
	mutex    sync.RWMutex

	windows *xsync.Map[string, model.RateLimitEntry]

	monitoring *MonitoringService

	sweepProbability float64
	now              func() time.Time
	roll             func() float64
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	RateLimitVisits     = "visits"
	RateLimitAdminLogin = "admin_login"
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.init()

	svc.SetPolicy(model.RateLimitPolicy{
		Name:        RateLimitVisits,
		MaxRequests: shared.GetEnvInt("VISIT_RATE_LIMIT_MAX", 10),
		Window:      shared.GetEnvDuration("VISIT_RATE_LIMIT_WINDOW", time.Minute),
		Description: "Visit logging per client address",
	})
	svc.sweepProbability = shared.GetEnvFloat("RATE_LIMIT_SWEEP_PROBABILITY", svc.sweepProbability)

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	if geoSvc, ok := svc.Service(GEOLOCATION_SVC).(*GeolocationService); ok {
		svc.RegisterSweeper(geoSvc)
	}
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = monitoringSvc
	}
	return nil
}

func (svc *RateLimitService) Shutdown() {
	svc.windows.Clear()
}

func (svc *RateLimitService) init() {
	svc.windows = xsync.NewMap[string, model.RateLimitEntry]()
	svc.sweepProbability = 0.1
	svc.now = time.Now
	svc.roll = rand.Float64

	svc.policies = map[string]model.RateLimitPolicy{
		RateLimitVisits: {
			Name:        RateLimitVisits,
			MaxRequests: 10,
			Window:      time.Minute,
			Description: "Visit logging per client address",
		},
		RateLimitAdminLogin: {
			Name:        RateLimitAdminLogin,
			MaxRequests: 3,
			Window:      15 * time.Minute,
			Description: "Admin password attempts per client address",
		},
	}
}

// ==================== CONFIGURATION ====================

func (svc *RateLimitService) SetPolicy(policy model.RateLimitPolicy) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	svc.policies[policy.Name] = policy
}

func (svc *RateLimitService) Policy(name string) (model.RateLimitPolicy, bool) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	policy, ok := svc.policies[name]
	return policy, ok
}

func (svc *RateLimitService) RegisterSweeper(s Sweeper) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	svc.sweepers = append(svc.sweepers, s)
}

// ==================== CORE RATE LIMITING LOGIC ====================

// CheckRate applies the visit-logging window to key.
func (svc *RateLimitService) CheckRate(key string) dto.RateLimitInfo {
	return svc.IsAllowed(key, RateLimitVisits)
}

// IsAllowed counts one call for identifier against the named fixed window. The window
// starts at the first call and resets wholesale once it has passed.
func (svc *RateLimitService) IsAllowed(identifier, policyName string) dto.RateLimitInfo {
	now := svc.now()
	svc.maybeSweep(now)

	policy, exists := svc.Policy(policyName)
	if !exists {
		return dto.RateLimitInfo{Allowed: true, Remaining: -1}
	}

	var info dto.RateLimitInfo
	svc.windows.Compute(policyName+":"+identifier, func(entry model.RateLimitEntry, loaded bool) (model.RateLimitEntry, xsync.ComputeOp) {
		if !loaded || entry.Expired(now) {
			entry = model.RateLimitEntry{Count: 1, ResetTime: now.Add(policy.Window)}
			info = dto.RateLimitInfo{
				Allowed:   true,
				Remaining: policy.MaxRequests - 1,
				Limit:     policy.MaxRequests,
				ResetTime: entry.ResetTime,
			}
			return entry, xsync.UpdateOp
		}

		if entry.Count >= policy.MaxRequests {
			info = dto.RateLimitInfo{
				Allowed:   false,
				Remaining: 0,
				Limit:     policy.MaxRequests,
				ResetTime: entry.ResetTime,
			}
			return entry, xsync.CancelOp
		}

		entry.Count++
		info = dto.RateLimitInfo{
			Allowed:   true,
			Remaining: policy.MaxRequests - entry.Count,
			Limit:     policy.MaxRequests,
			ResetTime: entry.ResetTime,
		}
		return entry, xsync.UpdateOp
	})

	return info
}

func (svc *RateLimitService) maybeSweep(now time.Time) {
	if svc.roll() >= svc.sweepProbability {
		return
	}

	removed := svc.SweepExpired(now)

	svc.mutex.RLock()
	sweepers := svc.sweepers
	svc.mutex.RUnlock()
	for _, s := range sweepers {
		removed += s.SweepExpired(now)
	}

	if removed > 0 {
		log.WithField("removed", removed).Debug("Swept expired rate limit and cache entries")
	}
}

// SweepExpired drops every window that has rolled over.
func (svc *RateLimitService) SweepExpired(now time.Time) int {
	removed := 0
	svc.windows.Range(func(key string, entry model.RateLimitEntry) bool {
		if !entry.Expired(now) {
			return true
		}
		svc.windows.Compute(key, func(current model.RateLimitEntry, loaded bool) (model.RateLimitEntry, xsync.ComputeOp) {
			if loaded && current.Expired(now) {
				removed++
				return current, xsync.DeleteOp
			}
			return current, xsync.CancelOp
		})
		return true
	})
	return removed
}

// RetryAfter is the whole seconds until info's window rolls over, on the limiter's clock.
func (svc *RateLimitService) RetryAfter(info dto.RateLimitInfo) int {
	return info.RetryAfter(svc.now())
}

func (svc *RateLimitService) ActiveWindows() int {
	return svc.windows.Size()
}

// ==================== MIDDLEWARE ====================

// RateLimit throttles the wrapped routes per client address under the named policy.
func (svc *RateLimitService) RateLimit(policyName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := shared.ClientIP(c)

		info := svc.IsAllowed(ip, policyName)
		svc.addRateLimitHeaders(c, info)

		if !info.Allowed {
			log.WithFields(log.Fields{"ip": ip, "policy": policyName}).Warn("Rate limit exceeded")
			svc.monitoring.RecordRateLimited(policyName)
			return svc.rateLimitExceeded(info)
		}

		return c.Next()
	}
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info dto.RateLimitInfo) {
	if info.Remaining < 0 {
		return
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

func (svc *RateLimitService) rateLimitExceeded(info dto.RateLimitInfo) error {
	retryAfter := svc.RetryAfter(info)

	return shared.NewTooManyRequestsError("Rate limit exceeded. Too many requests.", dto.RateLimitExceededResponse{
		Success:    false,
		Error:      fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter),
		RetryAfter: retryAfter,
	}).WithRetryAfter(retryAfter)
}
