package services

import (
	"context"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	maxAttemptsStored   = 1000
	recentAttemptsShown = 20
)

type failedLoginDocument struct {
	Attempts   []model.FailedLoginAttempt `json:"attempts"`
	BlockedIPs []string                   `json:"blockedIPs"`
}

type failedLoginLog struct {
	attempts []model.FailedLoginAttempt
	blocked  *shared.StringSet
}

func (d failedLoginDocument) decode() *failedLoginLog {
	return &failedLoginLog{
		attempts: d.Attempts,
		blocked:  shared.NewStringSet(d.BlockedIPs...),
	}
}

func (l *failedLoginLog) encode() failedLoginDocument {
	return failedLoginDocument{
		Attempts:   l.attempts,
		BlockedIPs: l.blocked.Values(),
	}
}

// countSince counts attempts from ip strictly after cutoff.
func (l *failedLoginLog) countSince(ip string, cutoff time.Time) int {
	count := 0
	for _, attempt := range l.attempts {
		if attempt.IP == ip && attempt.Timestamp.After(cutoff) {
			count++
		}
	}
	return count
}

// LoginGuardService blocks an address after MaxAttempts failures inside TriggerWindow. The
// block holds while the address has any attempt inside BlockWindow; the two windows are
// independent, so slow attempts never trigger a block.
type LoginGuardService struct {
	appContext.DefaultService

	store      documentStore
	locator    LocationResolver
	monitoring *MonitoringService

	maxAttempts   int
	triggerWindow time.Duration
	blockWindow   time.Duration
	maxStored     int
	now           func() time.Time

	mu sync.Mutex
}

const LOGIN_GUARD_SVC = "login_guard_svc"

func (svc LoginGuardService) Id() string {
	return LOGIN_GUARD_SVC
}

func (svc *LoginGuardService) Configure(ctx *appContext.Context) error {
	svc.init()
	svc.maxAttempts = shared.GetEnvInt("LOGIN_GUARD_MAX_ATTEMPTS", svc.maxAttempts)
	svc.triggerWindow = shared.GetEnvDuration("LOGIN_GUARD_TRIGGER_WINDOW", svc.triggerWindow)
	svc.blockWindow = shared.GetEnvDuration("LOGIN_GUARD_BLOCK_WINDOW", svc.blockWindow)
	return svc.DefaultService.Configure(ctx)
}

func (svc *LoginGuardService) init() {
	svc.maxAttempts = 5
	svc.triggerWindow = time.Hour
	svc.blockWindow = 24 * time.Hour
	svc.maxStored = maxAttemptsStored
	svc.now = time.Now
}

func (svc *LoginGuardService) Start() error {
	svc.store = svc.Service(STORE_SVC).(*StoreService)
	svc.locator = svc.Service(GEOLOCATION_SVC).(*GeolocationService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = monitoringSvc
	}
	return nil
}

func (svc *LoginGuardService) load(ctx context.Context) *failedLoginLog {
	var doc failedLoginDocument
	if err := svc.store.Load(ctx, shared.DocumentFailedLogins, &doc); err != nil {
		log.WithError(err).Error("Failed to read failed login log, treating as empty")
		return failedLoginDocument{}.decode()
	}
	return doc.decode()
}

// isBlocked re-derives the block and drops a stale entry from the set, reporting whether it
// changed anything.
func (svc *LoginGuardService) isBlocked(l *failedLoginLog, ip string, now time.Time) (blocked bool, changed bool) {
	if !l.blocked.Has(ip) {
		return false, false
	}
	if l.countSince(ip, now.Add(-svc.blockWindow)) > 0 {
		return true, false
	}
	l.blocked.Remove(ip)
	return false, true
}

func (svc *LoginGuardService) IsBlocked(ctx context.Context, ip string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	l := svc.load(ctx)

	blocked, changed := svc.isBlocked(l, ip, svc.now())
	if changed {
		log.WithField("ip", ip).Info("Block expired, address unblocked")
		if err := svc.store.Save(ctx, shared.DocumentFailedLogins, l.encode()); err != nil {
			log.WithError(err).Warn("Failed to persist expired block removal")
		}
	}
	return blocked
}

// RecordFailedAttempt rejects a blocked caller before recording anything.
func (svc *LoginGuardService) RecordFailedAttempt(ctx context.Context, ip, userAgent, attemptedPassword string) (*dto.FailedLoginResponse, error) {
	var location *model.Location
	if svc.locator != nil {
		location = svc.locator.Lookup(ctx, ip)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	now := svc.now()
	l := svc.load(ctx)

	blocked, changed := svc.isBlocked(l, ip, now)
	if blocked {
		log.WithField("ip", ip).Warn("Blocked address attempted login")
		svc.monitoring.RecordFailedLogin("rejected")
		return nil, blockedError()
	}

	l.attempts = append(l.attempts, model.FailedLoginAttempt{
		IP:                ip,
		Timestamp:         now.UTC(),
		UserAgent:         userAgent,
		AttemptedPassword: attemptedPassword,
		Location:          location,
	})
	if overflow := len(l.attempts) - svc.maxStored; overflow > 0 {
		l.attempts = append([]model.FailedLoginAttempt(nil), l.attempts[overflow:]...)
	}

	recent := l.countSince(ip, now.Add(-svc.triggerWindow))
	if recent >= svc.maxAttempts {
		l.blocked.Add(ip)
		blocked = true
		log.WithFields(log.Fields{"ip": ip, "attempts": recent}).Warn("Address blocked after repeated failed logins")
	}

	if err := svc.store.Save(ctx, shared.DocumentFailedLogins, l.encode()); err != nil {
		return nil, shared.NewInternalError(err, "Failed to log attempt")
	}
	if changed {
		log.WithField("ip", ip).Info("Block expired, address unblocked")
	}
	if blocked {
		svc.monitoring.RecordFailedLogin("blocked")
	} else {
		svc.monitoring.RecordFailedLogin("recorded")
	}

	remaining := svc.maxAttempts - recent
	if remaining < 0 {
		remaining = 0
	}

	return &dto.FailedLoginResponse{
		Success:           true,
		AttemptsRemaining: remaining,
		Blocked:           blocked,
	}, nil
}

func (svc *LoginGuardService) Stats(ctx context.Context) *dto.FailedLoginStatsResponse {
	now := svc.now()
	l := svc.load(ctx)

	active := 0
	for _, ip := range l.blocked.Values() {
		if l.countSince(ip, now.Add(-svc.blockWindow)) > 0 {
			active++
		}
	}

	recent := l.attempts
	if len(recent) > recentAttemptsShown {
		recent = recent[len(recent)-recentAttemptsShown:]
	}

	return &dto.FailedLoginStatsResponse{
		Success:        true,
		TotalAttempts:  len(l.attempts),
		ActiveBlocks:   active,
		RecentAttempts: recent,
	}
}

func blockedError() error {
	const message = "Too many failed attempts. Access temporarily blocked."
	return shared.NewTooManyRequestsError(message, dto.BlockedResponse{
		Success: false,
		Error:   message,
		Blocked: true,
	})
}
