package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrAuthRequired    = errors.New("authentication required")
)

// statusEnvVars are reported as Set/Missing by the status endpoint, values never leave
// the process.
var statusEnvVars = []string{
	"GEMINI_API_KEY",
	"GOOGLE_API_KEY",
	"ADMIN_PASSWORD",
	"ADMIN_PASSWORD_HASH",
	"JWT_SECRET",
	"GEOLOCATION_API_TOKEN",
	"RESUME_CONTENT",
	"RESUME_PDF_PATH",
	"RESUME_OBJECT_KEY",
}

// AdminService guards the privileged endpoints. The admin secret is either a bcrypt hash
// (ADMIN_PASSWORD_HASH) or a plain value compared in constant time (ADMIN_PASSWORD).
type AdminService struct {
	appContext.DefaultService

	jwtSvc          *JWTService
	rateLimitSvc    *RateLimitService
	loginGuardSvc   *LoginGuardService
	conversationSvc *ConversationService
	retrieverSvc    *RetrieverService

	passwordHash []byte
	password     string
	requireAuth  bool
	startedAt    time.Time
}

const ADMIN_SVC = "admin_svc"

func (svc AdminService) Id() string {
	return ADMIN_SVC
}

func (svc *AdminService) Configure(ctx *appContext.Context) error {
	svc.init(
		shared.GetEnv("ADMIN_PASSWORD_HASH", ""),
		os.Getenv("ADMIN_PASSWORD"),
		shared.GetEnvBool("ADMIN_REQUIRE_AUTH", false),
	)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AdminService) init(hash, password string, requireAuth bool) {
	if hash != "" {
		svc.passwordHash = []byte(hash)
	}
	svc.password = password
	svc.requireAuth = requireAuth
	svc.startedAt = time.Now()
}

func (svc *AdminService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.loginGuardSvc = svc.Service(LOGIN_GUARD_SVC).(*LoginGuardService)
	svc.conversationSvc = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.retrieverSvc = svc.Service(RETRIEVER_SVC).(*RetrieverService)

	if len(svc.passwordHash) == 0 && svc.password == "" {
		log.Warn("No admin password configured, admin login is disabled")
	}
	return nil
}

func (svc *AdminService) verifyPassword(password string) bool {
	if password == "" {
		return false
	}
	if len(svc.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(svc.passwordHash, []byte(password)) == nil
	}
	if svc.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(svc.password), []byte(password)) == 1
}

// Login exchanges the admin password for a token. Blocked addresses are refused before the
// password is looked at, and every wrong password counts as a failed login.
func (svc *AdminService) Login(ctx context.Context, ip, userAgent, password string) (*dto.TokenPair, error) {
	if svc.loginGuardSvc.IsBlocked(ctx, ip) {
		return nil, blockedError()
	}

	info := svc.rateLimitSvc.IsAllowed(ip, RateLimitAdminLogin)
	if !info.Allowed {
		retryAfter := svc.rateLimitSvc.RetryAfter(info)
		return nil, shared.NewTooManyRequestsError("Too many password attempts. Try again later.", dto.RateLimitExceededResponse{
			Success:    false,
			Error:      fmt.Sprintf("Too many password attempts. Try again in %d seconds.", retryAfter),
			RetryAfter: retryAfter,
		}).WithRetryAfter(retryAfter)
	}

	if !svc.verifyPassword(password) {
		if _, err := svc.loginGuardSvc.RecordFailedAttempt(ctx, ip, userAgent, password); err != nil {
			log.WithError(err).WithField("ip", ip).Warn("Failed to record failed admin login")
		}
		return nil, shared.NewUnauthorizedError(ErrInvalidPassword, "Invalid password")
	}

	token, err := svc.jwtSvc.GenerateToken(shared.AdminSubject)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	log.WithField("ip", ip).Info("Admin login succeeded")
	return token, nil
}

// AuthorizePrivileged accepts a valid bearer token or the admin password. With neither
// supplied the call passes unless ADMIN_REQUIRE_AUTH is set; a wrong credential never does.
func (svc *AdminService) AuthorizePrivileged(authHeader, password string) error {
	if authHeader != "" {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}
		if _, err := svc.jwtSvc.VerifyJWTToken(token); err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}
		return nil
	}

	if password != "" {
		if !svc.verifyPassword(password) {
			return shared.NewUnauthorizedError(ErrInvalidPassword, "Unauthorized")
		}
		return nil
	}

	if svc.requireAuth {
		return shared.NewUnauthorizedError(ErrAuthRequired, "Unauthorized")
	}
	return nil
}

func (svc *AdminService) SystemStatus(ctx context.Context) *dto.StatusResponse {
	environment := make(map[string]string, len(statusEnvVars))
	missing := make([]string, 0)
	for _, key := range statusEnvVars {
		if os.Getenv(key) != "" {
			environment[key] = "Set"
		} else {
			environment[key] = "Missing"
			missing = append(missing, key)
		}
	}

	var critical string
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		critical = "Either GEMINI_API_KEY or GOOGLE_API_KEY is required for chat functionality"
	}

	return &dto.StatusResponse{
		Success:       true,
		Environment:   environment,
		Missing:       missing,
		Critical:      critical,
		Memory:        memoryStats(),
		UptimeSeconds: int64(time.Since(svc.startedAt).Seconds()),
		Conversations: svc.conversationSvc.Stats(ctx),
		RAG:           svc.retrieverSvc.Status(),
	}
}

func memoryStats() dto.MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const mb = 1024 * 1024
	return dto.MemoryStats{
		HeapAllocMB: m.HeapAlloc / mb,
		HeapSysMB:   m.HeapSys / mb,
		SysMB:       m.Sys / mb,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}
