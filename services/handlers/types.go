package handlers

import (
	"context"

	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
)

type VisitServiceInterface interface {
	LogVisit(ctx context.Context, ip, userAgent, referer string) (*dto.LogVisitResponse, error)
	Stats(ctx context.Context) *dto.VisitStatsResponse
}

type LoginGuardServiceInterface interface {
	RecordFailedAttempt(ctx context.Context, ip, userAgent, attemptedPassword string) (*dto.FailedLoginResponse, error)
	Stats(ctx context.Context) *dto.FailedLoginStatsResponse
}

type ConversationServiceInterface interface {
	CheckQuota(ctx context.Context, ip string) dto.QuotaStatus
	History(ctx context.Context, ip string) []model.ConversationMessage
	Clear(ctx context.Context, ip string) error
}

type ChatServiceInterface interface {
	Respond(ctx context.Context, ip, message string) (*dto.ChatResponse, error)
}

type RetrieverServiceInterface interface {
	Status() dto.RAGStatus
	Refresh(ctx context.Context) (dto.RAGStatus, dto.ResumeReloadResult)
}

type AdminServiceInterface interface {
	Login(ctx context.Context, ip, userAgent, password string) (*dto.TokenPair, error)
	AuthorizePrivileged(authHeader, password string) error
	SystemStatus(ctx context.Context) *dto.StatusResponse
}
