package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/portfolio_api/services"
	"github.com/rs/zerolog/log"
)

// @title Portfolio API
// @version 1.0
// @description Visit analytics, failed-login guard and resume chat for a personal portfolio.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.StoreService{},
		&services.RedisService{},
		&services.GeolocationService{},
		&services.RateLimitService{},

		&services.VisitService{},
		&services.LoginGuardService{},
		&services.ConversationService{},

		&services.MinIOService{},
		&services.ResumeService{},
		&services.RetrieverService{},
		&services.CompletionService{},
		&services.ChatService{},

		&services.JWTService{},
		&services.AdminService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service exited")
		return
	}
}
