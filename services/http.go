package services

import (
	"errors"
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/lac-hong-legacy/portfolio_api/docs"
	"github.com/lac-hong-legacy/portfolio_api/services/handlers"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	rateLimitSvc    *RateLimitService
	monitoringSvc   *MonitoringService
	visitSvc        *VisitService
	loginGuardSvc   *LoginGuardService
	conversationSvc *ConversationService
	chatSvc         *ChatService
	retrieverSvc    *RetrieverService
	adminSvc        *AdminService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	svc.port = shared.GetEnvInt("HTTP_PORT", 8000)
	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.visitSvc = svc.Service(VISIT_SVC).(*VisitService)
	svc.loginGuardSvc = svc.Service(LOGIN_GUARD_SVC).(*LoginGuardService)
	svc.conversationSvc = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.chatSvc = svc.Service(CHAT_SVC).(*ChatService)
	svc.retrieverSvc = svc.Service(RETRIEVER_SVC).(*RetrieverService)
	svc.adminSvc = svc.Service(ADMIN_SVC).(*AdminService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoringSvc = monitoringSvc
	}

	svc.app = svc.newApp()

	log.WithField("port", svc.port).Info("HTTP server starting")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "portfolio_api",
		JSONEncoder:  shared.JSON().Marshal,
		JSONDecoder:  shared.JSON().Unmarshal,
		ErrorHandler: shared.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: shared.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	if svc.monitoringSvc.Enabled() {
		app.Get("/metrics", svc.monitoringSvc.MetricsHandler())
	}
	docs.SwaggerInfo.BasePath = ""
	app.Get("/swagger/*", swagger.HandlerDefault)

	registerRoutes(app.Group("/api"), svc.rateLimitSvc, routeHandlers{
		visit: handlers.NewVisitHandler(svc.visitSvc),
		login: handlers.NewFailedLoginHandler(svc.loginGuardSvc),
		chat:  handlers.NewChatHandler(svc.chatSvc, svc.conversationSvc),
		rag:   handlers.NewRAGHandler(svc.retrieverSvc, svc.adminSvc),
		admin: handlers.NewAdminHandler(svc.adminSvc),
	})

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(errors.New("page not found"), "Not Found")
	})

	return app
}

type routeHandlers struct {
	visit *handlers.VisitHandler
	login *handlers.FailedLoginHandler
	chat  *handlers.ChatHandler
	rag   *handlers.RAGHandler
	admin *handlers.AdminHandler
}

func registerRoutes(api fiber.Router, rateLimitSvc *RateLimitService, h routeHandlers) {
	visitLimit := rateLimitSvc.RateLimit(RateLimitVisits)
	api.Post("/visits", visitLimit, h.visit.LogVisit)
	api.Get("/visits", visitLimit, h.visit.GetVisits)

	api.Post("/failed-logins", h.login.RecordFailedLogin)
	api.Get("/failed-logins", h.login.GetFailedLogins)

	api.Get("/message-count", h.chat.GetMessageCount)
	api.Get("/chat-history", h.chat.GetChatHistory)
	api.Post("/chat-resume", h.chat.ChatResume)
	api.Post("/clear-conversation", h.chat.ClearConversation)

	api.Get("/rag-status", h.rag.GetStatus)
	api.Post("/rag-status", h.rag.Refresh)
	api.Post("/refresh-resume", h.rag.RefreshResume)

	api.Post("/admin/login", h.admin.Login)
	api.Get("/status", h.admin.GetStatus)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
