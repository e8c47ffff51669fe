package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muralianand12345/AI-API/internal/app"
	"github.com/muralianand12345/AI-API/internal/bootstrap"
	"github.com/muralianand12345/AI-API/internal/config"
	"github.com/muralianand12345/AI-API/internal/platform/rabbitmq"
	"github.com/muralianand12345/AI-API/internal/repository"
	"github.com/muralianand12345/AI-API/internal/transport/http/handler"
	"github.com/muralianand12345/AI-API/internal/transport/http/middleware"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(boot *bootstrap.App) *gin.Engine {
	cfg := boot.Config
	gin.SetMode(cfg.App.GinMode)

	userRepo := repository.NewUserRepository(boot.MySQL)
	messageRepo := repository.NewMessageRepository(boot.MySQL)
	uploadRepo := repository.NewUploadRepository(boot.MySQL)

	turnPublisher := rabbitmq.NewTurnPublisher(boot.MQConn, cfg.RabbitMQ.TurnArchiveQueue)

	systemPrompt := cfg.LLM.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	authService := app.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	documentService := app.NewDocumentService(boot.Documents, uploadRepo)
	chatService := app.NewChatService(
		boot.Documents,
		boot.Memory,
		boot.AI,
		turnPublisher,
		boot.HistoryCache,
		messageRepo,
		systemPrompt,
		cfg.Memory.BufferSize,
	)

	authHandler := handler.NewAuthHandler(authService)
	aiHandler := handler.NewAIHandler(documentService, chatService)
	healthHandler := handler.NewHealthHandler(boot)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", healthHandler.Check)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)
	}

	ai := r.Group("/ai", middleware.AuthJWT(cfg.Auth.JWTSecret))
	{
		ai.POST("/upload-pdf", aiHandler.UploadPDF)
		ai.GET("/documents/stats", aiHandler.DocumentStats)
		ai.GET("/documents", aiHandler.ListDocuments)
		ai.POST("/chat", aiHandler.Chat)
		ai.GET("/history", aiHandler.History)
		ai.DELETE("/history", aiHandler.ClearHistory)
	}

	return r
}
