package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/crypto"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/handler"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/middleware"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/service"
)

type Server struct {
	router     *gin.Engine
	db         *sqlx.DB
	keyManager *crypto.KeyManager
	logger     *zap.Logger
}

func NewServer(db *sqlx.DB, keyManager *crypto.KeyManager, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:     router,
		db:         db,
		keyManager: keyManager,
		logger:     logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	userRepo := repository.NewUserRepository(s.db, s.logger)
	sessionRepo := repository.NewSessionRepository(s.db, s.logger)
	messageRepo := repository.NewMessageRepository(s.db, s.logger)
	symptomRepo := repository.NewSymptomRepository(s.db, s.logger)
	riskRepo := repository.NewRiskRepository(s.db, s.logger)

	authService := service.NewAuthService(userRepo, s.keyManager, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	sessionHandler := handler.NewSessionHandler(sessionRepo, messageRepo, userRepo, s.keyManager, s.logger)
	riskHandler := handler.NewRiskHandler(riskRepo, sessionRepo, s.logger)
	adminHandler := handler.NewAdminHandler(symptomRepo, s.logger)

	// Health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/password-reset/request", authHandler.RequestPasswordReset)
	authGroup.POST("/password-reset", authHandler.ResetPassword)
	authGroup.GET("/verify-email", authHandler.VerifyEmail)

	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)

		authRequired.POST("/sessions", sessionHandler.CreateSession)
		authRequired.GET("/sessions", sessionHandler.GetSessions)
		authRequired.GET("/sessions/:id", sessionHandler.GetSessionByID)
		authRequired.POST("/sessions/:id/close", sessionHandler.CloseSession)
		authRequired.GET("/sessions/:id/messages", sessionHandler.GetMessages)
		authRequired.POST("/sessions/:id/messages", sessionHandler.PostMessage)

		authRequired.GET("/sessions/:id/risk-events", riskHandler.GetRiskEvents)
		authRequired.GET("/sessions/:id/recommendations", riskHandler.GetRecommendations)
		authRequired.POST("/recommendations/:id/accept", riskHandler.AcceptRecommendation)

		adminGroup := authRequired.Group("/admin")
		adminGroup.Use(middleware.RequireRole("admin"))
		{
			adminGroup.POST("/symptoms", adminHandler.CreateSymptom)
			adminGroup.GET("/symptoms", adminHandler.ListSymptoms)
			adminGroup.POST("/rules", adminHandler.CreateRule)
			adminGroup.GET("/rules", adminHandler.ListRules)
		}
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
