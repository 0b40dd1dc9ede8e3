package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mohammedqas189/ASCVD-Calculator/docs"
	apperrors "github.com/mohammedqas189/ASCVD-Calculator/internal/errors"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/monitoring"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/security"
)

const calculateRoute = "/api/v1/risk/calculate"

func (s *server) routes() *gin.Engine {
	r := gin.New()

	// order matters: request ids first, errors rendered before metrics read the status
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, s.cfg.MaxBodyBytes))
	r.Use(s.security.CORS())
	r.Use(security.SecurityHeadersMiddleware(s.cfg.EnableHSTS))
	r.Use(security.CSPMiddleware("/swagger/"))
	r.Use(apperrors.ErrorHandler())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/stats", s.handleStats)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(
		s.limiter.IPRateLimitMiddleware(),
		s.security.RequestTimeout,
		s.security.LimitBody,
		s.security.ValidateContentType,
	)

	api.GET("/ratelimit/status", s.limiter.HandleRateLimitStatus())

	riskAPI := api.Group("/risk")
	riskAPI.GET("/profiles", s.handleProfiles)
	riskAPI.POST("/calculate", s.handleCalculate)

	chatAPI := api.Group("/chat")
	chatAPI.POST("/sessions", s.handleCreateSession)

	messages := chatAPI.Group("/messages", s.requireChatSession)
	messages.GET("", s.handleListMessages)
	messages.POST("", s.limiter.ChatSessionRateLimitMiddleware(), s.handleSendMessage)

	return r
}
