package handlers

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	WebSocket *WebSocketHandler
	Sessions  *SessionHandler
	Health    *HealthHandler
	// Auth guards the session API.
	Auth gin.HandlerFunc
}

func (r Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", r.Health.Health)
	router.GET("/ready", r.Health.Ready)
	router.GET("/ws", r.WebSocket.HandleWebSocket)

	if r.Sessions != nil {
		api := router.Group("/api/sessions")
		api.GET("/pin/:pin", r.Sessions.GetSessionByPIN)
		api.GET("/:id", r.Sessions.GetSession)
		api.POST("", r.Auth, r.Sessions.CreateSession)
	}
	return router
}
