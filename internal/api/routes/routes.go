package routes

import (
	"github.com/diero-hl/agentclaw/internal/api/handlers"
	"github.com/diero-hl/agentclaw/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Agents        *handlers.AgentHandler
	Reviews       *handlers.ReviewHandler
	Chat          *handlers.ChatHandler
	WS            *handlers.WSHandler
	Conversations *handlers.ConversationHandler
	Auth          *handlers.AuthHandler
	Uploads       *handlers.UploadHandler

	JWTSecret string
	// AuthRequired puts publishing and uploads behind a bearer token.
	AuthRequired bool
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	publish := []gin.HandlerFunc{}
	if d.AuthRequired {
		publish = append(publish, middleware.JWTAuth(d.JWTSecret))
	}

	auth := r.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	agents := r.Group("/agents")
	agents.GET("", d.Agents.List)
	agents.POST("", append(publish, d.Agents.Create)...)
	agents.GET("/:slug", d.Agents.Get)
	agents.POST("/:slug/deploy", d.Agents.Deploy)
	agents.GET("/:slug/reviews", d.Reviews.List)
	agents.POST("/:slug/reviews", d.Reviews.Create)
	agents.POST("/:slug/chat", d.Chat.Stream)
	agents.GET("/:slug/chat/ws", d.WS.ChatWS)

	convs := r.Group("/conversations")
	convs.GET("", d.Conversations.List)
	convs.GET("/:id", d.Conversations.Get)
	convs.DELETE("/:id", d.Conversations.Delete)

	r.POST("/uploads/image", append(publish, d.Uploads.Image)...)

	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(d.JWTSecret), middleware.RequireAdmin())
	admin.POST("/agents/:slug/feature", d.Agents.Feature)
}
