package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gemini-chat/cmd/api/handlers"
	"gemini-chat/cmd/api/middleware"
	"gemini-chat/cmd/api/services"
	_ "gemini-chat/docs"
)

// Services 는 라우터가 핸들러에 넘겨줄 서비스 묶음이다.
type Services struct {
	Auth          *services.AuthService
	Turns         *services.TurnService
	Conversations *services.ConversationService
}

func New(svcs Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	r.GET("/health", handlers.HealthHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/register", handlers.RegisterHandler(svcs.Auth))
		api.POST("/login", handlers.LoginHandler(svcs.Auth))
		api.POST("/logout", handlers.LogoutHandler(svcs.Auth))
		api.GET("/user", handlers.LoginStatusHandler(svcs.Auth))

		protected := api.Group("", middleware.SessionAuth(svcs.Auth))
		protected.POST("/chat", handlers.ChatHandler(svcs.Turns))
		protected.GET("/conversations", handlers.ListConversationsHandler(svcs.Conversations))
		protected.GET("/conversations/:id", handlers.GetConversationMessagesHandler(svcs.Conversations))
	}

	return r
}

// WithCORS 는 허용된 origin 에서 쿠키를 포함한 요청을 받을 수 있도록 엔진을 감싼다.
// origins 가 비어 있으면 엔진을 그대로 돌려준다.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Span-Id"},
		AllowCredentials: true,
	}).Handler(h)
}
