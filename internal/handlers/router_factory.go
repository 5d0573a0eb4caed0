package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/middleware"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	"cyberadvisor/internal/version"
)

// RouterDeps bundles the services a router needs.
type RouterDeps struct {
	Users         services.UserServiceInterface
	Conversations services.ConversationServiceInterface
	Chat          *services.ChatService
}

// NewRouter builds the gin engine with all middleware and routes wired.
func NewRouter(cfg *config.Config, deps RouterDeps, logger *observability.Logger) *gin.Engine {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Health check stays outside tracing and sessions so probes are cheap.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Use(observability.GinMiddlewareWithErrorHandling(cfg.OpenTelemetry.ServiceName))
	router.Use(requestLogging(logger))
	router.Use(corsMiddleware(cfg))
	router.Use(securityHeaders(cfg))
	router.Use(sessionStore(cfg))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    version.Version,
			"commit":     version.Commit,
			"build_time": version.BuildTime,
		})
	})

	authHandler := NewAuthHandler(deps.Users, logger)
	conversationHandler := NewConversationHandler(deps.Conversations, logger)
	chatHandler := NewChatHandler(deps.Chat, deps.Users, logger)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", middleware.ValidateRequest("signup", logger), authHandler.Signup)
			auth.POST("/login", middleware.ValidateRequest("login", logger), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/status", authHandler.Status)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.RequireAuth())
		{
			authorized.GET("/profile", authHandler.GetProfile)
			authorized.PUT("/profile", middleware.ValidateRequest("update_profile", logger), authHandler.UpdateProfile)

			authorized.GET("/conversations", conversationHandler.List)
			authorized.POST("/conversations", middleware.ValidateRequest("create_conversation", logger), conversationHandler.Create)
			authorized.GET("/conversations/:id", conversationHandler.Get)
			authorized.PUT("/conversations/:id", middleware.ValidateRequest("update_conversation", logger), conversationHandler.Rename)
			authorized.DELETE("/conversations/:id", conversationHandler.Delete)
			authorized.GET("/conversations/:id/question", chatHandler.ResumeQuestion)

			authorized.POST("/chat", middleware.ValidateRequest("chat", logger), chatHandler.SendMessage)
		}
	}

	return router
}

// requestLogging logs one line per request with latency and status.
func requestLogging(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info(c.Request.Context(), "HTTP request", map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        path,
			"http.status_code": c.Writer.Status(),
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
		})
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Accept-Language")
	return cors.New(corsConfig)
}

func securityHeaders(cfg *config.Config) gin.HandlerFunc {
	secureConfig := secure.DefaultConfig()
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	secureConfig.IsDevelopment = cfg.Server.Debug
	// TLS termination happens at the proxy.
	secureConfig.SSLRedirect = false
	return secure.New(secureConfig)
}

func sessionStore(cfg *config.Config) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sameSite := http.SameSiteStrictMode
	if cfg.Server.Debug {
		sameSite = http.SameSiteLaxMode
	}
	store.Options(sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure && !cfg.Server.Debug,
		SameSite: sameSite,
	})
	return sessions.Sessions(config.SessionName, store)
}
