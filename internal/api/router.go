package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/boxboxd/boxboxd/pkg/logging"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services are the domain services exposed over JSON-RPC
type Services struct {
	Feed        FeedLoader
	Leaderboard LeaderboardService
	Chat        ChatService
	// Checks are probed by /health, keyed by dependency name.
	Checks map[string]HealthChecker
}

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	services Services
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(services Services) *Router {
	router := &Router{
		handler:  NewJSONRPCHandler(),
		services: services,
		logger:   logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	if r.services.Feed != nil {
		feedAPI := NewFeedAPI(r.services.Feed)
		r.handler.RegisterMethod("feed.get_personal_feed", feedAPI.GetPersonalFeed)
	}

	if r.services.Leaderboard != nil {
		gridAPI := NewGridAPI(r.services.Leaderboard)
		r.handler.RegisterMethod("grid.get_leaderboard", gridAPI.GetLeaderboard)
		r.handler.RegisterMethod("grid.submit_attempt", gridAPI.SubmitAttempt)
	}

	if r.services.Chat != nil {
		chatAPI := NewChatAPI(r.services.Chat)
		r.handler.RegisterMethod("chat.send_message", chatAPI.SendMessage)
		r.handler.RegisterMethod("chat.get_history", chatAPI.GetHistory)
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, check := range r.services.Checks {
		if err := check.Health(ctx); err != nil {
			r.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "OK"
	}

	state := "OK"
	if status != http.StatusOK {
		state = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "boxboxd-api",
		"checks":  checks,
	})
}
