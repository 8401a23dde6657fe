package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/api/handlers"
	"github.com/stitts-dev/hoops-oracle/internal/api/middleware"
)

// Handlers groups every HTTP handler the server mounts. Auth is nil when Yahoo
// credentials are not configured and Sync is nil without a league key.
type Handlers struct {
	Health   *handlers.HealthHandler
	Players  *handlers.PlayerHandler
	Analysis *handlers.AnalysisHandler
	Trades   *handlers.TradeHandler
	Draft    *handlers.DraftHandler
	Auth     *handlers.AuthHandler
	Sync     *handlers.SyncHandler
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(h Handlers, jwtSecret string, corsOrigins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(corsOrigins))

	router.GET("/health", h.Health.GetHealth)
	router.GET("/ready", h.Health.GetReady)

	apiV1 := router.Group("/api/v1")
	SetupRoutes(apiV1, h, jwtSecret)

	// WebSocket at root level, not under /api/v1
	router.GET("/ws/draft/:id", middleware.OptionalAuth(jwtSecret), h.Draft.Stream)

	if h.Auth != nil {
		authGroup := router.Group("/auth/yahoo")
		authGroup.GET("/start", h.Auth.StartYahoo)
		authGroup.GET("/callback", h.Auth.YahooCallback)
	}

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, h Handlers, jwtSecret string) {
	// Player endpoints
	group.GET("/players/rankings", h.Players.GetRankings)
	group.GET("/players/search", h.Players.SearchPlayers)
	group.GET("/players/:id/value", h.Players.GetPlayerValue)
	group.GET("/teams/:teamKey/roster", h.Players.GetTeamRoster)

	// Stateless analysis endpoints
	group.POST("/analysis/normalize", h.Analysis.Normalize)
	group.POST("/analysis/punt", h.Analysis.DetectPunts)
	group.POST("/analysis/recommend", h.Analysis.Recommend)

	group.POST("/trades/analyze", h.Trades.AnalyzeTrade)

	// Draft sessions carry an owner when created with a token
	sessions := group.Group("/draft/sessions")
	sessions.Use(middleware.OptionalAuth(jwtSecret))
	{
		sessions.POST("", h.Draft.CreateSession)
		sessions.GET("/:id", h.Draft.GetSession)
		sessions.POST("/:id/picks", h.Draft.RecordPick)
		sessions.GET("/:id/recommendations", h.Draft.GetRecommendations)
		sessions.POST("/:id/close", h.Draft.CloseSession)
		sessions.DELETE("/:id", h.Draft.DeleteSession)
	}

	if h.Sync != nil {
		admin := group.Group("/admin")
		admin.Use(middleware.AuthRequired(jwtSecret))
		admin.POST("/sync", h.Sync.TriggerSync)
	}
}
