package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/config"
	"github.com/KofuCodes/ReMind/internal/handlers"
	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/store"
	syncpkg "github.com/KofuCodes/ReMind/internal/sync"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// Setup builds the gin engine and wires all routes. pusher and archive may
// be nil; their routes and mirroring are skipped in that case.
func Setup(log *zap.Logger, st store.Store, profiles *models.BaselineProfiles, pusher *syncpkg.Pusher, archive *store.Archive) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	cookieStore := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("remind_session", cookieStore))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	scoreHandler := handlers.NewScoreHandler(log, st, pusher)
	resultsHandler := handlers.NewResultsHandler(log, st, pusher)
	baselineHandler := handlers.NewBaselineHandler(log, st, profiles)
	dashboardHandler := handlers.NewDashboardHandler(log, st)

	// Ingestion endpoints get a per-IP rate limit; reads stay unlimited.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 60,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/", dashboardHandler.Show)
	router.GET("/dashboard", dashboardHandler.Show)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/score", limiter, scoreHandler.Submit)

	api := router.Group("/api")
	{
		api.POST("/results", limiter, resultsHandler.Submit)
		api.GET("/results", resultsHandler.History)
		api.GET("/results/latest", resultsHandler.Latest)
		api.POST("/mirror", limiter, resultsHandler.Merge)

		api.GET("/baseline", baselineHandler.Show)
		api.POST("/baseline", baselineHandler.Apply)

		if archive != nil {
			archiveHandler := handlers.NewArchiveHandler(log, archive)
			api.GET("/archive", archiveHandler.List)
		}
	}

	return router
}
