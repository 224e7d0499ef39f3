package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todopop/internal/adapter/http/handler"
	"todopop/internal/adapter/http/middleware"
	"todopop/pkg/cache"
	"todopop/pkg/config"
	"todopop/pkg/metrics"
	"todopop/pkg/ratelimit"
)

type HandlersConfig struct {
	TodoHandler      *handler.TodoHandler
	SubscribeHandler *handler.SubscribeHandler
}

type RouterDeps struct {
	Logger        zerolog.Logger
	Metrics       *metrics.AppMetrics
	Registry      prometheus.Gatherer
	ResponseCache *cache.ResponseCache
	Config        *config.AppConfig
}

func SetupRouter(handlers HandlersConfig, deps RouterDeps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(deps.Config.ServiceName))
	router.Use(middleware.RequestLogger(deps.Logger))

	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	if deps.Config.RateLimitEnabled {
		limiter := ratelimit.NewRateLimiter(deps.Config.RateLimitConfigs, deps.Logger, deps.Metrics)
		router.Use(limiter.Middleware())
	}

	setupFunctionRoutes(router, handlers, deps)
	setupOperationalRoutes(router, deps)

	return router
}

func setupFunctionRoutes(router *gin.Engine, handlers HandlersConfig, deps RouterDeps) {
	fn := router.Group("/fn")
	{
		listTodos := fn.Group("/")

		if deps.ResponseCache != nil {
			listTodos.Use(deps.ResponseCache.Middleware())
		}

		listTodos.GET("/todos.list", handlers.TodoHandler.ListTodos)

		fn.POST("/todos.add", handlers.TodoHandler.AddTodo)
		fn.POST("/todos.toggle", handlers.TodoHandler.ToggleTodo)
		fn.POST("/todos.remove", handlers.TodoHandler.RemoveTodo)
	}

	router.GET("/subscribe/todos.list", handlers.SubscribeHandler.ListTodos)
}

func setupOperationalRoutes(router *gin.Engine, deps RouterDeps) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
}

// SetupRouterForTests wires only the function routes, with no middleware
// beyond recovery.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/fn/todos.list", handlers.TodoHandler.ListTodos)
	router.POST("/fn/todos.add", handlers.TodoHandler.AddTodo)
	router.POST("/fn/todos.toggle", handlers.TodoHandler.ToggleTodo)
	router.POST("/fn/todos.remove", handlers.TodoHandler.RemoveTodo)

	if handlers.SubscribeHandler != nil {
		router.GET("/subscribe/todos.list", handlers.SubscribeHandler.ListTodos)
	}

	return router
}
