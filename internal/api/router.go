package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/config"
	"github.com/jengzang/flight-delay-backend-go/internal/handler"
	"github.com/jengzang/flight-delay-backend-go/internal/middleware"
	"github.com/jengzang/flight-delay-backend-go/internal/service"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
)

// Deps are the components the router wires into handlers
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *telemetry.Metrics
	Predictor *service.Predictor
	Retrainer *service.Retrainer      // nil disables retraining
	Runs      handler.RunLister       // nil disables the run ledger endpoint
	Limiter   *middleware.RateLimiter // nil disables rate limiting
}

// SetupRouter builds the HTTP routes
func SetupRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.Logger(logger.Named("http"), d.Metrics),
		middleware.CORS(),
	)

	predict := handler.NewPredictHandler(d.Predictor)

	r.GET("/health", predict.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter))
	}
	{
		api.POST("/predict", predict.Predict)
		api.GET("/model-info", predict.ModelInfo)
		api.GET("/airports", handler.ListAirports)
		api.GET("/airlines", handler.ListAirlines)
	}

	if d.Config != nil && d.Config.AdminEnabled() {
		admin := handler.NewAdminHandler(d.Predictor, d.Retrainer, d.Runs, logger.Named("admin"))
		group := api.Group("/admin", middleware.JWTAuth(d.Config.JWTSecret))
		{
			group.POST("/reload", admin.Reload)
			group.POST("/retrain", admin.Retrain)
			group.GET("/training-runs", admin.TrainingRuns)
		}
	} else {
		logger.Info("admin routes disabled, JWT_SECRET not set")
	}

	return r
}
