package main

import (
	"context"

	appcontext "github.com/SeakMengs/DossierFlow/internal/app_context"
	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/database"
	"github.com/SeakMengs/DossierFlow/internal/entreprise"
	"github.com/SeakMengs/DossierFlow/internal/env"
	filestorage "github.com/SeakMengs/DossierFlow/internal/file_storage"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/SeakMengs/DossierFlow/internal/notifier"
	"github.com/SeakMengs/DossierFlow/internal/queue"
	ratelimiter "github.com/SeakMengs/DossierFlow/internal/rate_limiter"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/route"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}
	if s3 == nil {
		logger.Warn("Minio endpoint is empty, uploads are disabled")
	} else if err := filestorage.EnsureBucket(context.Background(), s3, cfg.Minio.BUCKET); err != nil {
		logger.Panic(err)
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	var dossierNotifier notifier.Notifier = notifier.Noop{}
	if cfg.RabbitMQ.Disabled {
		logger.Warn("RabbitMQ is disabled, dossier notifications are dropped")
	} else {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
		if err != nil {
			logger.Panic("Error connecting to RabbitMQ: ", err)
		}
		defer func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}()
		logger.Info("RabbitMQ connected \n")
		dossierNotifier = notifier.NewQueueNotifier(rabbitMQ, logger)
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, s3)
	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		JWTService: jwtService,
		S3:         s3,
		Entreprise: entreprise.NewClient(cfg.Entreprise, logger),
		Notifier:   dossierNotifier,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept", "If-Match"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)
	route.Register(r, _controller, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v \n", err)
	}
}
