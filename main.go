package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"tryon/api/rest"
	"tryon/archive"
	"tryon/cache"
	"tryon/config"
	"tryon/detect"
	"tryon/detect/remote"
	"tryon/detect/yolo"
	"tryon/history"
	"tryon/service"
	"tryon/shared/log"
	"tryon/shared/trace"
	"tryon/stylist/gemini"
	"tryon/validate"
)

//	@title			Virtual Clothing Try-On API
//	@version		1.0
//	@description	This is an API for the Virtual Clothing Try-On service

// @BasePath	/
func main() {
	serviceConfig := config.New()

	ctx := context.Background()

	tp := trace.InitTrace()
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down tracer provider: %v", err)
		}
	}()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		slog.Error("Error configuring OpenTelemetry: %v", err)
	}
	defer otelShutdown()

	logger := log.InitLogger(ctx)
	defer func() {
		if err = logger.Sync(); err != nil {
			slog.Error("Error syncing logger: %v", err)
		}
	}()

	var detector detect.Detector
	switch serviceConfig.DetectorBackend {
	case "yolo":
		yoloDetector := yolo.MustDetector(serviceConfig.YoloModelPath, logger)
		defer func() {
			if err := yoloDetector.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		detector = yoloDetector
	case "remote":
		remoteDetector := remote.New(serviceConfig.InferenceURL, serviceConfig.DetectTimeout(), logger)
		if err := remoteDetector.CheckHealth(ctx); err != nil {
			logger.Warn("inference service health check failed: " + err.Error())
		}
		detector = remoteDetector
	default:
		panic("Unknown detector backend: " + serviceConfig.DetectorBackend)
	}

	var archiveSink *archive.Archive
	if serviceConfig.ResultsS3Bucket != "" {
		awsSession, err := session.NewSession(&aws.Config{
			Region:      aws.String(serviceConfig.S3Region),
			Credentials: credentials.NewStaticCredentials(serviceConfig.S3AccessKey, serviceConfig.S3SecretKey, ""),
			Endpoint:    &serviceConfig.S3Endpoint,
		})
		if err != nil {
			logger.Error(err.Error())
			panic("Failed to create aws session")
		}

		archiveSink = archive.New(s3.New(awsSession), serviceConfig.ResultsS3Bucket, logger)
	}

	var historySink *history.History
	if serviceConfig.MongoURI != "" {
		mongoClient, err := mongo.Connect(options.Client().ApplyURI(serviceConfig.MongoURI))
		if err != nil {
			logger.Error(err.Error())
			panic("Failed to connect to mongo")
		}
		defer func() {
			if err := mongoClient.Disconnect(ctx); err != nil {
				logger.Error(err.Error())
			}
		}()

		historySink = history.New(mongoClient, serviceConfig.MongoDatabase, logger)
	}

	var compositeCache *cache.Cache
	if dragonflyConfig := config.NewDragonflyConfig(); dragonflyConfig.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     dragonflyConfig.Addr(),
			Password: dragonflyConfig.Password,
			DB:       dragonflyConfig.DB,
		})

		compositeCache = cache.New(redisClient, serviceConfig.CacheTTL(), logger)
	}

	geminiClient := gemini.MustClient(serviceConfig, logger)

	tryOnService := service.NewTryOnService(
		serviceConfig,
		validate.NewPersonValidator(detector, logger),
		validate.NewClothingValidator(detector, logger),
		geminiClient,
		geminiClient,
		archiveSink,
		historySink,
		compositeCache,
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      serviceConfig.AppName,
		BodyLimit:    serviceConfig.BodyLimitInMB * 1024 * 1024,
		ErrorHandler: rest.ErrorHandler,
	})
	app.Use(
		recover.New(),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{Logger: logger}),
		cors.New(cors.Config{AllowOrigins: serviceConfig.CORSAllowOrigins}),
		compress.New(compress.Config{Level: compress.LevelBestSpeed}),
		etag.New(),
		limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.IP() == "127.0.0.1"
			},
			Max:        serviceConfig.RateLimitMaxRequests,
			Expiration: serviceConfig.RateLimitDuration(),
		}),
		swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Virtual Clothing Try-On API",
		}),
	)

	rest.NewTryOnController(app, serviceConfig, tryOnService, logger)

	app.Static("/", serviceConfig.StaticDir)

	if err = app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Panic(err.Error())
		return
	}
}
