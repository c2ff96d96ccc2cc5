package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/config"
	"github.com/rameshmuthu-dev/mobilemania-backend/controllers"
	"github.com/rameshmuthu-dev/mobilemania-backend/database"
	"github.com/rameshmuthu-dev/mobilemania-backend/logger"
	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
	"github.com/rameshmuthu-dev/mobilemania-backend/pkg/aws"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
	"github.com/rameshmuthu-dev/mobilemania-backend/routes"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

const cartTTL = 7 * 24 * time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.CloseMongo(mongoClient)
	log.Info("Connected to MongoDB", zap.String("database", cfg.MongoDB))

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	productRepo := repository.NewMongoProductRepo(db)
	orderRepo := repository.NewMongoOrderRepo(db)
	reviewRepo := repository.NewMongoReviewRepo(db)
	userRepo := repository.NewMongoUserRepo(db)
	carouselRepo := repository.NewMongoCarouselRepo(db)
	cartRepo := repository.NewRedisCartRepo(redisClient, cartTTL)
	otpStore := repository.NewRedisOTPStore(redisClient)

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := productRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to ensure product indexes", zap.Error(err))
	}
	if err := reviewRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to ensure review indexes", zap.Error(err))
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to ensure user indexes", zap.Error(err))
	}

	emailSender, err := services.NewSMTPSender(services.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUser,
		Password:   cfg.SMTPPass,
		SenderName: cfg.SMTPSenderName,
	})
	if err != nil {
		log.Fatal("Failed to configure SMTP sender", zap.Error(err))
	}

	var publisher aws.SNSPublisher
	if cfg.OrderEventsTopicARN != "" {
		awsCfg, err := aws.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			log.Fatal("Failed to load AWS configuration", zap.Error(err))
		}
		publisher = aws.NewSNSClient(awsCfg, log)
		log.Info("Order events will be published to SNS", zap.String("topic_arn", cfg.OrderEventsTopicARN))
	} else {
		log.Info("ORDER_EVENTS_TOPIC_ARN not set, order events disabled")
	}

	policy := services.PricePolicy{
		ShippingFlatFee:   cfg.ShippingFlatFee,
		FreeShippingAbove: cfg.FreeShippingAbove,
		TaxRate:           cfg.TaxRate,
	}

	authService := services.NewAuthService(userRepo, otpStore, emailSender, cfg.JWTSecret, log)
	productService := services.NewProductService(productRepo, log)
	reviewService := services.NewReviewService(reviewRepo, productRepo, log)
	orderService := services.NewOrderService(orderRepo, productRepo, policy, log)
	checkoutService := services.NewCheckoutService(orderRepo, productRepo, cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePublishableKey, cfg.FrontendURL, log)
	invoiceService := services.NewInvoiceService(log)
	cartService := services.NewCartService(cartRepo, productRepo, userRepo, log)
	carouselService := services.NewCarouselService(carouselRepo, log)
	analyticsService := services.NewAnalyticsService(orderRepo, productRepo, userRepo, log)

	isProduction := cfg.Environment == "production"
	ctrls := &routes.Controllers{
		Auth:      controllers.NewAuthController(authService, isProduction),
		Product:   controllers.NewProductController(productService),
		Review:    controllers.NewReviewController(reviewService, authService),
		Order:     controllers.NewOrderController(orderService),
		Payment:   controllers.NewPaymentController(checkoutService, orderService, invoiceService, authService, emailSender, publisher, cfg.OrderEventsTopicARN, log),
		Cart:      controllers.NewCartController(cartService),
		Carousel:  controllers.NewCarouselController(carouselService),
		Analytics: controllers.NewAnalyticsController(analyticsService),
	}

	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestID())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.FrontendURL))

	routes.RegisterRoutes(router, ctrls, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
