package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendly/config"
	"vendly/cron"
	"vendly/database"
	availabilityRepo "vendly/database/repository/availability"
	bookingRepoPkg "vendly/database/repository/booking"
	paymentRepoPkg "vendly/database/repository/payment"
	serviceRepoPkg "vendly/database/repository/service"
	"vendly/handlers"
	"vendly/middleware"
	"vendly/routes"
	"vendly/services/availability"
	"vendly/services/booking"
	"vendly/services/notification"
	"vendly/services/payment"
	"vendly/services/scheduling"
	"vendly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitRateLimitCache()
	stripe.Key = config.AppConfig.StripeKey

	// Dedicated client for probing the queue's redis database; the task
	// queue manages its own connections internally.
	queuePing := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	utils.StartHealthMonitor(utils.HealthDeps{
		Mongo:     database.MongoClient,
		Cache:     utils.GetCacheClient(),
		RateLimit: utils.GetRateLimitClient(),
		Queue:     queuePing,
	}, time.Minute)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()

	// async notification queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewAsynqNotifier(asynqClient, logger)

	// services.
	templateService := &availability.DefaultTemplateService{
		Repo:     availRepo,
		Services: serviceRepo,
		Logger:   logger,
	}

	checker := &scheduling.DefaultConflictChecker{
		Slots:    availRepo,
		Bookings: bookingRepo,
	}

	gateway := payment.NewStripeGateway()
	reconciler := &payment.DefaultReconciler{
		Payments:      paymentRepo,
		Bookings:      bookingRepo,
		Gateway:       gateway,
		Notifier:      notifier,
		Logger:        logger,
		WebhookSecret: config.AppConfig.WebhookSecret,
	}

	bookingService := &booking.DefaultService{
		Repo:            bookingRepo,
		Payments:        paymentRepo,
		Services:        serviceRepo,
		Checker:         checker,
		Gateway:         gateway,
		Reconciler:      reconciler,
		Notifier:        notifier,
		Reminders:       notifier,
		Logger:          logger,
		PlatformFeeRate: config.AppConfig.PlatformFeeRate,
		Currency:        config.AppConfig.DefaultCurrency,
	}

	// background worker for notifications and reminders.
	worker := &cron.Worker{
		Bookings: bookingRepo,
		Notifier: &notification.LogNotifier{Logger: logger},
		Logger:   logger,
	}
	worker.Run()

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Availability: &handlers.AvailabilityHandler{Templates: templateService},
		Bookings:     &handlers.BookingHandler{Bookings: bookingService},
		Services:     &handlers.ServiceHandler{Services: serviceRepo},
		Payments:     &handlers.PaymentHandler{Bookings: bookingService, Reconciler: reconciler},
		Webhooks:     &handlers.WebhookHandler{Reconciler: reconciler, Logger: logger},
	}

	limiter := &middleware.RedisLimiterStore{
		Client:    utils.GetRateLimitClient(),
		PerMinute: config.AppConfig.MaxRequestsPerMin,
	}
	routes.RegisterRoutes(router, handlerBundle, limiter)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
