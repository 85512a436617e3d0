package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeserve/config"
	"homeserve/cron"
	"homeserve/database"
	"homeserve/database/repository"
	"homeserve/handlers"
	"homeserve/middleware"
	"homeserve/routes"
	"homeserve/services/catalog"
	"homeserve/services/chat"
	"homeserve/services/geo"
	"homeserve/services/notes"
	"homeserve/services/notification"
	"homeserve/services/payment"
	"homeserve/services/providers"
	"homeserve/services/storage"
	"homeserve/services/tracking"
	"homeserve/services/wizard"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const uploadsPath = "/uploads"

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	if err := utils.InitCache(); err != nil {
		logger.Fatal("main: failed to connect to Redis", zap.Error(err))
	}
	cache := utils.GetCacheClient()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := utils.NewMetrics(reg)

	// repositories.
	noteRepo, err := repository.NewMongoNoteRepo(db)
	if err != nil {
		logger.Fatal("main: notes repository", zap.Error(err))
	}
	savedRepo, err := repository.NewMongoSavedProviderRepo(db)
	if err != nil {
		logger.Fatal("main: saved providers repository", zap.Error(err))
	}
	bookingRepo, err := repository.NewMongoBookingRepo(db)
	if err != nil {
		logger.Fatal("main: bookings repository", zap.Error(err))
	}

	// services.
	cat := catalog.New()
	locator := geo.NewLocator(geo.Point{Lat: cfg.DefaultLat, Lon: cfg.DefaultLon}, logger)
	ipLocator := geo.NewIPLocator("", logger)

	var email notification.EmailSender = notification.NewLogEmailSender(logger)
	if cfg.SendGridAPIKey != "" {
		email = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom, "HomeServe", logger)
	}
	var push notification.PushSender = notification.NewLogPushSender(logger)
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := notification.NewFCMSender(context.Background(), cfg.FirebaseCredentialsFile, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize Firebase", zap.Error(err))
		}
		push = fcm
	}

	queueOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	queue := asynq.NewClient(queueOpt)
	defer queue.Close()
	notifier := notification.NewService(email, push, cron.NewReminderQueue(queue, logger), logger)

	tracker := tracking.NewService(tracking.NewRedisStore(cache), bookingRepo, cat, locator, logger)

	wizardSvc := wizard.NewService(wizard.Options{
		Store:       wizard.NewRedisSessionStore(cache, cfg.SessionTTL),
		Handoffs:    wizard.NewRedisHandoffStore(cache, cfg.HandoffTTL),
		Catalog:     cat,
		Bookings:    bookingRepo,
		Listeners:   []wizard.SubmitListener{tracker, notifier},
		Metrics:     metrics,
		Logger:      logger,
		SubmitDelay: cfg.SubmitDelay,
		Currency:    cfg.Currency,
	})

	var photos storage.PhotoStore
	var localUploads *storage.LocalStore
	if cfg.CloudinaryURL != "" {
		photos, err = storage.NewCloudinaryStore(cfg.CloudinaryURL, logger)
	} else {
		localUploads, err = storage.NewLocalStore(cfg.UploadDir, uploadsPath, logger)
		photos = localUploads
	}
	if err != nil {
		logger.Fatal("main: failed to initialize photo storage", zap.Error(err))
	}

	hub := chat.NewHub(logger)
	chatSvc := chat.NewService(chat.NewRedisStore(cache), hub, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	health := utils.NewHealthMonitor(map[string]utils.Probe{
		"mongo": utils.MongoProbe(database.MongoClient),
		"redis": utils.RedisProbe(cache),
	}, logger)
	health.Start(ctx, time.Minute)

	worker, err := cron.NewWorker(queueOpt, notifier, tracker, cfg.TrackingTick, logger)
	if err != nil {
		logger.Fatal("main: failed to configure background workers", zap.Error(err))
	}
	if err := worker.Start(); err != nil {
		logger.Fatal("main: failed to start background workers", zap.Error(err))
	}

	hb := &handlers.HandlerBundle{
		Wizard:    handlers.NewWizardHandler(wizardSvc, photos),
		Catalog:   handlers.NewCatalogHandler(cat),
		Providers: handlers.NewProviderHandler(providers.NewService(cat, savedRepo, logger), locator),
		Notes:     handlers.NewNotesHandler(notes.NewService(noteRepo, logger)),
		Bookings:  handlers.NewBookingHandler(tracker, payment.NewService(cfg.StripeKey, bookingRepo, logger)),
		Chat:      handlers.NewChatHandler(chatSvc, hub),
		Health:    handlers.NewHealthHandler(health),
	}

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))
	router.Use(middleware.GeolocationMiddleware(ipLocator))
	if localUploads != nil {
		router.Static(uploadsPath, localUploads.Dir())
	}
	routes.RegisterRoutes(router, hb, routes.Options{JWTSecret: []byte(cfg.JWTSecret), Gatherer: reg})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	stop()
	worker.Shutdown()
	if err := cache.Close(); err != nil {
		logger.Warn("main: closing Redis", zap.Error(err))
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: closing MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
