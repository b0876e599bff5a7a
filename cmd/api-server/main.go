package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"bloghub/database"
	"bloghub/database/seed"
	"bloghub/internal/authz"
	"bloghub/internal/broadcast"
	"bloghub/internal/config"
	"bloghub/internal/events"
	"bloghub/internal/jobs"
	"bloghub/internal/microservices/http-api/handler"
	"bloghub/internal/microservices/http-api/middleware"
	"bloghub/internal/microservices/http-api/repository"
	"bloghub/internal/microservices/http-api/router"
	"bloghub/internal/microservices/http-api/service"
	"bloghub/internal/microservices/websocket"
	"bloghub/internal/notification"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := cfg.NewLogger(os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, log); err != nil {
		return err
	}
	var admin *seed.Admin
	if cfg.AdminEmail != "" {
		admin = &seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	}
	if err := seed.Run(ctx, db, admin, log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	// 2. Repositories and the authorization gate
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	gate := authz.NewGate(roleRepo)

	// 3. Websocket hub and broadcast publisher
	hub := websocket.NewHub(log.With("component", "hub"))
	go hub.Run(ctx)

	var publisher broadcast.Publisher = broadcast.NewLocalPublisher(hub)
	if cfg.UsesRedis() {
		client, err := broadcast.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer client.Close()

		publisher = broadcast.NewRedisPublisher(client, broadcast.DefaultPrefix)
		relay := broadcast.NewRelay(client, broadcast.DefaultPrefix, hub, log.With("component", "relay"))
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("broadcast relay stopped", "error", err)
			}
		}()
		log.Info("Broadcasting through redis", "url", cfg.RedisURL)
	}

	// 4. Notifications
	deliverer := notification.NewDeliverer(
		userRepo,
		notificationRepo,
		notification.NewLogMailer(log.With("component", "mailer")),
		publisher,
		notification.DelivererConfig{
			FrontendURL: cfg.FrontendURL,
			MaxAttempts: cfg.NotificationMaxAttempts,
		},
		log.With("component", "notifications"),
	)

	var (
		queue notification.Queue
		pool  *notification.WorkerPool
	)
	switch cfg.NotificationQueue {
	case "rabbitmq":
		mq, err := notification.NewRabbitMQClient(notification.RabbitMQConfig{
			URL:           cfg.RabbitMQURL,
			PrefetchCount: cfg.NotificationWorkers,
		})
		if err != nil {
			return err
		}
		defer mq.Close()

		brokerQueue := notification.NewBrokerQueue(mq, cfg.NotificationQueueName)
		go func() {
			if err := brokerQueue.Consume(ctx, deliverer); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", "error", err)
			}
		}()
		queue = brokerQueue
	default:
		pool = notification.NewWorkerPool(cfg.NotificationWorkers, log.With("component", "workers"))
		pool.Start()
		queue = notification.NewPoolQueue(pool, deliverer)
	}

	// 5. Domain events, delivered after commit
	bus := events.NewBus(log.With("component", "events"))
	bus.Subscribe(broadcast.NewEventHandler(publisher))
	bus.Subscribe(notification.NewEventHandler(queue))

	// 6. Services
	authService := service.NewAuthService(userRepo, roleRepo, cfg.JWTSecret, cfg.AccessTokenTTL)
	categoryService := service.NewCategoryService(categoryRepo, gate)
	postService := service.NewPostService(postRepo, categoryRepo, commentRepo, gate)
	commentService := service.NewCommentService(commentRepo, postRepo, gate, bus)
	userService := service.NewUserService(userRepo, roleRepo, gate)
	notificationService := service.NewNotificationService(notificationRepo)

	// 7. Stale-post reaper
	reaper := jobs.NewReaper(postRepo, cfg.ReaperMaxAge, log.With("component", "reaper"))
	go jobs.NewScheduler("stale-post-reaper", reaper, cfg.ReaperInterval, log).Start(ctx, false)

	// 8. HTTP
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.CommentRateLimitRPS), cfg.CommentRateLimitBurst)
	go limiter.Cleanup(ctx, 10*time.Minute, 30*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(authService, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Category:     handler.NewCategoryHandler(categoryService),
		Post:         handler.NewPostHandler(postService),
		Comment:      handler.NewCommentHandler(commentService, middleware.RateLimitMiddleware(limiter)),
		Notification: handler.NewNotificationHandler(notificationService),
		WebSocket:    websocket.WSHandler(hub),
	}, router.Options{CORSOrigins: cfg.CORSOrigins, AccessLog: true})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	// requests are done, so no new jobs arrive; let queued ones finish
	if pool != nil {
		pool.Wait()
	}
	<-hub.Done()
	log.Info("Server exiting")
	return nil
}
