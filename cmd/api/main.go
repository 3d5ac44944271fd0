package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/wedding-invites-and-seating/internal/adapters/mongo"
	"github.com/robertarktes/wedding-invites-and-seating/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/wedding-invites-and-seating/internal/adapters/redis"
	"github.com/robertarktes/wedding-invites-and-seating/internal/auth"
	"github.com/robertarktes/wedding-invites-and-seating/internal/config"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	httphandler "github.com/robertarktes/wedding-invites-and-seating/internal/http"
	"github.com/robertarktes/wedding-invites-and-seating/internal/idempotency"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"github.com/robertarktes/wedding-invites-and-seating/internal/rateLimit"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Fatal("missing ADMIN_PASSWORD")
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(cfg.MongoDatabase)

	guests, err := mongoadapter.NewGuestRepository(context.Background(), mongoDB, logger)
	if err != nil {
		log.Fatalf("failed to init guest repository: %v", err)
	}
	plans, err := mongoadapter.NewPlanRepository(context.Background(), mongoDB, logger)
	if err != nil {
		log.Fatalf("failed to init plan repository: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	sessions := redisadapter.NewSessions(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, time.Hour)
	rl := rateLimit.NewRateLimiter(redisCache)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()
	rabbitPub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	engine := seating.NewEngine(plans, guests, domain.PlanDefaults{
		Name:   cfg.PlanName,
		Width:  cfg.PlanWidth,
		Height: cfg.PlanHeight,
	}, logger)
	authSvc := auth.NewService(cfg.AdminPassword, sessions, cfg.SessionTTL)

	handlers := httphandler.NewHandlers(cfg, guests, engine, authSvc, idemp, rabbitPub, logger)

	r := httphandler.SetupRouter(handlers, logger, rl, authSvc)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
