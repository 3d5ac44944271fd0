package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/wedding-invites-and-seating/internal/adapters/mongo"
	"github.com/robertarktes/wedding-invites-and-seating/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/wedding-invites-and-seating/internal/adapters/redis"
	"github.com/robertarktes/wedding-invites-and-seating/internal/config"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The worker keeps a cached occupancy summary in redis so read-heavy
// surfaces can poll without hitting mongo. Any guest or seating event
// triggers a recompute of the whole summary; the computation is cheap for
// the plan sizes involved.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

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

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, "seating-summary.q", "guest.#", "seating.#")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	worker := NewSummaryWorker(cfg, plans, guests, redisCache, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(ctx, consumer)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown summary worker")
}

type SummaryWorker struct {
	cfg    *config.Config
	plans  *mongoadapter.PlanRepository
	guests *mongoadapter.GuestRepository
	cache  *redisadapter.Cache
	logger observability.Logger
}

func NewSummaryWorker(cfg *config.Config, plans *mongoadapter.PlanRepository, guests *mongoadapter.GuestRepository, cache *redisadapter.Cache, logger observability.Logger) *SummaryWorker {
	return &SummaryWorker{cfg: cfg, plans: plans, guests: guests, cache: cache, logger: logger}
}

func (w *SummaryWorker) Run(ctx context.Context, consumer *rabbit.Consumer) {
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		w.logger.Error("failed to start consuming", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.refreshWithRetry(ctx); err != nil {
				w.logger.Error("failed to refresh summary after retries", err)
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}

func (w *SummaryWorker) refreshWithRetry(ctx context.Context) error {
	maxRetries := 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = w.refresh(ctx); lastErr == nil {
			return nil
		}
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

func (w *SummaryWorker) refresh(ctx context.Context) error {
	plan, err := w.plans.Get(ctx, w.cfg.PlanSlug)
	if errors.Is(err, domain.ErrNotFound) {
		// Nothing to summarize until the plan is first created.
		return nil
	}
	if err != nil {
		return err
	}
	guests, err := w.guests.List(ctx)
	if err != nil {
		return err
	}

	stats := seating.ComputeStats(plan, guests)
	return w.cache.SetSummary(ctx, w.cfg.PlanSlug, stats, time.Hour)
}
