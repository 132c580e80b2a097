package main

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/chaincampus/warden/adapters/events"
	"github.com/chaincampus/warden/adapters/ledger"
	"github.com/chaincampus/warden/adapters/postgres"
	"github.com/chaincampus/warden/adapters/store"
	"github.com/chaincampus/warden/adapters/tokenizer"
	"github.com/chaincampus/warden/config"
	"github.com/chaincampus/warden/ports"
	"github.com/chaincampus/warden/service"
	"github.com/chaincampus/warden/transport/http"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var (
		denylist   ports.DenylistStore
		nonceStore ports.NonceStore
		eventPub   ports.EventPublisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to parse REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("failed to create event publisher: %v", err)
		}

		redisStore := store.NewRedisStore(redisClient)
		denylist, nonceStore = redisStore, redisStore
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		// Single-process fallback for local development.
		log.Println("REDIS_URL not set, using in-memory stores")
		memStore := store.NewMemoryStore()
		denylist, nonceStore = memStore, memStore
	}

	var (
		identities  ports.IdentityRepository
		catalog     ports.CatalogRepository
		enrollments ports.EnrollmentRepository
	)

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()

		identities = postgres.NewIdentityRepository(pool)
		catalog = postgres.NewCatalogRepository(pool)
		enrollments = postgres.NewEnrollmentRepository(pool)
	} else {
		log.Println("DATABASE_URL not set, using in-memory repositories")
		identities = store.NewMemoryIdentityRepository()
		catalog = store.NewMemoryCatalogRepository()
		enrollments = store.NewMemoryEnrollmentRepository()
	}

	tok := tokenizer.NewJWTTokenizer(
		[]byte(cfg.SignerKey),
		cfg.TokenIssuer,
		cfg.TokenValidDuration,
		cfg.TokenRefreshableDuration,
	)
	indexer := ledger.NewIndexerClient(cfg.IndexerBaseURL, cfg.IndexerProjectID)

	nonceService := service.NewNonceService(nonceStore)
	authService := service.NewAuthService(identities, nonceService, tok, denylist, eventPub)
	identityService := service.NewIdentityService(identities)
	enrollmentService := service.NewEnrollmentService(identities, catalog, enrollments, indexer, eventPub, cfg.PaymentBaseUnit)

	router := http.NewRouter(
		http.NewHandlers(authService, nonceService, identityService, enrollmentService),
		authService,
	)

	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
