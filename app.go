package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/auth"
	"storefront/config"
	"storefront/db"
	"storefront/mailer"
	"storefront/middleware"
	"storefront/mq"
	"storefront/orders"
	"storefront/products"
	"storefront/ratelim"
	"storefront/rdx"
	"storefront/routes"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// app owns every long-lived dependency of the server.
type app struct {
	cfg         *config.Config
	log         *zap.Logger
	mongo       *db.Store
	redis       *redis.Client
	memQueue    *mq.MemoryQueue
	worker      *mq.Worker
	rateLimiter *ratelim.RateLimiter
	stopJanitor chan struct{}
	router      http.Handler
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, stopJanitor: make(chan struct{})}
	if err := a.init(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg := a.cfg

	if cfg.MongoURL != "" {
		store, err := db.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return err
		}
		a.mongo = store
		a.log.Info("connected to mongo", zap.String("db", cfg.MongoDB))
	} else {
		a.log.Warn("MONGO_URL not set; accounts and orders are kept in memory")
	}

	if cfg.RedisAddr != "" {
		client, err := rdx.Connect(ctx, rdx.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		a.redis = client
		a.log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	} else {
		a.log.Warn("REDIS_ADDR not set; using in-process notification queue")
	}

	catalog, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	a.log.Info("catalog loaded", zap.String("source", cfg.CatalogSource), zap.Int("products", catalog.Len()))

	var (
		accounts    auth.Repository
		orderRepo   orders.Repository
		revocations auth.Revocations
		queue       mq.Queue
		sink        mq.FailureSink
	)
	if a.mongo != nil {
		mr := auth.NewMongoRepository(a.mongo.Accounts)
		if err := mr.EnsureIndexes(ctx); err != nil {
			return err
		}
		or := orders.NewMongoRepository(a.mongo.Orders)
		if err := or.EnsureIndexes(ctx); err != nil {
			return err
		}
		accounts, orderRepo = mr, or
	} else {
		accounts, orderRepo = auth.NewMemoryRepository(), orders.NewMemoryRepository()
	}
	if a.redis != nil {
		revocations = auth.NewRedisRevocations(a.redis)
		queue = mq.NewRedisQueue(a.redis)
		sink = mq.NewRedisSink(a.redis, a.log)
	} else {
		a.memQueue = mq.NewMemoryQueue(0)
		revocations = auth.NewMemoryRevocations()
		queue = a.memQueue
		sink = mq.NewLogSink(a.log)
	}

	var sender mq.WelcomeSender
	if cfg.MailEnabled() {
		sender = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailFrom,
		})
	} else {
		sender = mailer.NewLogMailer(a.log)
	}

	a.worker, err = mq.NewWorker(queue, cfg.NotifyWorkers, sink, a.log)
	if err != nil {
		return err
	}
	a.worker.Handle(mq.KindWelcome, mq.WelcomeHandler(sender))
	a.worker.Start(context.Background())

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accountSvc := auth.NewService(accounts, auth.NewBcryptHasher(10), tokens, revocations, mq.NewWelcomeNotifier(queue))

	a.rateLimiter = ratelim.NewRateLimiter(cfg.RateLimitPerMinute)
	go a.rateLimiter.Run(time.Minute, a.stopJanitor)

	router := routes.RoutesWrapper(routes.Handlers{
		Auth:     auth.NewHandler(accountSvc),
		Verifier: accountSvc,
		Orders:   orders.NewHandler(orders.NewService(orderRepo, catalog), cfg.ReceiptSecret),
		Products: products.NewHandler(catalog),
	}, a.rateLimiter)

	// apply middleware: recover → logging → security headers → CORS → router
	// Tokens travel in the Authorization header, so credentialed CORS stays off.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)
	a.router = middleware.Recover(a.log)(middleware.Logging(a.log)(middleware.SecurityHeaders(corsHandler)))
	return nil
}

func (a *app) loadCatalog(ctx context.Context) (*products.Store, error) {
	switch a.cfg.CatalogSource {
	case config.CatalogFile:
		return products.LoadFile(a.cfg.CatalogPath)
	case config.CatalogMongo:
		if a.mongo == nil {
			return nil, errors.New("CATALOG_SOURCE=mongo needs MONGO_URL")
		}
		return products.LoadCollection(ctx, a.mongo.Products)
	default:
		return products.LoadEmbedded()
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	select {
	case <-a.stopJanitor:
	default:
		close(a.stopJanitor)
	}
	if a.worker != nil {
		if err := a.worker.Stop(a.cfg.ShutdownTimeout); err != nil {
			a.log.Warn("notification worker did not drain", zap.Error(err))
		}
	}
	if a.memQueue != nil {
		a.memQueue.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			a.log.Warn("close mongo", zap.Error(err))
		}
	}
}

func (a *app) server() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Port,
		Handler:           a.router,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
}

func describe(cfg *config.Config) []zap.Field {
	return []zap.Field{
		zap.String("port", cfg.Port),
		zap.Bool("dev", cfg.Dev),
		zap.Bool("mongo", cfg.MongoURL != ""),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("smtp", cfg.MailEnabled()),
		zap.String("catalog", cfg.CatalogSource),
		zap.Duration("tokenTTL", cfg.TokenTTL),
		zap.Int("workers", cfg.NotifyWorkers),
	}
}
