package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/circuitbreaker"
	"github.com/fjod/go_pos/internal/config"
	"github.com/fjod/go_pos/internal/email"
	h "github.com/fjod/go_pos/internal/http"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/fjod/go_pos/internal/orderlog"
	"github.com/fjod/go_pos/internal/session"
	"github.com/fjod/go_pos/internal/sheets"
	"github.com/fjod/go_pos/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("POS_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer

	kv, closeStore := newStore(cfg, lg)
	defer closeStore()

	var sources []catalog.Source
	sources = append(sources, catalog.NewFileSource(cfg.Catalog.File))

	var products h.ProductStore
	if cfg.SQLite.Enabled {
		repo, err := catalog.NewRepository(cfg.SQLite.Path)
		if err != nil {
			lg.Fatal("Failed to open product database", zap.Error(err))
		}
		if err := repo.RunMigrations(); err != nil {
			lg.Fatal("Failed to run migrations", zap.Error(err))
		}
		closers = append(closers, repo)
		sources = append(sources, repo)
		products = repo
	}

	orderLoggers := orderlog.Multi{}

	if cfg.Sheets.Enabled() {
		svc, err := sheets.NewService(ctx, sheets.Config{APIKey: cfg.Sheets.APIKey, Endpoint: cfg.Sheets.Endpoint})
		if err != nil {
			lg.Fatal("Failed to create sheets client", zap.Error(err))
		}
		sources = append(sources, catalog.NewSheetsSource(svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.ProductsRange))
		breaker := circuitbreaker.New[struct{}]("sheets-orders", cfg.Breaker, lg)
		orderLoggers = append(orderLoggers, orderlog.NewSheetsLogger(svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.OrdersRange, breaker))
		lg.Info("Google Sheets sync enabled", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	}

	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := orderlog.ConnectMongoDB(connectCtx, cfg.MongoDB.URI)
		cancel()
		if err != nil {
			lg.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				lg.Warn("mongodb disconnect failed", zap.Error(err))
			}
		}()
		orderLoggers = append(orderLoggers, orderlog.NewMongoArchive(client.Database(cfg.MongoDB.Database), cfg.MongoDB.Collection))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := orderlog.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		closers = append(closers, publisher)
		orderLoggers = append(orderLoggers, publisher)
	}

	cat := catalog.New(kv, cfg.Catalog.CacheKey, lg, sources...)
	if err := cat.Refresh(ctx); err != nil {
		lg.Warn("initial catalog load incomplete", zap.Error(err))
	}
	lg.Info("catalog loaded", zap.Int("products", len(cat.Products())))
	if cfg.Catalog.SyncInterval > 0 {
		go catalog.NewPoller(cat, cfg.Catalog.SyncInterval, lg).Run(ctx)
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		lg.Fatal("Failed to parse email templates", zap.Error(err))
	}
	var sender checkout.EmailSender
	switch cfg.Email.Driver {
	case "smtp":
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.Sender(),
			FromName: cfg.Email.FromName,
		}, renderer, circuitbreaker.New[struct{}]("smtp", cfg.Breaker, lg))
	default:
		sender = email.NewLogSender(renderer, lg)
	}

	opts := []checkout.Option{checkout.WithLogTimeout(cfg.OrderLog.Timeout)}
	if len(orderLoggers) > 0 {
		opts = append(opts, checkout.WithOrderLogger(orderLoggers))
	}
	sessions := session.NewManager(cfg.Store.CartKey, cat, kv, sender, lg, opts...)
	if cfg.Session.IdleTimeout > 0 {
		go sessions.Run(ctx, cfg.Session.IdleTimeout)
	}

	router := h.NewRouter(h.RouterConfig{
		Catalog:        cat,
		Products:       products,
		Sessions:       sessions,
		Logger:         lg,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CheckoutLimit:  rate.Limit(cfg.Checkout.RateLimit),
		CheckoutBurst:  cfg.Checkout.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("POS server starting", zap.String("addr", srv.Addr), zap.String("email_driver", cfg.Email.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	if err := sessions.Drain(shutdownCtx); err != nil {
		lg.Warn("order logging did not finish", zap.Error(err))
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			lg.Warn("close failed", zap.Error(err))
		}
	}

	lg.Info("server stopped")
}

func newStore(cfg *config.Config, lg *zap.Logger) (store.Store, func()) {
	if cfg.Store.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			lg.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		lg.Info("using redis store", zap.String("addr", cfg.Redis.Addr))
		return store.NewRedisStore(client, cfg.Store.TTL), func() { _ = client.Close() }
	}

	s := store.NewMemoryStore(cfg.Store.TTL)
	return s, s.Close
}
