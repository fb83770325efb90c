package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/rogerio-castellano/inventory-dashboard/internal/alerts"
	"github.com/rogerio-castellano/inventory-dashboard/internal/auth"
	"github.com/rogerio-castellano/inventory-dashboard/internal/config"
	"github.com/rogerio-castellano/inventory-dashboard/internal/db"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-dashboard/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/rogerio-castellano/inventory-dashboard/internal/redissvc"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

// @title Inventory Dashboard API
// @version 1.0
// @description REST API for managing categories and products, with live dashboard metrics.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	obs.InitLogger(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("❌ invalid configuration", "err", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	var (
		products   repo.ProductRepository
		categories repo.CategoryRepository
		users      repo.UserRepository
		closers    []func() error
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			obs.Logger.Error("❌ could not connect to database", "err", err)
			os.Exit(1)
		}
		if err := db.Migrate(database); err != nil {
			obs.Logger.Error("❌ could not migrate database", "err", err)
			os.Exit(1)
		}
		closers = append(closers, database.Close)
		products = repo.NewPostgresProductRepository(database)
		categories = repo.NewPostgresCategoryRepository(database)
		users = repo.NewPostgresUserRepository(database)
	default:
		memCategories := repo.NewInMemoryCategoryRepository()
		categories = memCategories
		products = repo.NewInMemoryProductRepository(memCategories)
		users = repo.NewInMemoryUserRepository()
	}

	var (
		sessionStore auth.SessionStore = auth.NewMemorySessionStore()
		bus          live.Bus          = live.NewMemoryBus(64)
		alertLog     alerts.Log        = alerts.NewMemoryLog()
	)
	if cfg.RedisAddr != "" {
		rs, err := redissvc.Connect(cfg.RedisAddr)
		if err != nil {
			obs.Logger.Error("❌ could not connect to redis", "err", err)
			os.Exit(1)
		}
		closers = append(closers, rs.Close)
		sessionStore = auth.NewRedisSessionStore(rs.Rdb())
		bus = live.NewRedisBus(rs.Rdb())
		alertLog = alerts.NewRedisLog(rs.Rdb())
	}

	manager := auth.NewManager(users, sessionStore, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	if cfg.Auth.AdminPassword != "" {
		_, err := manager.Register(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, models.RoleAdmin)
		if err != nil && !errors.Is(err, repo.ErrDuplicatedValueUnique) {
			obs.Logger.Error("❌ could not create admin user", "err", err)
			os.Exit(1)
		}
	}

	var mailer alerts.Mailer
	if cfg.SMTP.Enabled() {
		mailer = alerts.NewSMTPMailer(cfg.SMTP)
	}
	notifier := alerts.NewNotifier(alertLog, mailer, cfg.Inventory.LowStockThreshold)
	hub := live.NewHub(4)
	store := repo.NewRecordStore(products, categories)
	clock := func() time.Time { return time.Now().In(loc) }
	refresher := live.NewRefresher(bus, store, hub, cfg.Inventory.LowStockThreshold, clock)

	handlers.SetProductRepo(products)
	handlers.SetCategoryRepo(categories)
	handlers.SetUserRepo(users)
	handlers.SetSessionManager(manager)
	handlers.SetBus(bus)
	handlers.SetHub(hub)
	handlers.SetNotifier(notifier)
	handlers.SetSettings(handlers.Settings{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		PageSize:          cfg.Inventory.PageSize,
		CurrencySymbol:    cfg.Inventory.CurrencySymbol,
		Location:          loc,
	})
	mw.SetSessionManager(manager)
	mw.SetRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	bg, stopBackground := context.WithCancel(context.Background())
	go mw.StartVisitorCleanupLoop(bg)
	go notifier.StartDailyDigest(bg, loc)
	go func() {
		if err := refresher.Run(bg); err != nil {
			obs.Logger.Error("refresher exited", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		obs.Logger.Info("✅ server running", "addr", cfg.HTTP.Addr, "storage", cfg.Storage, "redis", cfg.RedisAddr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.HTTP.ShutdownTimeout, map[string]gfshutdown.Operation{
		"inventory-dashboard": func(ctx context.Context) error {
			stopBackground()
			err := srv.Shutdown(ctx)
			// Stores close after in-flight requests have drained.
			for _, closeFn := range closers {
				err = errors.Join(err, closeFn())
			}
			return err
		},
	})

	exitCode := <-wait
	obs.Logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}
