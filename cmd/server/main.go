package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/foodmarket/provision-backend/config"
	"github.com/foodmarket/provision-backend/internal/app/controller"
	"github.com/foodmarket/provision-backend/internal/app/provision"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/app/repository/docstore"
	"github.com/foodmarket/provision-backend/internal/app/service"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/foodmarket/provision-backend/internal/router"
	"github.com/foodmarket/provision-backend/internal/scheduler"
	"github.com/foodmarket/provision-backend/internal/storage"
	"github.com/foodmarket/provision-backend/internal/websocket"
	"github.com/foodmarket/provision-backend/pkg/firebase"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/redis"
)

// stores groups the repositories of the selected backend.
type stores struct {
	staff      repository.StaffRepository
	customers  repository.CustomerRepository
	products   repository.ProductRepository
	provisions repository.ProvisionRepository
	ledger     repository.Ledger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting provisioning backend server", map[string]interface{}{
		"environment":   cfg.Server.Environment,
		"port":          cfg.Server.Port,
		"store_driver":  cfg.Store.Driver,
		"auth_provider": cfg.Auth.Provider,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firebase clients are only created when a feature needs them
	var fb *firebase.Clients
	if cfg.Store.Driver == "firestore" || cfg.Auth.Provider == "firebase" {
		fb, err = firebase.Init(ctx, &cfg.Firebase, cfg.Store.Driver == "firestore", cfg.Auth.Provider == "firebase")
		if err != nil {
			logger.Fatal("Failed to initialize firebase", err)
		}
		defer fb.Close()
	}

	var repos stores
	switch cfg.Store.Driver {
	case "firestore":
		repos = stores{
			staff:      docstore.NewStaffRepository(fb.Firestore),
			customers:  docstore.NewCustomerRepository(fb.Firestore),
			products:   docstore.NewProductRepository(fb.Firestore),
			provisions: docstore.NewProvisionRepository(fb.Firestore),
			ledger:     docstore.NewLedger(fb.Firestore),
		}
	default:
		if err := db.Initialize(&cfg.Database); err != nil {
			logger.Fatal("Failed to initialize database", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}()
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to run migrations", err)
		}
		conn := db.GetDB()
		repos = stores{
			staff:      repository.NewStaffRepository(conn),
			customers:  repository.NewCustomerRepository(conn),
			products:   repository.NewProductRepository(conn),
			provisions: repository.NewProvisionRepository(conn),
			ledger:     repository.NewLedger(conn),
		}
	}

	// Held carts live in Redis when configured, otherwise in memory
	var holdBackend provision.HoldBackend = provision.NewMemoryHoldBackend()
	if cfg.Redis.Host != "" {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize redis", err)
		}
		defer redis.Close()
		holdBackend = redis.NewHoldBackend(redis.GetClient())
	} else {
		logger.Warn("REDIS_HOST is empty, held carts will not survive a restart", nil)
	}

	loc := cfg.Provision.Location()
	holds := provision.NewHoldStore(holdBackend, cfg.Provision.HoldKeyPrefix)
	catalog := provision.NewCatalog(repos.products)

	registry := provision.NewRegistry(provision.Dependencies{
		Customers: repos.customers,
		Catalog:   catalog,
		Holds:     holds,
		Ledger:    repos.ledger,
	}, provision.Options{
		PointCap:    cfg.Provision.PointCap,
		MaxQuantity: cfg.Provision.MaxQuantity,
		Clock:       func() time.Time { return time.Now().In(loc) },
	})

	hub := websocket.NewHub(registry.View)
	registry.SetObserver(hub)
	go hub.Run(ctx)

	// Initialize services
	passwords := cfg.Auth.Provider == "jwt"
	authService := service.NewAuthService(
		repos.staff,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		passwords,
	)
	customerService := service.NewCustomerService(repos.customers)
	productService := service.NewProductService(repos.products, catalog)
	provisionService := service.NewProvisionService(repos.provisions, loc)
	statsService := service.NewStatsService(repos.customers, repos.provisions, loc, nil)
	reportService := service.NewReportService(repos.provisions, loc)

	// Report archiving is optional
	var (
		archiveUploader controller.ObjectUploader
		reportUploader  scheduler.ReportUploader
	)
	if cfg.S3.Bucket != "" {
		s3Storage := storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
		archiveUploader = s3Storage
		reportUploader = s3Storage
	}

	// Initialize middleware
	var verifier middleware.TokenVerifier = middleware.NewJWTVerifier(cfg.JWT.Secret)
	if cfg.Auth.Provider == "firebase" {
		verifier = middleware.NewFirebaseVerifier(fb.Auth, repos.staff)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	sched := scheduler.NewProvisionScheduler(holds, reportService, reportUploader, scheduler.Options{
		HoldSweepSpec: cfg.Scheduler.HoldSweepSpec,
		ReportSpec:    cfg.Scheduler.ReportSpec,
		HoldMaxAge:    cfg.Provision.HoldMaxAge,
		Location:      loc,
		Sessions:      registry,
	})
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer sched.Stop()

	// Setup router
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewSessionController(registry, hub, cfg.CORS.AllowedOrigins),
		controller.NewCustomerController(customerService),
		controller.NewProductController(productService),
		controller.NewProvisionController(provisionService),
		controller.NewStatsController(statsService, reportService),
		controller.NewArchiveController(reportService, archiveUploader),
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
