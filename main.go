package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wanderlust/config"
	db "wanderlust/database"
	"wanderlust/database/memory"
	"wanderlust/events"
	"wanderlust/gcs"
	middlewares "wanderlust/middleware"
	"wanderlust/routes"
	"wanderlust/services"
	"wanderlust/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stores struct {
	listings services.ListingStore
	reviews  services.ReviewStore
	users    services.UserStore
	uow      services.UnitOfWork
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer st.close()

	uploader, err := gcs.NewUploader(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, logger)
	if err != nil {
		logger.Fatal("failed to init GCS", zap.Error(err))
	}
	defer uploader.Close()

	publisher, err := events.Connect(cfg.NatsURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom, cfg.EmailPass)

	listingService := services.NewListingService(st.listings, st.reviews, st.users, st.uow, publisher, logger)
	reviewService := services.NewReviewService(st.listings, st.reviews, st.uow, publisher, logger)
	userService := services.NewUserService(st.users, services.BcryptHasher{}, mailer, logger)

	reconciler := services.NewReconciler(st.listings, st.reviews, logger)
	scheduler, err := reconciler.Schedule(cfg.ReconcileSchedule)
	if err != nil {
		logger.Fatal("failed to schedule reconciler", zap.Error(err))
	}
	defer scheduler.Stop()

	handler := routes.NewRouter(routes.Deps{
		Listings:       listingService,
		Reviews:        reviewService,
		Users:          userService,
		Sessions:       middlewares.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies),
		Images:         uploader,
		LoginLimiter:   middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst),
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	return logger
}

// openStores connects to MongoDB, or keeps everything in memory when the URI
// uses the memory:// scheme.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if strings.HasPrefix(cfg.MongoURI, "memory://") {
		logger.Warn("using in-memory store, data is lost on restart")
		m := memory.New()
		return &stores{
			listings: m.Listings(),
			reviews:  m.Reviews(),
			users:    m.Users(),
			uow:      m,
			close:    func() {},
		}, nil
	}

	conn, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTransactions, logger)
	if err != nil {
		return nil, err
	}
	return &stores{
		listings: db.NewListingRepository(conn),
		reviews:  db.NewReviewRepository(conn),
		users:    db.NewUserRepository(conn),
		uow:      conn,
		close:    conn.Disconnect,
	}, nil
}
