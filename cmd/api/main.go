package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/internal/config"
	"github.com/iamasit07/game-records/internal/logging"
	"github.com/iamasit07/game-records/internal/repository/memory"
	"github.com/iamasit07/game-records/internal/repository/mongo"
	"github.com/iamasit07/game-records/internal/repository/postgres"
	"github.com/iamasit07/game-records/internal/repository/redis"
	"github.com/iamasit07/game-records/internal/service/game"
	"github.com/iamasit07/game-records/internal/service/user"
	transportHttp "github.com/iamasit07/game-records/internal/transport/http"
	"github.com/iamasit07/game-records/pkg/auth"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// stores groups the repositories of the selected driver.
type stores struct {
	games game.GameRepository
	users interface {
		game.UserRepository
		user.UserRepository
	}
	close func()
}

func openStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			games: mongo.NewGameRepo(db),
			users: mongo.NewUserRepo(db),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return &stores{games: memory.NewGameRepo(), users: memory.NewUserRepo(), close: func() {}}, nil

	default:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			return nil, err
		}

		log.Info("running database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			games: postgres.NewGameRepo(db),
			users: postgres.NewUserRepo(db),
			close: func() { _ = db.Close() },
		}, nil
	}
}

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug("no .env file found")
	}
	gin.SetMode(cfg.GinMode)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	st, err := openStores(startCtx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}
	defer st.close()
	logger.WithField("driver", cfg.StoreDriver).Info("store ready")

	// the report cache is optional
	var cache game.CacheRepository
	if client := redis.Connect(startCtx, redis.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword}, logger); client != nil {
		redisCache := redis.NewRedisCache(client)
		defer redisCache.Close()
		cache = redisCache
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	gameService := game.NewService(st.games, st.users, cache, cfg.CacheTTL, logger)
	userService := user.NewService(st.users, tokens, logger)

	router := transportHttp.NewRouter(
		transportHttp.RouterConfig{AllowedOrigins: cfg.AllowedOrigins, Tokens: tokens, Logger: logger},
		transportHttp.NewGameHandler(gameService),
		transportHttp.NewAuthHandler(userService, cfg.AccessTokenTTL, cfg.Production()),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited gracefully")
}
