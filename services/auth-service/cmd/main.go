package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/shop-it-api/shared/auth"
	"github.com/vasapolrittideah/shop-it-api/shared/logger"
	"github.com/vasapolrittideah/shop-it-api/shared/mailer"
	"github.com/vasapolrittideah/shop-it-api/shared/security"
	"github.com/vasapolrittideah/shop-it-api/shared/validator"
)

func main() {
	bootLogger := logger.New(os.Getenv("APP_ENV"), "info")

	authServiceCfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(authServiceCfg.Environment, authServiceCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db := connectMongo(ctx, log, authServiceCfg.Mongo)
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), authServiceCfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	userRepo := repository.NewUserMongoRepository(ctx, log, db)
	otpRepo := repository.NewOTPMongoRepository(ctx, log, db)
	refreshRepo := repository.NewRefreshTokenMongoRepository(ctx, log, db)

	hasher := security.NewArgon2Hasher(authServiceCfg.Argon2)
	jwtAuth := auth.NewJWTAuthenticator(authServiceCfg.Token.Audience, authServiceCfg.Token.Issuer)
	emailSender := mailer.NewMailer(log)

	otpUsecase := usecase.NewOTPUsecase(log, userRepo, otpRepo, hasher, emailSender, authServiceCfg)
	authUsecase := usecase.NewAuthUsecase(log, userRepo, otpRepo, refreshRepo, hasher, jwtAuth, authServiceCfg)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		log, userRepo, otpRepo, refreshRepo, otpUsecase, hasher, emailSender,
	)

	requestValidator, err := validator.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create request validator")
	}

	authHandler := handler.NewAuthHandler(
		log, otpUsecase, authUsecase, passwordResetUsecase, requestValidator, jwtAuth, authServiceCfg,
	)

	server := &http.Server{
		Addr:              authServiceCfg.HTTPAddr,
		Handler:           handler.NewRouter(log, authServiceCfg, authHandler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("auth service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), authServiceCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server gracefully")
	}

	log.Info().Msg("auth service stopped")
}

func connectMongo(ctx context.Context, log *zerolog.Logger, cfg config.MongoConfig) (*mongo.Client, *mongo.Database) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create MongoDB client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	log.Info().Str("database", cfg.Database).Msg("connected to MongoDB")

	return client, client.Database(cfg.Database)
}
