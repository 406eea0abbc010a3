// File: cmd/app/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ridi-pay/internal/config"
	"ridi-pay/internal/domain/ports/adapter"
	pgAdapters "ridi-pay/internal/infra/adapters/pg"
	"ridi-pay/internal/infra/api"
	pg "ridi-pay/internal/infra/db/postgres"
	"ridi-pay/internal/infra/logging"
	"ridi-pay/internal/infra/metrics"
	red "ridi-pay/internal/infra/redis"
	"ridi-pay/internal/infra/sched"
	"ridi-pay/internal/infra/security"
	"ridi-pay/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Crypto vault ----
	billKeyVault, err := security.NewSecretBox(cfg.Security.BillKeySecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("bill key vault")
	}
	partnerVault, err := security.NewSecretBox(cfg.Security.PartnerSecretKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("partner vault")
	}
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	methodRepo := pg.NewPaymentMethodRepo(pool)
	cardRepo := pg.NewCardRepo(pool)
	partnerRepo := pg.NewPartnerRepo(pool)
	txRepo := pg.NewTransactionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	pgRepo := pg.NewPgRepo(pool)
	issuerRepo := pg.NewCardIssuerRepoCacheDecorator(pg.NewCardIssuerRepo(pool), redisClient)

	// ---- PG gateways ----
	gateways := newGatewayRegistry(cfg, logger)

	// ---- Abuse blocker ----
	abuse := usecase.NewAbuseBlocker(red.NewAbuseStore(redisClient), time.Now, logger)
	pinPolicy := usecase.AbusePolicy{
		Type:          usecase.AbuseTypePinEntry,
		Threshold:     cfg.Abuse.PinEntryThreshold,
		BlockedPeriod: cfg.Abuse.PinEntryBlockedPeriod,
	}
	passwordPolicy := usecase.AbusePolicy{
		Type:          usecase.AbuseTypePasswordEntry,
		Threshold:     cfg.Abuse.PasswordEntryThreshold,
		BlockedPeriod: cfg.Abuse.PasswordBlockedPeriod,
	}

	// ---- Use cases ----
	cardUC := usecase.NewPaymentMethodUseCase(userRepo, methodRepo, cardRepo, issuerRepo, pgRepo, gateways, billKeyVault, tm, logger)
	txUC := usecase.NewTransactionUseCase(userRepo, txRepo, methodRepo, pgRepo, cardUC, gateways, tm, logger)
	subUC := usecase.NewSubscriptionUseCase(userRepo, subRepo, methodRepo, cardUC, txUC, tm, logger)
	userUC := usecase.NewUserUseCase(userRepo, methodRepo, hasher, abuse, pinPolicy, tm, logger)
	partnerUC := usecase.NewPartnerUseCase(partnerRepo, partnerVault, hasher, abuse, passwordPolicy, logger)

	// ---- HTTP ----
	handlers := api.NewHandlers(cardUC, userUC, subUC, txUC, partnerUC, logger)
	router := api.NewRouter(handlers, api.RouterDeps{
		Partners:       partnerUC,
		Tokens:         api.NewUserTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, time.Hour),
		Limiter:        red.NewRateLimiter(redisClient),
		CardDailyLimit: cfg.Abuse.CardRegistrationDailyLimit,
		RequestTimeout: cfg.Server.RequestTimeout,
		Health: func(r *http.Request) error {
			if err := pool.Ping(r.Context()); err != nil {
				return err
			}
			return redisClient.Ping(r.Context())
		},
	}, logger)
	server := api.NewServer(&cfg.Server, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		err := sched.NewPoolStatsSampler(cfg.Database.StatsInterval, pool, logger).Run(gctx)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("stopped")
}

func newGatewayRegistry(cfg *config.Config, logger *zerolog.Logger) *pgAdapters.Registry {
	var gw adapter.PgGateway
	if cfg.KCP.Noop {
		logger.Warn().Msg("kcp.noop is set; PG calls are simulated in-process")
		gw = pgAdapters.NewNoopGateway()
	} else {
		kcp, err := pgAdapters.NewKCPGateway(&cfg.KCP)
		if err != nil {
			logger.Fatal().Err(err).Msg("kcp gateway")
		}
		gw = kcp
	}
	return pgAdapters.NewRegistry(pgAdapters.NewInstrumentedGateway(gw, logger))
}
