package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ridi-pay/internal/config"
	"ridi-pay/internal/domain"
	pg "ridi-pay/internal/infra/db/postgres"
	"ridi-pay/internal/infra/logging"
	red "ridi-pay/internal/infra/redis"
	"ridi-pay/internal/infra/security"
	"ridi-pay/internal/usecase"
)

var (
	partnerName     = flag.String("name", "", "partner name")
	partnerPassword = flag.String("password", "", "partner admin password")
	firstParty      = flag.Bool("first-party", false, "mark the partner as a RIDI service")
)

// seed registers a partner and prints its credentials once.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *partnerName == "" || *partnerPassword == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -config config.yaml -name <partner> -password <password> [-first-party]")
		os.Exit(2)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	vault, err := security.NewSecretBox(cfg.Security.PartnerSecretKey)
	if err != nil {
		log.Fatalf("partner vault: %v", err)
	}

	abuse := usecase.NewAbuseBlocker(red.NewAbuseStore(redisClient), time.Now, logger)
	partnerUC := usecase.NewPartnerUseCase(
		pg.NewPartnerRepo(pool),
		vault,
		security.NewBcryptHasher(cfg.Security.BcryptCost),
		abuse,
		usecase.PasswordEntryPolicy,
		logger,
	)

	p, secret, err := partnerUC.Register(ctx, *partnerName, *partnerPassword, *firstParty)
	if errors.Is(err, domain.ErrPartnerAlreadyExists) {
		fmt.Printf("partner %q already present. No changes.\n", *partnerName)
		return
	}
	if err != nil {
		log.Fatalf("register partner: %v", err)
	}

	fmt.Printf("partner registered: %s (first_party=%v)\n", p.Name, p.IsFirstParty)
	fmt.Printf("  Api-Key:    %s\n", p.APIKey)
	fmt.Printf("  Secret-Key: %s\n", secret)
	fmt.Println("The secret key is shown only once.")
}
