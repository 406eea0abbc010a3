package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ridi-pay/internal/config"
	"ridi-pay/internal/infra/api"
	"ridi-pay/internal/infra/db/postgres"
	"ridi-pay/internal/infra/redis"
)

var uIdx = flag.Int64("u-idx", 1001, "user to mint a token for")

// This script is for setting up a clean, predictable database state
// for manual end-to-end testing. The PG and card issuer catalog is kept.
func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	// --- Connect to Postgres ---
	pool, err := postgres.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	// --- Connect to Redis ---
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	// 1. Abuse counters, rate limits and catalog cache.
	log.Println("[1/3] Wiping Redis...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	// 2. Everything but the catalog.
	log.Println("[2/3] Wiping payment data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE
			users, user_action_histories, payment_methods, cards, partners,
			transactions, transaction_histories,
			subscriptions, subscription_payment_method_histories
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// 3. A first-party token, as the account service would issue it.
	log.Println("[3/3] Minting user token...")
	tokens := api.NewUserTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 24*time.Hour)
	tok, err := tokens.Mint(*uIdx)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Printf("export RIDI_PAY_USER_TOKEN=%s  # u_idx=%d\n", tok, *uIdx)

	log.Println("--- E2E Environment Setup Complete; register a partner with cmd/seed ---")
}
