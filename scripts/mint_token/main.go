package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/noah-isme/sma-cover-api/internal/service"
	"github.com/noah-isme/sma-cover-api/pkg/config"
)

// mint_token issues a bearer token for the mutating endpoints. Operators run
// it on the host where the .env with JWT_SECRET lives.
func main() {
	var (
		subject string
		ttl     time.Duration
	)

	flag.StringVar(&subject, "subject", "operator", "Token subject recorded in request logs")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}
	if ttl <= 0 {
		ttl = cfg.Auth.Expiration
	}

	token, err := service.NewTokenService(cfg.Auth.JWTSecret, ttl).Issue(subject)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
}
