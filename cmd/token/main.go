// Command token mints a bearer token for an upstream caller of the
// extraction API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/auth"
	"github.com/amrrdev/officetext/internal/config"
)

func main() {
	var (
		subject = flag.String("subject", "", "Caller identity placed in the token subject")
		ttl     = flag.Duration("ttl", 0, "Token lifetime (defaults to JWT_TOKEN_TTL)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecretKey == "" {
		logrus.Fatal("JWT_SECRET_KEY is required to mint tokens")
	}
	if *subject == "" {
		logrus.Fatal("-subject is required")
	}

	lifetime := cfg.JWTTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewService(cfg.JWTSecretKey, lifetime).Issue(*subject)
	if err != nil {
		logrus.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
