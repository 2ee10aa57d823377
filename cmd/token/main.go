// Command token prints a bearer token for the HTTP API.
//
// Flags:
//
//	-subject      token subject (default "cli")
//
// Requires server.auth_secret (SERVER_AUTH_SECRET) to be set.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/heartmarshall/lexicon/internal/auth"
	"github.com/heartmarshall/lexicon/internal/config"
)

func main() {
	subjectFlag := flag.String("subject", "cli", "token subject")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Server.AuthEnabled() {
		log.Fatal("server.auth_secret is not set; the API does not require tokens")
	}

	token, err := auth.NewJWTManager(cfg.Server.AuthSecret, cfg.Server.AuthIssuer, cfg.Server.TokenTTL).
		GenerateToken(*subjectFlag)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
