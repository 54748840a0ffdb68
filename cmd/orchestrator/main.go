package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/absmach/supermq/pkg/server"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/privlens/privlens/privlensd"
)

const (
	svcName       = "orchestrator"
	defHTTPPort   = "8060"
	envPrefixHTTP = "ORCHESTRATOR_HTTP_"
	pathEnv       = ".env"
)

func main() {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := privlensd.Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		log.Fatalf("failed to load %s HTTP server configuration : %s", svcName, err.Error())
	}
	cfg.Server = httpServerConfig

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := privlensd.StartOrchestrator(ctx, cancel, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s service exited with error: %s\n", svcName, err)
		os.Exit(1)
	}
}
