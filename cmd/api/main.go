package main

import (
	"context"
	"log"
	"os"

	"github.com/teamboard/popcache/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, configPath())
	if err != nil {
		log.Fatalf("bootstrap api runtime: %v", err)
	}
	if err := runtime.RunAPI(ctx); err != nil {
		log.Fatalf("run api: %v", err)
	}
}

// configPath resolves the config file from the first argument, then the
// environment, then the repo-local default used for development runs.
func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if path := os.Getenv("POPCACHE_CONFIG"); path != "" {
		return path
	}
	return "configs/default.yaml"
}
