package main

import (
	"context"
	"log"
	"os"

	"github.com/teamboard/popcache/internal/app/bootstrap"
)

// The worker binary carries the periodic jobs (score decay, daily membership
// rebuild) so they run exactly once per deployment instead of once per API
// replica.
func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, configPath())
	if err != nil {
		log.Fatalf("bootstrap worker runtime: %v", err)
	}
	if err := runtime.RunWorker(ctx); err != nil {
		log.Fatalf("run worker: %v", err)
	}
}

func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if path := os.Getenv("POPCACHE_CONFIG"); path != "" {
		return path
	}
	return "configs/default.yaml"
}
