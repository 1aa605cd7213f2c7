package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/scripter/pkg/adapters/file"
	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/aretw0/scripter/pkg/adapters/redis"
	"github.com/aretw0/scripter/pkg/persistence/middleware"
	"github.com/aretw0/scripter/pkg/ports"
	"github.com/spf13/cobra"
)

// runStore opens run history: Redis when --redis is set, a directory when
// --history-dir is set, memory otherwise. Saved error messages are scrubbed
// of credentials. The returned close function is never nil.
func runStore(cmd *cobra.Command) (ports.RunStore, ports.Locker, func() error, error) {
	addr, _ := cmd.Flags().GetString("redis")
	dir, _ := cmd.Flags().GetString("history-dir")
	redact := middleware.NewRedactMiddleware(middleware.DefaultSecretPatterns)
	noop := func() error { return nil }

	switch {
	case addr != "":
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		ttl, _ := cmd.Flags().GetDuration("history-ttl")

		store := redis.New(addr, password, db, redis.WithTTL(ttl))
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		locker := redis.NewLocker(store.Client(), "scripter:")
		return middleware.Chain(store, redact), locker, store.Close, nil
	case dir != "":
		return middleware.Chain(file.New(dir), redact), nil, noop, nil
	}
	return middleware.Chain(memory.NewStore(), redact), nil, noop, nil
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis", "", "Redis address for run history (e.g. localhost:6379)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("history-ttl", 7*24*time.Hour, "How long run records are kept in Redis")
	cmd.Flags().String("history-dir", "", "Directory for run history as JSON files (e.g. "+file.DefaultDir+")")
}
