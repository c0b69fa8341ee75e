// Package bootstrap wires up runtime dependencies for the command binaries.
package bootstrap

import (
	"fmt"

	"savornshare/internal/cache"
	"savornshare/internal/config"
	"savornshare/internal/database"
	"savornshare/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo  bool
	SeedUsers int
	SeedPosts int
}

// InitRuntime connects to DB and Redis and optionally seeds demo content.
// The Redis client may be nil when the server is unreachable; callers must
// tolerate that.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if cfg.IsProduction() {
			return nil, nil, fmt.Errorf("refusing to seed demo data in production")
		}
		if err := seed.Run(db, seed.Options{
			NumUsers: opts.SeedUsers,
			NumPosts: opts.SeedPosts,
		}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
