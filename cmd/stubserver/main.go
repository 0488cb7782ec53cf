package main

import (
	"context"
	"log"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"anoa.com/portalnoticias/internal/config"
	"anoa.com/portalnoticias/internal/stub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rdb, err := connectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	server := stub.NewServer(cfg.JWTSecret, rdb)

	if cfg.AppEnv == "development" {
		if err := server.Seed("admin", "admin123"); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		log.Println("✅ Admin user seeded successfully")
		log.Println("   Login: admin")
		log.Println("   Senha: admin123")
	}

	router := server.Router(cfg.AllowedOrigins)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// connectRedis dials the configured instance, or boots an embedded one when
// no REDIS_URL is set so the stub stays dependency-free in development.
func connectRedis(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, err
		}
		log.Printf("no REDIS_URL configured, using embedded redis at %s", mr.Addr())
		return redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
