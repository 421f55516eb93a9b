package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"anonpair/backend/internal/api/handler"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
	"anonpair/backend/internal/match"
	"anonpair/backend/internal/mediagroup"
	"anonpair/backend/internal/ratelimit"
	"anonpair/backend/internal/relay"
	"anonpair/backend/internal/storage"
	"anonpair/backend/internal/telegram"
)

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBType {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_TYPE %q", cfg.DBType)
	}
}

// buildLimiter prefers the shared Redis store when configured so several bot
// instances see one rate-limit state; otherwise limits are kept in-process.
func buildLimiter(cfg config.Config) ratelimit.Gate {
	if cfg.RedisAddr == "" {
		return ratelimit.NewLimiter(config.RateLimitMessages, config.RateLimitWindow, config.MuteDuration)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("WARN: Redis unreachable (%v), falling back to in-process rate limiting", err)
		return ratelimit.NewLimiter(config.RateLimitMessages, config.RateLimitWindow, config.MuteDuration)
	}

	log.Println("Rate limiting backed by Redis")
	return ratelimit.NewRedisLimiter(rdb, config.RateLimitMessages, config.RateLimitWindow, config.MuteDuration)
}

func main() {
	log.Println("Starting AnonPair backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}
	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	store, err := storage.NewService(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database connection established, migrations complete.")

	localizer, err := localization.NewLocalizer("internal/localization/locales")
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to connect Telegram: %v", err)
	}

	sender := telegram.NewSender(bot)
	aggregator := mediagroup.NewAggregator(store, sender, config.MediaGroupFlushDelay)
	engine := match.NewEngine(store)
	rly := relay.New(store, sender, engine, aggregator, config.BadWords)
	gate := buildLimiter(cfg)

	botService := telegram.NewBotService(bot, store, engine, rly, gate, localizer, cfg)
	go botService.Run()

	r := gin.Default()
	h := handler.NewHandler(store, cfg.JWTSecret)
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Fatal(server.ListenAndServe())
}
