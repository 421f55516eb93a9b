// Command admin is the operator CLI. It talks to the same database as the
// bot and covers the moderation actions that do not need Telegram: listing
// stats and reports, and managing block relations.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"anonpair/backend/internal/config"
	"anonpair/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}
	cfg := config.Load()

	var db *gorm.DB
	var err error
	switch cfg.DBType {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store, err := storage.NewService(db)
	if err != nil {
		log.Fatalf("failed to prepare storage: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "stats":
		stats, err := store.GetStats()
		if err != nil {
			log.Fatalf("Error loading stats: %v", err)
		}
		fmt.Printf("Users: %d\nActive chats: %d\nIn queue: %d\n",
			stats.TotalUsers, stats.ActiveChats, stats.InQueue)

	case "reports":
		limit := 20
		if len(os.Args) > 2 {
			limit, err = strconv.Atoi(os.Args[2])
			if err != nil || limit <= 0 {
				log.Fatal("Invalid limit. Please provide a positive integer.")
			}
		}
		reports, err := store.ListReports(limit)
		if err != nil {
			log.Fatalf("Error loading reports: %v", err)
		}
		if len(reports) == 0 {
			fmt.Println("No reports.")
			return
		}
		for _, r := range reports {
			fmt.Printf("#%d %s  %d -> %d  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.ReporterID, r.ReportedID, r.Reason)
		}

	case "block":
		blocker, blocked := parsePair(os.Args[2:], "block")
		if err := store.BlockUser(blocker, blocked); err != nil {
			log.Fatalf("Error blocking: %v", err)
		}
		fmt.Printf("User %d now blocks %d.\n", blocker, blocked)

	case "unblock":
		blocker, blocked := parsePair(os.Args[2:], "unblock")
		if err := store.UnblockUser(blocker, blocked); err != nil {
			log.Fatalf("Error unblocking: %v", err)
		}
		fmt.Printf("User %d no longer blocks %d.\n", blocker, blocked)

	default:
		usage()
	}
}

func parsePair(args []string, command string) (int64, int64) {
	if len(args) != 2 {
		fmt.Printf("Usage: admin %s <blocker_id> <blocked_id>\n", command)
		os.Exit(1)
	}
	a, errA := strconv.ParseInt(args[0], 10, 64)
	b, errB := strconv.ParseInt(args[1], 10, 64)
	if errA != nil || errB != nil {
		fmt.Println("Invalid user ID. Please provide integers.")
		os.Exit(1)
	}
	return a, b
}

func usage() {
	fmt.Println("Usage: admin <stats|reports [limit]|block <blocker> <blocked>|unblock <blocker> <blocked>>")
	os.Exit(1)
}
