package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"swms-portal/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	summary, err := database.NewCompletionLog(db).Summary(context.Background())
	if err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("COMPLETION LOG SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Completed stops:         %d\n", summary.Records)
	fmt.Printf("Drivers:                 %d\n", summary.Drivers)
	fmt.Printf("Areas:                   %d\n", summary.Areas)
	fmt.Println("============================================================")
}
