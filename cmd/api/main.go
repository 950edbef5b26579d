// server/cmd/api/main.go
package main

import (
	"log"

	"delivery-ops-api-server/config"
	"delivery-ops-api-server/internal/api/routes"
	"delivery-ops-api-server/internal/database"
	"delivery-ops-api-server/internal/socket"
	"delivery-ops-api-server/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env (optional) and configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// 2. Connect MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 3. Indexes and bootstrap account
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	if err := database.SeedSuperAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}

	// 4. Media store for proof-of-delivery uploads
	var media storage.MediaStore
	if cfg.Storage.Driver == "s3" {
		media, err = storage.NewS3Store(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
	} else {
		media, err = storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatalf("Failed to create local media store: %v", err)
		}
	}

	// 5. WebSocket hub for the live location feed
	wsHub := socket.NewHub()

	// 6. Router
	router := routes.SetupRouter(cfg, db, media, wsHub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
