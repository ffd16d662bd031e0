package main

import (
	"log"

	"main/internal/config"
	"main/internal/database"
	"main/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store database.StatsStore = database.StubStore{}
	if !cfg.PreviewMode {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.EnsureSchema(db); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}
		store = database.NewStore(db)
	}

	srv, err := server.New(cfg, store)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	log.Printf("Starting server on %s (preview=%t)", cfg.Addr, cfg.PreviewMode)
	if err := srv.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
