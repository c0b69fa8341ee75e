// Command migrate applies the schema migrations and converts legacy inline
// thumbnails into stored objects referenced by URL.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"savornshare/internal/config"
	"savornshare/internal/database"
	"savornshare/internal/media"
)

func main() {
	inline := flag.Bool("inline-thumbnails", false,
		"also migrate legacy inline thumbnail blobs to the media store")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}
	log.Println("Schema migration complete")

	if !*inline {
		return
	}

	var store media.Store
	if cfg.MediaBackend == "s3" {
		store, err = media.NewS3Store(context.Background(), cfg)
	} else {
		store, err = media.NewLocalStore(cfg.MediaUploadDir)
	}
	if err != nil {
		log.Fatalf("Media store init failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	migrated, err := database.MigrateInlineThumbnails(ctx, db, media.NewService(store))
	if err != nil {
		log.Fatalf("Inline thumbnail migration failed: %v", err)
	}
	log.Printf("Migrated %d inline thumbnails", migrated)
}
