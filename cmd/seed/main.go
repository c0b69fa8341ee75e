// Command seed fills a development database with demo users and posts.
package main

import (
	"flag"
	"log"

	"savornshare/internal/bootstrap"
	"savornshare/internal/config"
)

func main() {
	users := flag.Int("users", 10, "number of demo users to create")
	posts := flag.Int("posts", 40, "number of demo posts to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemo:  true,
		SeedUsers: *users,
		SeedPosts: *posts,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done")
}
