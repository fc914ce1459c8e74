// Command seed runs the database seeder for Shard-IT.
package main

import (
	"flag"
	"log"

	"shardit/internal/config"
	"shardit/internal/database"
	"shardit/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	itemsPerUser := flag.Int("items", 3, "Number of items per user")
	numRequests := flag.Int("requests", 60, "Number of borrow requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:     *numUsers,
		ItemsPerUser: *itemsPerUser,
		NumRequests:  *numRequests,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All seeded users have the password: password123")
}
