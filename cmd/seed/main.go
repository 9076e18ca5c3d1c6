// Command seed populates the database with development data.
package main

import (
	"flag"
	"log"

	"studymesh/internal/config"
	"studymesh/internal/database"
	"studymesh/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.NumRequests, "requests", opts.NumRequests, "Number of connection requests to create")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Clean database before seeding")
	flag.Float64Var(&opts.CenterLat, "lat", opts.CenterLat, "Campus center latitude")
	flag.Float64Var(&opts.CenterLng, "lng", opts.CenterLng, "Campus center longitude")
	flag.Float64Var(&opts.SpreadKm, "spread", opts.SpreadKm, "Scatter radius in kilometers")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.NewSeeder(db).Seed(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All seeded users have the password: password123")
}
