package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedCity struct {
	name string
	lat  float64
	lon  float64
}

var seedCities = []seedCity{
	{"Moscow", 55.7558, 37.6173},
	{"Saint Petersburg", 59.9343, 30.3351},
	{"Kazan", 55.7963, 49.1088},
	{"Novosibirsk", 55.0084, 82.9357},
	{"Sochi", 43.6028, 39.7342},
}

var seedNames = []string{
	"Anna", "Boris", "Daria", "Egor", "Elena",
	"Ivan", "Ksenia", "Maxim", "Olga", "Pavel",
	"Sofia", "Timur", "Vera", "Yuri", "Zoya",
	"Nikita", "Marina", "Oleg", "Polina", "Artem",
}

// SeedTestData resets the database and populates it with demo clients
// and likes.
//
// Behavior:
//  1. Clears existing data in `clients` and `likes` tables.
//  2. Creates 20 clients spread across real cities (with coordinates)
//     so distance filtering has something to chew on.
//  3. Generates a spread of likes, with every 3rd pair made mutual.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	if err := db.Exec("DELETE FROM likes").Error; err != nil {
		return fmt.Errorf("failed to clear likes: %w", err)
	}
	if err := db.Exec("DELETE FROM clients").Error; err != nil {
		return fmt.Errorf("failed to clear clients: %w", err)
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE likes AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE clients AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'likes'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'clients'")
	}

	log.Println("Cleared existing data")

	// --- Seed Clients ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i, name := range seedNames {
		city := seedCities[i%len(seedCities)]
		// jitter inside the city so distances are not all identical
		lat := city.lat + (r.Float64()-0.5)*0.05
		lon := city.lon + (r.Float64()-0.5)*0.05

		gender := GenderFemale
		if i%2 == 0 {
			gender = GenderMale
		}

		client := Client{
			Name:         name,
			Surname:      fmt.Sprintf("%sova", name),
			Email:        fmt.Sprintf("client%d@example.com", i+1),
			Gender:       gender,
			PasswordHash: string(hash),
			Latitude:     &lat,
			Longitude:    &lon,
			Active:       true,
		}
		if err := db.Create(&client).Error; err != nil {
			return fmt.Errorf("failed to seed client: %w", err)
		}
	}
	log.Printf("Seeded %d clients.", len(seedNames))

	// --- Seed Likes ---
	counter := 0
	total := uint64(len(seedNames))
	for likerID := uint64(1); likerID <= total; likerID++ {
		for j := 0; j < 4; j++ {
			likeeID := uint64(r.Intn(len(seedNames)) + 1)
			if likerID == likeeID {
				continue
			}

			like := Like{LikerID: likerID, LikeeID: likeeID}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				recip := Like{LikerID: likeeID, LikeeID: likerID}
				db.Clauses(clause.OnConflict{DoNothing: true}).Create(&recip)
			}
			counter++
		}
	}
	log.Printf("Seeded likes for %d clients.", total)

	return nil
}
