// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"savornshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Run populates the database with demo users and posts. Every seeded user
// logs in with the password "password123".
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		if err := db.Exec("DELETE FROM posts").Error; err != nil {
			return fmt.Errorf("clean posts: %w", err)
		}
		if err := db.Exec("DELETE FROM users").Error; err != nil {
			return fmt.Errorf("clean users: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		name := gofakeit.Name()
		user := &models.User{
			Name:         name,
			Email:        uniqueEmail(name, i),
			Password:     string(hashed),
			ProfileImage: models.DefaultAvatarURL,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	if len(users) == 0 {
		return nil
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Title:       recipeTitle(),
			Category:    models.Categories[rand.Intn(len(models.Categories))],
			Description: recipeDescription(),
			CreatorID:   author.ID,
			ImageURL:    models.DefaultAvatarURL,
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
		if err := db.Model(&models.User{}).Where("id = ?", author.ID).
			Update("posts", gorm.Expr("posts + 1")).Error; err != nil {
			return fmt.Errorf("bump post count: %w", err)
		}
	}
	log.Printf("Seeded %d posts", opts.NumPosts)

	return nil
}

func uniqueEmail(name string, n int) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s.%d@example.com", local, n)
}

func recipeTitle() string {
	switch rand.Intn(3) {
	case 0:
		return gofakeit.Dinner()
	case 1:
		return gofakeit.Dessert()
	default:
		return gofakeit.Lunch()
	}
}

func recipeDescription() string {
	// At least two sentences so seeded posts clear the description floor.
	return gofakeit.Sentence(12) + " " + gofakeit.Sentence(10)
}
