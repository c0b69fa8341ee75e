package models

import (
	"time"
)

// Categories is the fixed set of recipe categories a post may belong to.
var Categories = []string{
	"Deserts", "Healthy", "Indian", "Italian", "Vegan", "Easy", "Uncategorized", "Baking",
}

// IsValidCategory reports whether category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Post represents a recipe post. CreatorID is immutable after creation and
// only the creator may edit or delete the post.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Category    string    `gorm:"not null;index" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatorID   uint      `gorm:"not null;index" json:"creator"`
	Creator     *User     `gorm:"foreignKey:CreatorID" json:"-"`
	ImageURL    string    `gorm:"not null" json:"imageURL"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
