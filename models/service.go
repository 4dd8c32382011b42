package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service categories
var ServiceCategories = []string{
	"relaxation", "therapeutic", "sports", "specialized",
	"alternative", "luxury", "general",
}

// Service represents one treatment offered by the clinic. Order controls
// the position on the public listing, lower first.
type Service struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Duration    string              `bson:"duration" json:"duration"`
	Price       string              `bson:"price" json:"price"`
	Description string              `bson:"description" json:"description"`
	Benefits    []string            `bson:"benefits,omitempty" json:"benefits"`
	Category    string              `bson:"category" json:"category"`
	SuitableFor string              `bson:"suitable_for,omitempty" json:"suitableFor"`
	IsActive    bool                `bson:"is_active" json:"isActive"`
	Order       int                 `bson:"order" json:"order"`
	CreatedBy   *primitive.ObjectID `bson:"created_by,omitempty" json:"-"`
	Creator     *AuthorRef          `bson:"-" json:"createdBy,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// IsValidServiceCategory reports whether c is an allowed service category
func IsValidServiceCategory(c string) bool {
	for _, v := range ServiceCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ServiceStats summarizes the service collection for the admin dashboard
type ServiceStats struct {
	Total         int64             `json:"total"`
	Active        int64             `json:"active"`
	Inactive      int64             `json:"inactive"`
	CategoryStats []*CategoryCount  `json:"categoryStats"`
	Recent        []*ServiceSummary `json:"recentServices"`
}

// ServiceSummary is a trimmed service projection used in stats responses
type ServiceSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Category  string             `bson:"category" json:"category"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
