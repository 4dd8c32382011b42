package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article represents a blog-style content entry on the public site.
// Image holds the generated storage filename of the cover image, not the
// original upload name.
type Article struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Content     string              `bson:"content" json:"content"`
	Image       string              `bson:"image,omitempty" json:"image,omitempty"`
	AuthorID    *primitive.ObjectID `bson:"author,omitempty" json:"-"`
	Author      *AuthorRef          `bson:"-" json:"author,omitempty"`
	IsPublished bool                `bson:"is_published" json:"isPublished"`
	Tags        []string            `bson:"tags,omitempty" json:"tags"`
	Views       int64               `bson:"views" json:"views"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// AuthorRef is the public projection of the user who created a record
type AuthorRef struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// ArticleStats summarizes the article collection for the admin dashboard
type ArticleStats struct {
	Total      int64             `json:"total"`
	Published  int64             `json:"published"`
	Drafts     int64             `json:"drafts"`
	TotalViews int64             `json:"totalViews"`
	Popular    []*ArticleSummary `json:"popularArticles"`
}

// ArticleSummary is a trimmed article projection used in stats responses
type ArticleSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Views     int64              `bson:"views" json:"views"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
