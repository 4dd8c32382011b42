package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gallery image categories
var GalleryCategories = []string{"general", "clinic", "treatments", "equipment"}

// GalleryImage represents one stored photo. Filename is the generated
// storage filename and is the durable pointer into the upload directory;
// OriginalName is kept for display only.
type GalleryImage struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Filename     string              `bson:"filename" json:"filename"`
	OriginalName string              `bson:"original_name" json:"originalName"`
	Description  string              `bson:"description" json:"description"`
	Category     string              `bson:"category" json:"category"`
	Size         int64               `bson:"size" json:"size"`
	MimeType     string              `bson:"mime_type" json:"mimeType"`
	UploadedBy   *primitive.ObjectID `bson:"uploaded_by,omitempty" json:"-"`
	Uploader     *AuthorRef          `bson:"-" json:"uploadedBy,omitempty"`
	UploadedAt   time.Time           `bson:"uploaded_at" json:"uploadedAt"`
	IsVisible    bool                `bson:"is_visible" json:"isVisible"`
}

// IsValidGalleryCategory reports whether c is an allowed gallery category
func IsValidGalleryCategory(c string) bool {
	for _, v := range GalleryCategories {
		if v == c {
			return true
		}
	}
	return false
}

// CategoryCount is one bucket of a category aggregation
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// GalleryStats summarizes the gallery collection for the admin dashboard
type GalleryStats struct {
	Total                int64            `json:"total"`
	Visible              int64            `json:"visible"`
	Hidden               int64            `json:"hidden"`
	TotalSize            int64            `json:"totalSize"`
	CategoryDistribution []*CategoryCount `json:"categoryDistribution"`
	Recent               []*GalleryImage  `json:"recentImages"`
}
