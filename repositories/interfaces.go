package repositories

import (
	"context"
	"time"

	"github.com/shalevclinic/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page describes the requested slice of a list
type Page struct {
	Page  int
	Limit int
}

// Skip returns the number of records to skip for this page
func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// ArticleFilter narrows article list queries
type ArticleFilter struct {
	Search    string
	Tags      []string
	Published *bool
}

// GalleryFilter narrows gallery list queries
type GalleryFilter struct {
	Category string
	Visible  *bool
}

// ServiceFilter narrows service list queries
type ServiceFilter struct {
	Search   string
	Category string
	Active   *bool
}

// DeclarationFilter narrows health-declaration list queries
type DeclarationFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
}

// UserRepository persists user accounts
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID retrieves a user by ID with the password hash excluded
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// FindByUsername retrieves a user by username including the password
	// hash, for credential verification only
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindCredentials retrieves a user by ID including the password hash
	FindCredentials(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// UpdateLastLogin records a successful login time
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error

	// Usernames resolves the usernames for a set of user IDs
	Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// ArticleRepository persists articles
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter, page Page) ([]*models.Article, int64, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Article, error)

	// IncrementViews bumps the view counter of a published article
	IncrementViews(ctx context.Context, id primitive.ObjectID) error

	// Stats aggregates collection counters for the admin dashboard
	Stats(ctx context.Context) (*models.ArticleStats, error)
}

// GalleryRepository persists gallery images
type GalleryRepository interface {
	Create(ctx context.Context, image *models.GalleryImage) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.GalleryImage, error)
	List(ctx context.Context, filter GalleryFilter, page Page) ([]*models.GalleryImage, int64, error)
	Update(ctx context.Context, image *models.GalleryImage) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error)

	// SetVisibility flips the visibility of a batch of images and returns
	// the number of records modified
	SetVisibility(ctx context.Context, ids []primitive.ObjectID, visible bool) (int64, error)

	// DeleteByIDs removes a batch of records and returns the number deleted
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)

	// CategoryCounts groups the collection by category
	CategoryCounts(ctx context.Context) ([]*models.CategoryCount, error)

	// Stats aggregates collection counters for the admin dashboard
	Stats(ctx context.Context) (*models.GalleryStats, error)
}

// ServiceRepository persists service listings
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	List(ctx context.Context, filter ServiceFilter, page Page) ([]*models.Service, int64, error)
	Update(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Stats aggregates collection counters for the admin dashboard
	Stats(ctx context.Context) (*models.ServiceStats, error)
}

// DeclarationRepository persists health declarations
type DeclarationRepository interface {
	Create(ctx context.Context, declaration *models.HealthDeclaration) error

	// FindByID retrieves a full declaration including the signature
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.HealthDeclaration, error)

	// List retrieves declarations with the signature field excluded
	List(ctx context.Context, filter DeclarationFilter, page Page) ([]*models.HealthDeclaration, int64, error)

	Delete(ctx context.Context, id primitive.ObjectID) error

	// Stats counts submissions across the dashboard time windows
	Stats(ctx context.Context, now time.Time) (*models.DeclarationStats, error)
}
