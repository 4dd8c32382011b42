package mongo

import (
	"context"
	"time"

	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// GalleryRepository implements repositories.GalleryRepository on MongoDB
type GalleryRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewGalleryRepository creates a new gallery repository and ensures the
// listing indexes exist
func NewGalleryRepository(db *DB, logger *zap.Logger) repositories.GalleryRepository {
	collection := db.Collection("gallery_images")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploaded_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "uploaded_at", Value: -1}}},
	})
	if err != nil {
		logger.Warn("failed to create gallery indexes", zap.Error(err))
	}

	return &GalleryRepository{
		collection: collection,
		logger:     logger,
	}
}

func galleryQuery(filter repositories.GalleryFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Visible != nil {
		query["is_visible"] = *filter.Visible
	}
	return query
}

// Create inserts a new gallery image record
func (r *GalleryRepository) Create(ctx context.Context, image *models.GalleryImage) error {
	image.ID = primitive.NewObjectID()
	image.UploadedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, image)
	if err != nil {
		return services.WrapInternal("failed to create gallery image", err)
	}

	r.logger.Debug("gallery image created",
		zap.String("id", image.ID.Hex()),
		zap.String("filename", image.Filename))
	return nil
}

// FindByID retrieves a gallery image by ID
func (r *GalleryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error) {
	var image models.GalleryImage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&image)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrImageNotFound
		}
		return nil, services.WrapInternal("failed to find gallery image", err)
	}
	return &image, nil
}

// FindByIDs retrieves a batch of gallery images
func (r *GalleryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.GalleryImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, services.WrapInternal("failed to find gallery images", err)
	}
	defer cursor.Close(ctx)

	var images []*models.GalleryImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, services.WrapInternal("failed to decode gallery images", err)
	}
	return images, nil
}

// List retrieves gallery images matching the filter, newest first
func (r *GalleryRepository) List(ctx context.Context, filter repositories.GalleryFilter, page repositories.Page) ([]*models.GalleryImage, int64, error) {
	query := galleryQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to count gallery images", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to list gallery images", err)
	}
	defer cursor.Close(ctx)

	var images []*models.GalleryImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, 0, services.WrapInternal("failed to decode gallery images", err)
	}

	return images, total, nil
}

// Update replaces the mutable fields of a gallery image
func (r *GalleryRepository) Update(ctx context.Context, image *models.GalleryImage) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": image.ID},
		bson.M{"$set": bson.M{
			"description": image.Description,
			"category":    image.Category,
			"is_visible":  image.IsVisible,
		}},
	)
	if err != nil {
		return services.WrapInternal("failed to update gallery image", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrImageNotFound
	}
	return nil
}

// Delete removes a gallery image record and returns the removed record
func (r *GalleryRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryImage, error) {
	var image models.GalleryImage
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&image)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrImageNotFound
		}
		return nil, services.WrapInternal("failed to delete gallery image", err)
	}
	return &image, nil
}

// SetVisibility flips the visibility of a batch of images
func (r *GalleryRepository) SetVisibility(ctx context.Context, ids []primitive.ObjectID, visible bool) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"is_visible": visible}},
	)
	if err != nil {
		return 0, services.WrapInternal("failed to update visibility", err)
	}
	return result.ModifiedCount, nil
}

// DeleteByIDs removes a batch of gallery image records
func (r *GalleryRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, services.WrapInternal("failed to delete gallery images", err)
	}
	return result.DeletedCount, nil
}

// CategoryCounts groups the collection by category, most populated first
func (r *GalleryRepository) CategoryCounts(ctx context.Context) ([]*models.CategoryCount, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, services.WrapInternal("failed to aggregate categories", err)
	}
	defer cursor.Close(ctx)

	var counts []*models.CategoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, services.WrapInternal("failed to decode category counts", err)
	}
	return counts, nil
}

// Stats aggregates gallery counters for the admin dashboard
func (r *GalleryRepository) Stats(ctx context.Context) (*models.GalleryStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, services.WrapInternal("failed to count gallery images", err)
	}

	visible, err := r.collection.CountDocuments(ctx, bson.M{"is_visible": true})
	if err != nil {
		return nil, services.WrapInternal("failed to count visible images", err)
	}

	// Sum stored bytes across the collection
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total_size": bson.M{"$sum": "$size"}}}},
	})
	if err != nil {
		return nil, services.WrapInternal("failed to aggregate sizes", err)
	}
	defer cursor.Close(ctx)

	var totals []struct {
		TotalSize int64 `bson:"total_size"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, services.WrapInternal("failed to decode size totals", err)
	}

	var totalSize int64
	if len(totals) > 0 {
		totalSize = totals[0].TotalSize
	}

	distribution, err := r.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"filename": 1, "original_name": 1, "uploaded_at": 1, "category": 1})

	recentCursor, err := r.collection.Find(ctx, bson.M{"is_visible": true}, opts)
	if err != nil {
		return nil, services.WrapInternal("failed to find recent images", err)
	}
	defer recentCursor.Close(ctx)

	var recent []*models.GalleryImage
	if err := recentCursor.All(ctx, &recent); err != nil {
		return nil, services.WrapInternal("failed to decode recent images", err)
	}

	return &models.GalleryStats{
		Total:                total,
		Visible:              visible,
		Hidden:               total - visible,
		TotalSize:            totalSize,
		CategoryDistribution: distribution,
		Recent:               recent,
	}, nil
}
