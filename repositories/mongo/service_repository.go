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

// ServiceRepository implements repositories.ServiceRepository on MongoDB
type ServiceRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewServiceRepository creates a new service repository and ensures the
// listing indexes exist
func NewServiceRepository(db *DB, logger *zap.Logger) repositories.ServiceRepository {
	collection := db.Collection("clinic_services")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "order", Value: 1}}},
	})
	if err != nil {
		logger.Warn("failed to create service indexes", zap.Error(err))
	}

	return &ServiceRepository{
		collection: collection,
		logger:     logger,
	}
}

func serviceQuery(filter repositories.ServiceFilter) bson.M {
	query := bson.M{}

	if filter.Search != "" {
		re := searchRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"benefits": re},
		}
	}
	if filter.Category != "" && filter.Category != "all" {
		query["category"] = filter.Category
	}
	if filter.Active != nil {
		query["is_active"] = *filter.Active
	}

	return query
}

// Create inserts a new service
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	service.ID = primitive.NewObjectID()
	now := time.Now()
	service.CreatedAt = now
	service.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, service)
	if err != nil {
		return services.WrapInternal("failed to create service", err)
	}

	r.logger.Debug("service created", zap.String("id", service.ID.Hex()))
	return nil
}

// FindByID retrieves a service by ID
func (r *ServiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var service models.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrServiceNotFound
		}
		return nil, services.WrapInternal("failed to find service", err)
	}
	return &service, nil
}

// List retrieves services matching the filter, by display order then newest
func (r *ServiceRepository) List(ctx context.Context, filter repositories.ServiceFilter, page repositories.Page) ([]*models.Service, int64, error) {
	query := serviceQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to count services", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to list services", err)
	}
	defer cursor.Close(ctx)

	var result []*models.Service
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, services.WrapInternal("failed to decode services", err)
	}

	return result, total, nil
}

// Update replaces the mutable fields of a service
func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	service.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": service.ID},
		bson.M{"$set": bson.M{
			"title":        service.Title,
			"duration":     service.Duration,
			"price":        service.Price,
			"description":  service.Description,
			"benefits":     service.Benefits,
			"category":     service.Category,
			"suitable_for": service.SuitableFor,
			"is_active":    service.IsActive,
			"order":        service.Order,
			"updated_at":   service.UpdatedAt,
		}},
	)
	if err != nil {
		return services.WrapInternal("failed to update service", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrServiceNotFound
	}
	return nil
}

// Delete removes a service
func (r *ServiceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return services.WrapInternal("failed to delete service", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrServiceNotFound
	}
	return nil
}

// Stats aggregates service counters for the admin dashboard
func (r *ServiceRepository) Stats(ctx context.Context) (*models.ServiceStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, services.WrapInternal("failed to count services", err)
	}

	active, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, services.WrapInternal("failed to count active services", err)
	}

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, services.WrapInternal("failed to aggregate categories", err)
	}
	defer cursor.Close(ctx)

	var categoryStats []*models.CategoryCount
	if err := cursor.All(ctx, &categoryStats); err != nil {
		return nil, services.WrapInternal("failed to decode category counts", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"title": 1, "category": 1, "created_at": 1})

	recentCursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, services.WrapInternal("failed to find recent services", err)
	}
	defer recentCursor.Close(ctx)

	var recent []*models.ServiceSummary
	if err := recentCursor.All(ctx, &recent); err != nil {
		return nil, services.WrapInternal("failed to decode recent services", err)
	}

	return &models.ServiceStats{
		Total:         total,
		Active:        active,
		Inactive:      total - active,
		CategoryStats: categoryStats,
		Recent:        recent,
	}, nil
}
