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

// DeclarationRepository implements repositories.DeclarationRepository on
// MongoDB
type DeclarationRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewDeclarationRepository creates a new declaration repository and ensures
// the listing indexes exist
func NewDeclarationRepository(db *DB, logger *zap.Logger) repositories.DeclarationRepository {
	collection := db.Collection("health_declarations")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "id_number", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		logger.Warn("failed to create declaration indexes", zap.Error(err))
	}

	return &DeclarationRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new health declaration
func (r *DeclarationRepository) Create(ctx context.Context, declaration *models.HealthDeclaration) error {
	declaration.ID = primitive.NewObjectID()
	declaration.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, declaration)
	if err != nil {
		return services.WrapInternal("failed to create declaration", err)
	}

	r.logger.Debug("health declaration created", zap.String("id", declaration.ID.Hex()))
	return nil
}

// FindByID retrieves a full declaration including the signature
func (r *DeclarationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.HealthDeclaration, error) {
	var declaration models.HealthDeclaration
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&declaration)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrDeclarationNotFound
		}
		return nil, services.WrapInternal("failed to find declaration", err)
	}
	return &declaration, nil
}

// List retrieves declarations matching the filter, newest first, with the
// signature field excluded
func (r *DeclarationRepository) List(ctx context.Context, filter repositories.DeclarationFilter, page repositories.Page) ([]*models.HealthDeclaration, int64, error) {
	query := bson.M{}

	if filter.Search != "" {
		re := searchRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"full_name": re},
			bson.M{"id_number": re},
		}
	}
	if filter.From != nil || filter.To != nil {
		created := bson.M{}
		if filter.From != nil {
			created["$gte"] = *filter.From
		}
		if filter.To != nil {
			created["$lte"] = *filter.To
		}
		query["created_at"] = created
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to count declarations", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)).
		SetProjection(bson.M{"signature": 0})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to list declarations", err)
	}
	defer cursor.Close(ctx)

	var declarations []*models.HealthDeclaration
	if err := cursor.All(ctx, &declarations); err != nil {
		return nil, 0, services.WrapInternal("failed to decode declarations", err)
	}

	return declarations, total, nil
}

// Delete removes a declaration
func (r *DeclarationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return services.WrapInternal("failed to delete declaration", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrDeclarationNotFound
	}
	return nil
}

// Stats counts submissions across the dashboard time windows
func (r *DeclarationRepository) Stats(ctx context.Context, now time.Time) (*models.DeclarationStats, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, services.WrapInternal("failed to count declarations", err)
	}

	today, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": startOfDay}})
	if err != nil {
		return nil, services.WrapInternal("failed to count today's declarations", err)
	}

	week, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": startOfWeek}})
	if err != nil {
		return nil, services.WrapInternal("failed to count week's declarations", err)
	}

	month, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": startOfMonth}})
	if err != nil {
		return nil, services.WrapInternal("failed to count month's declarations", err)
	}

	return &models.DeclarationStats{
		Total:     total,
		Today:     today,
		ThisWeek:  week,
		ThisMonth: month,
	}, nil
}
