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

// UserRepository implements repositories.UserRepository on MongoDB
type UserRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepository creates a new user repository and ensures the unique
// username index exists
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	collection := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("failed to create index on username", zap.Error(err))
	}

	return &UserRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrDuplicateUsername
		}
		return services.WrapInternal("failed to create user", err)
	}

	r.logger.Debug("user created",
		zap.String("id", user.ID.Hex()),
		zap.String("username", user.Username))
	return nil
}

// FindByID retrieves a user by ID, excluding the password hash
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to find user", err)
	}

	return &user, nil
}

// FindByUsername retrieves a user by username, including the password hash
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to find user", err)
	}

	return &user, nil
}

// FindCredentials retrieves a user by ID, including the password hash
func (r *UserRepository) FindCredentials(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to find user", err)
	}

	return &user, nil
}

// UpdateLastLogin records a successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": at, "updated_at": time.Now()}},
	)
	if err != nil {
		return services.WrapInternal("failed to update last login", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now()}},
	)
	if err != nil {
		return services.WrapInternal("failed to update password", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrUserNotFound
	}
	return nil
}

// Usernames resolves the usernames for a set of user IDs
func (r *UserRepository) Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, services.WrapInternal("failed to resolve usernames", err)
	}
	defer cursor.Close(ctx)

	var users []struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, services.WrapInternal("failed to decode usernames", err)
	}

	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
