package mongo

import (
	"context"
	"regexp"
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

// ArticleRepository implements repositories.ArticleRepository on MongoDB
type ArticleRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewArticleRepository creates a new article repository and ensures the
// listing index exists
func NewArticleRepository(db *DB, logger *zap.Logger) repositories.ArticleRepository {
	collection := db.Collection("articles")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		logger.Warn("failed to create index on created_at", zap.Error(err))
	}

	return &ArticleRepository{
		collection: collection,
		logger:     logger,
	}
}

// searchRegex builds a case-insensitive regex from user input with
// metacharacters escaped
func searchRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func articleQuery(filter repositories.ArticleFilter) bson.M {
	query := bson.M{}

	if filter.Search != "" {
		re := searchRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"tags": re},
		}
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if filter.Published != nil {
		query["is_published"] = *filter.Published
	}

	return query
}

// Create inserts a new article
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	article.ID = primitive.NewObjectID()
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, article)
	if err != nil {
		return services.WrapInternal("failed to create article", err)
	}

	r.logger.Debug("article created", zap.String("id", article.ID.Hex()))
	return nil
}

// FindByID retrieves an article by ID
func (r *ArticleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var article models.Article
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrArticleNotFound
		}
		return nil, services.WrapInternal("failed to find article", err)
	}

	return &article, nil
}

// List retrieves articles matching the filter, newest first
func (r *ArticleRepository) List(ctx context.Context, filter repositories.ArticleFilter, page repositories.Page) ([]*models.Article, int64, error) {
	query := articleQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to count articles", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, services.WrapInternal("failed to list articles", err)
	}
	defer cursor.Close(ctx)

	var articles []*models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, 0, services.WrapInternal("failed to decode articles", err)
	}

	return articles, total, nil
}

// Update replaces the mutable fields of an article
func (r *ArticleRepository) Update(ctx context.Context, article *models.Article) error {
	article.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": article.ID},
		bson.M{"$set": bson.M{
			"title":        article.Title,
			"content":      article.Content,
			"image":        article.Image,
			"is_published": article.IsPublished,
			"tags":         article.Tags,
			"updated_at":   article.UpdatedAt,
		}},
	)
	if err != nil {
		return services.WrapInternal("failed to update article", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrArticleNotFound
	}
	return nil
}

// Delete removes an article and returns the removed record
func (r *ArticleRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var article models.Article
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrArticleNotFound
		}
		return nil, services.WrapInternal("failed to delete article", err)
	}
	return &article, nil
}

// IncrementViews bumps the view counter of an article
func (r *ArticleRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return services.WrapInternal("failed to increment views", err)
	}
	return nil
}

// Stats aggregates article counters for the admin dashboard
func (r *ArticleRepository) Stats(ctx context.Context) (*models.ArticleStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, services.WrapInternal("failed to count articles", err)
	}

	published, err := r.collection.CountDocuments(ctx, bson.M{"is_published": true})
	if err != nil {
		return nil, services.WrapInternal("failed to count published articles", err)
	}

	// Sum views across the collection
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total_views": bson.M{"$sum": "$views"}}}},
	})
	if err != nil {
		return nil, services.WrapInternal("failed to aggregate views", err)
	}
	defer cursor.Close(ctx)

	var totals []struct {
		TotalViews int64 `bson:"total_views"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, services.WrapInternal("failed to decode view totals", err)
	}

	var totalViews int64
	if len(totals) > 0 {
		totalViews = totals[0].TotalViews
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"title": 1, "views": 1, "created_at": 1})

	popCursor, err := r.collection.Find(ctx, bson.M{"is_published": true}, opts)
	if err != nil {
		return nil, services.WrapInternal("failed to find popular articles", err)
	}
	defer popCursor.Close(ctx)

	var popular []*models.ArticleSummary
	if err := popCursor.All(ctx, &popular); err != nil {
		return nil, services.WrapInternal("failed to decode popular articles", err)
	}

	return &models.ArticleStats{
		Total:      total,
		Published:  published,
		Drafts:     total - published,
		TotalViews: totalViews,
		Popular:    popular,
	}, nil
}
