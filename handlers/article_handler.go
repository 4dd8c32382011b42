package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shalevclinic/backend/middleware"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"github.com/shalevclinic/backend/upload"
	"github.com/shalevclinic/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultArticleLimit = 10

// ArticleInput carries the writable article fields. Create and update
// requests arrive either as JSON or as multipart form data when a cover
// image is attached.
type ArticleInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Content     string   `json:"content" validate:"required,min=10"`
	IsPublished *bool    `json:"isPublished"`
	Tags        []string `json:"tags"`
}

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	articles repositories.ArticleRepository
	users    repositories.UserRepository
	store    *upload.Store
	logger   *zap.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles repositories.ArticleRepository, users repositories.UserRepository, store *upload.Store, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		users:    users,
		store:    store,
		logger:   logger,
	}
}

// HandleListPublished handles GET /api/articles
func (h *ArticleHandler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultArticleLimit)

	published := true
	filter := repositories.ArticleFilter{
		Search:    r.URL.Query().Get("search"),
		Published: &published,
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter.Tags = []string{tag}
	}

	articles, total, err := h.articles.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.attachAuthors(ctx, articles)

	_ = utils.WriteOK(w, map[string]interface{}{
		"articles":   articles,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleGetPublished handles GET /api/articles/{id}. Only published
// articles are visible here and each read bumps the view counter.
func (h *ArticleHandler) HandleGetPublished(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	article, err := h.articles.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !article.IsPublished {
		_ = utils.WriteNotFound(w, services.ErrArticleNotFound.Message)
		return
	}

	if err := h.articles.IncrementViews(ctx, id); err != nil {
		h.logger.Error("failed to increment article views",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.String("article_id", id.Hex()),
			zap.Error(err))
	} else {
		article.Views++
	}

	article.Author = resolveAuthor(ctx, h.users, article.AuthorID)

	_ = utils.WriteOK(w, map[string]interface{}{"article": article})
}

// HandleListAll handles GET /api/articles/admin/all
func (h *ArticleHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultArticleLimit)

	filter := repositories.ArticleFilter{
		Search:    r.URL.Query().Get("search"),
		Published: parseBoolParam(r, "published"),
	}

	articles, total, err := h.articles.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.attachAuthors(ctx, articles)

	_ = utils.WriteOK(w, map[string]interface{}{
		"articles":   articles,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleGet handles GET /api/articles/admin/{id}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	article, err := h.articles.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	article.Author = resolveAuthor(ctx, h.users, article.AuthorID)

	_ = utils.WriteOK(w, map[string]interface{}{"article": article})
}

// HandleStats handles GET /api/articles/stats/summary
func (h *ArticleHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.articles.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"stats": stats})
}

// HandleCreate handles POST /api/articles. When a cover image is attached
// and the insert fails afterwards, the stored file is removed again so no
// orphan is left behind.
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	desc, err := h.store.Accept(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	input, err := h.parseInput(r)
	if err != nil {
		h.store.Cleanup(desc)
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		h.store.Cleanup(desc)
		HandleValidationError(w, err, h.logger)
		return
	}

	now := time.Now()
	article := &models.Article{
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.IsPublished != nil {
		article.IsPublished = *input.IsPublished
	}
	if desc != nil {
		article.Image = desc.StoredName
	}
	if principal := middleware.GetPrincipalFromContext(ctx); principal != nil {
		article.AuthorID = &principal.ID
	}

	if err := h.articles.Create(ctx, article); err != nil {
		h.store.Cleanup(desc)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("article created",
		zap.String("request_id", requestID),
		zap.String("article_id", article.ID.Hex()),
		zap.Bool("published", article.IsPublished))

	article.Author = resolveAuthor(ctx, h.users, article.AuthorID)

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "Article created successfully",
		"article": article,
	})
}

// HandleUpdate handles PUT /api/articles/{id}. A newly attached cover
// image replaces the previous one, which is deleted after the record is
// saved.
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	desc, err := h.store.Accept(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	input, err := h.parseInput(r)
	if err != nil {
		h.store.Cleanup(desc)
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		h.store.Cleanup(desc)
		HandleValidationError(w, err, h.logger)
		return
	}

	article, err := h.articles.FindByID(ctx, id)
	if err != nil {
		h.store.Cleanup(desc)
		HandleServiceError(w, err, h.logger)
		return
	}

	previousImage := article.Image
	article.Title = input.Title
	article.Content = input.Content
	article.Tags = input.Tags
	if input.IsPublished != nil {
		article.IsPublished = *input.IsPublished
	}
	if desc != nil {
		article.Image = desc.StoredName
	}
	article.UpdatedAt = time.Now()

	if err := h.articles.Update(ctx, article); err != nil {
		h.store.Cleanup(desc)
		HandleServiceError(w, err, h.logger)
		return
	}

	if desc != nil && previousImage != "" && previousImage != desc.StoredName {
		h.store.Remove(previousImage)
	}

	h.logger.Info("article updated",
		zap.String("request_id", requestID),
		zap.String("article_id", article.ID.Hex()))

	article.Author = resolveAuthor(ctx, h.users, article.AuthorID)

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Article updated successfully",
		"article": article,
	})
}

// HandleDelete handles DELETE /api/articles/{id}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	article, err := h.articles.Delete(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if article.Image != "" {
		h.store.Remove(article.Image)
	}

	h.logger.Info("article deleted",
		zap.String("request_id", requestID),
		zap.String("article_id", id.Hex()))

	_ = utils.WriteOK(w, map[string]string{"message": "Article deleted successfully"})
}

// parseInput reads the writable fields from either a multipart form or a
// JSON body, depending on the request content type.
func (h *ArticleHandler) parseInput(r *http.Request) (*ArticleInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input ArticleInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return nil, err
		}
		return &input, nil
	}

	input := &ArticleInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Tags:    splitTags(r.FormValue("tags")),
	}
	if v := r.FormValue("isPublished"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		input.IsPublished = &published
	}
	return input, nil
}

// attachAuthors resolves the author references for a page of articles
// with a single lookup.
func (h *ArticleHandler) attachAuthors(ctx context.Context, articles []*models.Article) {
	ids := make([]primitive.ObjectID, 0, len(articles))
	for _, a := range articles {
		if a.AuthorID != nil {
			ids = append(ids, *a.AuthorID)
		}
	}
	refs := collectAuthorRefs(ctx, h.users, ids)
	for _, a := range articles {
		if a.AuthorID != nil {
			a.Author = refs[*a.AuthorID]
		}
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
