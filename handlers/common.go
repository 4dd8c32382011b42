package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parsePage reads page/limit query parameters, falling back to defaults
func parsePage(r *http.Request, defaultLimit int) repositories.Page {
	page := repositories.Page{Page: 1, Limit: defaultLimit}

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}

	return page
}

// pathObjectID parses the {id} URL parameter as a MongoDB ObjectID
func pathObjectID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, services.ErrInvalidID
	}
	return id, nil
}

// parseBoolParam reads an optional boolean query parameter; nil when absent
func parseBoolParam(r *http.Request, name string) *bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

// resolveAuthor looks up the username behind a creator reference
func resolveAuthor(ctx context.Context, users repositories.UserRepository, id *primitive.ObjectID) *models.AuthorRef {
	if id == nil {
		return nil
	}
	names, err := users.Usernames(ctx, []primitive.ObjectID{*id})
	if err != nil {
		return nil
	}
	name, ok := names[*id]
	if !ok {
		return nil
	}
	return &models.AuthorRef{ID: *id, Username: name}
}

// collectAuthorRefs resolves the usernames for a batch of creator
// references, one query per page of results
func collectAuthorRefs(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) map[primitive.ObjectID]*models.AuthorRef {
	refs := make(map[primitive.ObjectID]*models.AuthorRef)
	if len(ids) == 0 {
		return refs
	}

	names, err := users.Usernames(ctx, ids)
	if err != nil {
		return refs
	}
	for id, name := range names {
		refs[id] = &models.AuthorRef{ID: id, Username: name}
	}
	return refs
}
