package handlers

import (
	"context"
	"encoding/json"
	"net/http"
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

const defaultGalleryLimit = 20

// Bulk actions accepted by HandleBulk
const (
	BulkActionShow   = "show"
	BulkActionHide   = "hide"
	BulkActionDelete = "delete"
)

// GalleryUpdateRequest carries the editable metadata of a stored image
type GalleryUpdateRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IsVisible   *bool   `json:"isVisible"`
}

// BulkRequest selects a batch of images and the action to apply
type BulkRequest struct {
	Action string   `json:"action" validate:"required,oneof=show hide delete"`
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
}

// GalleryHandler handles gallery endpoints
type GalleryHandler struct {
	gallery repositories.GalleryRepository
	users   repositories.UserRepository
	store   *upload.Store
	logger  *zap.Logger
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(gallery repositories.GalleryRepository, users repositories.UserRepository, store *upload.Store, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{
		gallery: gallery,
		users:   users,
		store:   store,
		logger:  logger,
	}
}

// HandleListVisible handles GET /api/gallery
func (h *GalleryHandler) HandleListVisible(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultGalleryLimit)

	visible := true
	filter := repositories.GalleryFilter{
		Category: normalizeCategory(r.URL.Query().Get("category")),
		Visible:  &visible,
	}

	images, total, err := h.gallery.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"images":     images,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleCategories handles GET /api/gallery/categories
func (h *GalleryHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.gallery.CategoryCounts(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"categories": counts})
}

// HandleGet handles GET /api/gallery/{id}. Hidden images are only visible
// to authenticated callers, which never reach this public route.
func (h *GalleryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	image, err := h.gallery.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !image.IsVisible {
		_ = utils.WriteNotFound(w, services.ErrImageNotFound.Message)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{"image": image})
}

// HandleListAll handles GET /api/gallery/admin/all
func (h *GalleryHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultGalleryLimit)

	filter := repositories.GalleryFilter{
		Category: normalizeCategory(r.URL.Query().Get("category")),
		Visible:  parseBoolParam(r, "visible"),
	}

	images, total, err := h.gallery.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.attachUploaders(ctx, images)

	_ = utils.WriteOK(w, map[string]interface{}{
		"images":     images,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleStats handles GET /api/gallery/stats/summary
func (h *GalleryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gallery.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"stats": stats})
}

// HandleUpload handles POST /api/gallery. The image file is
// mandatory; a failed insert deletes the file again.
func (h *GalleryHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	desc, err := h.store.Accept(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if desc == nil {
		_ = utils.WriteBadRequest(w, "No image file provided", nil)
		return
	}

	category := r.FormValue("category")
	if category == "" {
		category = "general"
	}
	if !models.IsValidGalleryCategory(category) {
		h.store.Cleanup(desc)
		_ = utils.WriteBadRequest(w, "Invalid category", map[string]interface{}{
			"category": category,
		})
		return
	}

	image := &models.GalleryImage{
		Filename:     desc.StoredName,
		OriginalName: desc.OriginalName,
		Description:  r.FormValue("description"),
		Category:     category,
		Size:         desc.Size,
		MimeType:     desc.MimeType,
		UploadedAt:   time.Now(),
		IsVisible:    true,
	}
	if principal := middleware.GetPrincipalFromContext(ctx); principal != nil {
		image.UploadedBy = &principal.ID
	}

	if err := h.gallery.Create(ctx, image); err != nil {
		h.store.Cleanup(desc)
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("gallery image uploaded",
		zap.String("request_id", requestID),
		zap.String("image_id", image.ID.Hex()),
		zap.String("filename", image.Filename),
		zap.Int64("size", image.Size))

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

// HandleUpdate handles PUT /api/gallery/{id}. Only metadata changes; the
// stored file is untouched.
func (h *GalleryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	var req GalleryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	image, err := h.gallery.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if req.Description != nil {
		image.Description = *req.Description
	}
	if req.Category != nil {
		if !models.IsValidGalleryCategory(*req.Category) {
			_ = utils.WriteBadRequest(w, "Invalid category", map[string]interface{}{
				"category": *req.Category,
			})
			return
		}
		image.Category = *req.Category
	}
	if req.IsVisible != nil {
		image.IsVisible = *req.IsVisible
	}

	if err := h.gallery.Update(ctx, image); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("gallery image updated",
		zap.String("request_id", requestID),
		zap.String("image_id", image.ID.Hex()))

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Image updated successfully",
		"image":   image,
	})
}

// HandleDelete handles DELETE /api/gallery/{id}. The record is removed
// first and the file second; file deletion is best-effort.
func (h *GalleryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	image, err := h.gallery.Delete(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.store.Remove(image.Filename)

	h.logger.Info("gallery image deleted",
		zap.String("request_id", requestID),
		zap.String("image_id", id.Hex()),
		zap.String("filename", image.Filename))

	_ = utils.WriteOK(w, map[string]string{"message": "Image deleted successfully"})
}

// HandleBulk handles POST /api/gallery/bulk. Visibility actions are a
// single batched update; delete removes the records first and then the
// files best-effort.
func (h *GalleryHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid image ID", map[string]interface{}{
				"id": raw,
			})
			return
		}
		ids = append(ids, id)
	}

	var affected int64
	var err error

	switch req.Action {
	case BulkActionShow, BulkActionHide:
		affected, err = h.gallery.SetVisibility(ctx, ids, req.Action == BulkActionShow)
	case BulkActionDelete:
		var images []*models.GalleryImage
		images, err = h.gallery.FindByIDs(ctx, ids)
		if err != nil {
			break
		}
		affected, err = h.gallery.DeleteByIDs(ctx, ids)
		if err != nil {
			break
		}
		filenames := make([]string, 0, len(images))
		for _, img := range images {
			filenames = append(filenames, img.Filename)
		}
		h.store.BulkRemove(filenames)
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("gallery bulk action applied",
		zap.String("request_id", requestID),
		zap.String("action", req.Action),
		zap.Int("requested", len(ids)),
		zap.Int64("affected", affected))

	_ = utils.WriteOK(w, map[string]interface{}{
		"message":  "Bulk action completed",
		"action":   req.Action,
		"affected": affected,
	})
}

// attachUploaders resolves the uploader references for a page of images
// with a single lookup.
func (h *GalleryHandler) attachUploaders(ctx context.Context, images []*models.GalleryImage) {
	ids := make([]primitive.ObjectID, 0, len(images))
	for _, img := range images {
		if img.UploadedBy != nil {
			ids = append(ids, *img.UploadedBy)
		}
	}
	refs := collectAuthorRefs(ctx, h.users, ids)
	for _, img := range images {
		if img.UploadedBy != nil {
			img.Uploader = refs[*img.UploadedBy]
		}
	}
}

// normalizeCategory treats the catch-all filter value as no filter
func normalizeCategory(c string) string {
	if c == "all" {
		return ""
	}
	return c
}
