package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shalevclinic/backend/middleware"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"github.com/shalevclinic/backend/utils"
	"go.uber.org/zap"
)

const defaultServiceLimit = 50

// ServiceInput carries the writable fields of a treatment listing
type ServiceInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Duration    string   `json:"duration" validate:"required"`
	Price       string   `json:"price" validate:"required"`
	Description string   `json:"description" validate:"required,min=10"`
	Benefits    []string `json:"benefits"`
	Category    string   `json:"category" validate:"required"`
	SuitableFor string   `json:"suitableFor"`
	IsActive    *bool    `json:"isActive"`
	Order       *int     `json:"order"`
}

// ServiceHandler handles treatment listing endpoints
type ServiceHandler struct {
	services repositories.ServiceRepository
	users    repositories.UserRepository
	logger   *zap.Logger
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(services repositories.ServiceRepository, users repositories.UserRepository, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{
		services: services,
		users:    users,
		logger:   logger,
	}
}

// HandleListActive handles GET /api/services
func (h *ServiceHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultServiceLimit)

	active := true
	filter := repositories.ServiceFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Active:   &active,
	}

	items, total, err := h.services.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"services":   items,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleGet handles GET /api/services/{id}. Inactive services are not
// visible on the public route.
func (h *ServiceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	service, err := h.services.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !service.IsActive {
		_ = utils.WriteNotFound(w, services.ErrServiceNotFound.Message)
		return
	}

	service.Creator = resolveAuthor(ctx, h.users, service.CreatedBy)

	_ = utils.WriteOK(w, map[string]interface{}{"service": service})
}

// HandleListAll handles GET /api/services/admin/all
func (h *ServiceHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultServiceLimit)

	filter := repositories.ServiceFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Active:   parseBoolParam(r, "active"),
	}

	items, total, err := h.services.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"services":   items,
		"pagination": utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleStats handles GET /api/services/stats/summary
func (h *ServiceHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"stats": stats})
}

// HandleCreate handles POST /api/services
func (h *ServiceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var input ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&input); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if !models.IsValidServiceCategory(input.Category) {
		_ = utils.WriteBadRequest(w, "Invalid category", map[string]interface{}{
			"category": input.Category,
		})
		return
	}

	now := time.Now()
	service := &models.Service{
		Title:       input.Title,
		Duration:    input.Duration,
		Price:       input.Price,
		Description: input.Description,
		Benefits:    input.Benefits,
		Category:    input.Category,
		SuitableFor: input.SuitableFor,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
	if input.Order != nil {
		service.Order = *input.Order
	}
	if principal := middleware.GetPrincipalFromContext(ctx); principal != nil {
		service.CreatedBy = &principal.ID
	}

	if err := h.services.Create(ctx, service); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("service created",
		zap.String("request_id", requestID),
		zap.String("service_id", service.ID.Hex()),
		zap.String("category", service.Category))

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "Service created successfully",
		"service": service,
	})
}

// HandleUpdate handles PUT /api/services/{id}
func (h *ServiceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	var input ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&input); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if !models.IsValidServiceCategory(input.Category) {
		_ = utils.WriteBadRequest(w, "Invalid category", map[string]interface{}{
			"category": input.Category,
		})
		return
	}

	service, err := h.services.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	service.Title = input.Title
	service.Duration = input.Duration
	service.Price = input.Price
	service.Description = input.Description
	service.Benefits = input.Benefits
	service.Category = input.Category
	service.SuitableFor = input.SuitableFor
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
	if input.Order != nil {
		service.Order = *input.Order
	}
	service.UpdatedAt = time.Now()

	if err := h.services.Update(ctx, service); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("service updated",
		zap.String("request_id", requestID),
		zap.String("service_id", service.ID.Hex()))

	_ = utils.WriteOK(w, map[string]interface{}{
		"message": "Service updated successfully",
		"service": service,
	})
}

// HandleDelete handles DELETE /api/services/{id}
func (h *ServiceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.services.Delete(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("service deleted",
		zap.String("request_id", requestID),
		zap.String("service_id", id.Hex()))

	_ = utils.WriteOK(w, map[string]string{"message": "Service deleted successfully"})
}
