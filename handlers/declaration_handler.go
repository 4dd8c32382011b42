package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/shalevclinic/backend/middleware"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/utils"
	"go.uber.org/zap"
)

const defaultDeclarationLimit = 20

// DeclarationInput is the submitted health-declaration form
type DeclarationInput struct {
	FullName             string                  `json:"fullName" validate:"required,min=2,max=100"`
	IDNumber             string                  `json:"idNumber" validate:"required,israeli_id"`
	PhoneNumber          string                  `json:"phoneNumber" validate:"required,il_phone"`
	HealthConditions     models.HealthConditions `json:"healthConditions"`
	DeclarationConfirmed bool                    `json:"declarationConfirmed"`
	Signature            string                  `json:"signature" validate:"required"`
}

// DeclarationHandler handles health-declaration endpoints
type DeclarationHandler struct {
	declarations repositories.DeclarationRepository
	logger       *zap.Logger
}

// NewDeclarationHandler creates a new DeclarationHandler
func NewDeclarationHandler(declarations repositories.DeclarationRepository, logger *zap.Logger) *DeclarationHandler {
	return &DeclarationHandler{
		declarations: declarations,
		logger:       logger,
	}
}

// HandleSubmit handles POST /api/health-declarations. This is the one
// unauthenticated write endpoint of the API.
func (h *DeclarationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var input DeclarationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&input); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if !input.DeclarationConfirmed {
		_ = utils.WriteBadRequest(w, "Declaration must be confirmed", nil)
		return
	}
	if input.HealthConditions.Surgeries.Present && input.HealthConditions.Surgeries.Details == "" {
		_ = utils.WriteBadRequest(w, "Surgery details are required", nil)
		return
	}
	if input.HealthConditions.OtherMedicalIssues.Present && input.HealthConditions.OtherMedicalIssues.Details == "" {
		_ = utils.WriteBadRequest(w, "Medical issue details are required", nil)
		return
	}

	declaration := &models.HealthDeclaration{
		FullName:             input.FullName,
		IDNumber:             input.IDNumber,
		PhoneNumber:          input.PhoneNumber,
		HealthConditions:     input.HealthConditions,
		DeclarationConfirmed: input.DeclarationConfirmed,
		Signature:            input.Signature,
		IPAddress:            clientIP(r),
		CreatedAt:            time.Now(),
	}

	if err := h.declarations.Create(ctx, declaration); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("health declaration submitted",
		zap.String("request_id", requestID),
		zap.String("declaration_id", declaration.ID.Hex()))

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "Declaration submitted successfully",
		"id":      declaration.ID.Hex(),
	})
}

// HandleList handles GET /api/health-declarations. Signatures are
// excluded from the listing.
func (h *DeclarationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := parsePage(r, defaultDeclarationLimit)

	filter := repositories.DeclarationFilter{
		Search: r.URL.Query().Get("search"),
	}
	if from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to")); err == nil {
		filter.To = &to
	}

	declarations, total, err := h.declarations.List(ctx, filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"declarations": declarations,
		"pagination":   utils.NewPagination(page.Page, page.Limit, total),
	})
}

// HandleGet handles GET /api/health-declarations/{id}, including the
// signature image.
func (h *DeclarationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	declaration, err := h.declarations.FindByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{"declaration": declaration})
}

// HandleDelete handles DELETE /api/health-declarations/{id}
func (h *DeclarationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := pathObjectID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.declarations.Delete(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("health declaration deleted",
		zap.String("request_id", requestID),
		zap.String("declaration_id", id.Hex()))

	_ = utils.WriteOK(w, map[string]string{"message": "Declaration deleted successfully"})
}

// HandleStats handles GET /api/health-declarations/stats/summary
func (h *DeclarationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.declarations.Stats(r.Context(), time.Now())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"stats": stats})
}

// clientIP returns the remote address without the port. RealIP middleware
// has already unwrapped any proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
