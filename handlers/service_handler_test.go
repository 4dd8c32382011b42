package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func validServiceInput() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Swedish Massage",
		"duration":    "60 minutes",
		"price":       "350 NIS",
		"description": "A gentle full-body massage for relaxation",
		"benefits":    []string{"Stress relief"},
		"category":    "relaxation",
	}
}

func TestServiceHandleListActive(t *testing.T) {
	logger := zap.NewNop()

	t.Run("lists only active services", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		items := []*models.Service{
			{ID: primitive.NewObjectID(), Title: "Swedish Massage", IsActive: true},
		}
		repo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.ServiceFilter) bool {
			return f.Active != nil && *f.Active
		}), mock.Anything).Return(items, int64(1), nil)

		w := httptest.NewRecorder()
		h.HandleListActive(w, httptest.NewRequest(http.MethodGet, "/api/services", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		pagination, ok := body["pagination"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), pagination["total"])
		repo.AssertExpectations(t)
	})

	t.Run("admin listing passes the active filter through", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		repo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.ServiceFilter) bool {
			return f.Active != nil && !*f.Active
		}), mock.Anything).Return([]*models.Service{}, int64(0), nil)

		w := httptest.NewRecorder()
		h.HandleListAll(w, httptest.NewRequest(http.MethodGet, "/api/services/admin/all?active=false", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})
}

func TestServiceHandleGet(t *testing.T) {
	logger := zap.NewNop()

	t.Run("active service is returned", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("FindByID", mock.Anything, id).
			Return(&models.Service{ID: id, Title: "Swedish Massage", IsActive: true}, nil)

		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/services/"+id.Hex(), nil), "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleGet(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		service, ok := body["service"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Swedish Massage", service["title"])
	})

	t.Run("inactive service is not visible publicly", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("FindByID", mock.Anything, id).
			Return(&models.Service{ID: id, IsActive: false}, nil)

		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/services/"+id.Hex(), nil), "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleGet(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown service returns 404", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("FindByID", mock.Anything, id).Return(nil, services.ErrServiceNotFound)

		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/services/"+id.Hex(), nil), "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleGet(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServiceHandleCreate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("creates an active service by default", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Service) bool {
			return s.Title == "Swedish Massage" && s.IsActive
		})).Return(nil)

		req := jsonRequest(t, http.MethodPost, "/api/services", validServiceInput())
		w := httptest.NewRecorder()
		h.HandleCreate(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		input := validServiceInput()
		input["category"] = "surgery"

		req := jsonRequest(t, http.MethodPost, "/api/services", input)
		w := httptest.NewRecorder()
		h.HandleCreate(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("short description fails validation", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		input := validServiceInput()
		input["description"] = "short"

		req := jsonRequest(t, http.MethodPost, "/api/services", input)
		w := httptest.NewRecorder()
		h.HandleCreate(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestServiceHandleUpdate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("updates mutable fields", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		existing := &models.Service{ID: id, Title: "Old Title", IsActive: true, Order: 2}
		repo.On("FindByID", mock.Anything, id).Return(existing, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Service) bool {
			return s.ID == id && s.Title == "Swedish Massage" && s.Order == 2
		})).Return(nil)

		req := jsonRequest(t, http.MethodPut, "/api/services/"+id.Hex(), validServiceInput())
		req = withChiParam(req, "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleUpdate(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("deactivation is applied", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("FindByID", mock.Anything, id).
			Return(&models.Service{ID: id, IsActive: true}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Service) bool {
			return !s.IsActive
		})).Return(nil)

		input := validServiceInput()
		input["isActive"] = false

		req := jsonRequest(t, http.MethodPut, "/api/services/"+id.Hex(), input)
		req = withChiParam(req, "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleUpdate(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})
}

func TestServiceHandleDelete(t *testing.T) {
	logger := zap.NewNop()

	t.Run("deletes an existing service", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("Delete", mock.Anything, id).Return(nil)

		req := withChiParam(httptest.NewRequest(http.MethodDelete, "/api/services/"+id.Hex(), nil), "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleDelete(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("unknown service returns 404", func(t *testing.T) {
		repo := new(MockServiceRepository)
		h := NewServiceHandler(repo, new(MockUserRepository), logger)

		id := primitive.NewObjectID()
		repo.On("Delete", mock.Anything, id).Return(services.ErrServiceNotFound)

		req := withChiParam(httptest.NewRequest(http.MethodDelete, "/api/services/"+id.Hex(), nil), "id", id.Hex())
		w := httptest.NewRecorder()
		h.HandleDelete(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
