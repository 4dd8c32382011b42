package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shalevclinic/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validDeclaration() DeclarationInput {
	return DeclarationInput{
		FullName:    "Dana Levi",
		IDNumber:    "123456789",
		PhoneNumber: "052-1234567",
		HealthConditions: models.HealthConditions{
			Diabetes: true,
		},
		DeclarationConfirmed: true,
		Signature:            "data:image/png;base64,iVBORw0KGgo=",
	}
}

func TestHandleSubmit(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid declaration is stored with the client IP", func(t *testing.T) {
		declarations := new(MockDeclarationRepository)
		h := NewDeclarationHandler(declarations, logger)

		declarations.On("Create", mock.Anything, mock.MatchedBy(func(d *models.HealthDeclaration) bool {
			return d.FullName == "Dana Levi" &&
				d.IDNumber == "123456789" &&
				d.IPAddress != "" &&
				d.DeclarationConfirmed
		})).Return(nil)

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", validDeclaration()))

		require.Equal(t, http.StatusCreated, w.Code)
		declarations.AssertExpectations(t)
	})

	t.Run("unconfirmed declaration returns 400", func(t *testing.T) {
		declarations := new(MockDeclarationRepository)
		h := NewDeclarationHandler(declarations, logger)

		input := validDeclaration()
		input.DeclarationConfirmed = false

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		declarations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid ID number returns 400", func(t *testing.T) {
		h := NewDeclarationHandler(new(MockDeclarationRepository), logger)

		input := validDeclaration()
		input.IDNumber = "12345"

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid phone number returns 400", func(t *testing.T) {
		h := NewDeclarationHandler(new(MockDeclarationRepository), logger)

		input := validDeclaration()
		input.PhoneNumber = "12345"

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing signature returns 400", func(t *testing.T) {
		h := NewDeclarationHandler(new(MockDeclarationRepository), logger)

		input := validDeclaration()
		input.Signature = ""

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("surgeries flag without details returns 400", func(t *testing.T) {
		h := NewDeclarationHandler(new(MockDeclarationRepository), logger)

		input := validDeclaration()
		input.HealthConditions.Surgeries = models.ConditionDetails{Present: true}

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("surgeries flag with details is accepted", func(t *testing.T) {
		declarations := new(MockDeclarationRepository)
		h := NewDeclarationHandler(declarations, logger)

		input := validDeclaration()
		input.HealthConditions.Surgeries = models.ConditionDetails{
			Present: true,
			Details: "knee surgery 2023",
		}
		declarations.On("Create", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		h.HandleSubmit(w, jsonRequest(t, http.MethodPost, "/api/health-declarations", input))

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
