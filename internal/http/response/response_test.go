package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipaca/autolavado/internal/http/request"
	"github.com/dipaca/autolavado/internal/lib/apperr"
)

func TestFail(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "validation", err: fmt.Errorf("op: %w", apperr.Validation("CI already exists")), wantStatus: http.StatusBadRequest, wantMsg: "CI already exists"},
		{name: "unauthenticated", err: apperr.Unauthenticated("Invalid credentials"), wantStatus: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
		{name: "forbidden", err: apperr.Forbidden("Access denied"), wantStatus: http.StatusForbidden, wantMsg: "Access denied"},
		{name: "not found", err: apperr.NotFound("Vehicle not found"), wantStatus: http.StatusNotFound, wantMsg: "Vehicle not found"},
		{name: "internal hides cause", err: errors.New("pq: connection refused"), wantStatus: http.StatusInternalServerError, wantMsg: InternalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			Fail(rec, req, log, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusCreated, map[string]int{"id": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"id":3}}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	type input struct {
		Email    string `validate:"required,email"`
		Password string `validate:"min=6"`
		Fecha    string `validate:"datetime=2006-01-02"`
		Nombre   string `validate:"required"`
	}

	err := request.NewValidator().Struct(input{Email: "nope", Password: "123", Fecha: "20-05-2024"})
	require.Error(t, err)

	got := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t,
		"field Email must be a valid email, field Password must be at least 6, "+
			"field Fecha must be a date in format 2006-01-02, field Nombre is a required field",
		got.Error)
}

func TestFail_ValidatorErrors(t *testing.T) {
	type input struct {
		Nombre string `validate:"required"`
	}
	err := request.NewValidator().Struct(input{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	Fail(rec, req, slog.New(slog.DiscardHandler), fmt.Errorf("handler: %w", err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"field Nombre is a required field"}`, rec.Body.String())
}
