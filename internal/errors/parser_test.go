package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: InternalServerError,
		},
		{
			name:     "record not found for product",
			err:      fmt.Errorf("load: %w", gorm.ErrRecordNotFound),
			context:  "get product",
			wantCode: ProductNotFound,
		},
		{
			name:     "record not found for subcategory",
			err:      gorm.ErrRecordNotFound,
			context:  "update subcategory",
			wantCode: SubcategoryNotFound,
		},
		{
			name:     "pq unique violation on slug",
			err:      &pq.Error{Code: "23505", Constraint: "idx_products_slug", Message: "duplicate key value"},
			context:  "create product",
			wantCode: SlugAlreadyExists,
		},
		{
			name:     "pq foreign key still referenced",
			err:      &pq.Error{Code: "23503", Message: `update or delete on table "categories" violates foreign key constraint, key is still referenced`},
			context:  "delete category",
			wantCode: ResourceInUse,
		},
		{
			name:     "pq not null",
			err:      &pq.Error{Code: "23502", Column: "title", Message: "null value in column"},
			wantCode: ValidationRequired,
		},
		{
			name:     "sqlite unique constraint",
			err:      fmt.Errorf("UNIQUE constraint failed: tags.slug"),
			context:  "create tag",
			wantCode: SlugAlreadyExists,
		},
		{
			name:     "connection refused",
			err:      fmt.Errorf("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: InternalExternalAPI,
		},
		{
			name:     "unknown error",
			err:      fmt.Errorf("boom"),
			context:  "update order",
			wantCode: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_DefaultMessageFollowsContext(t *testing.T) {
	assert.Equal(t, "Could not delete. Please try again", ParseError(fmt.Errorf("x"), "delete tag").Message)
	assert.Equal(t, "Could not save. Please try again", ParseError(fmt.Errorf("x"), "create product").Message)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(OrderNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(ResourceInUse))
	assert.Equal(t, http.StatusConflict, StatusFor(SlugAlreadyExists))
	assert.Equal(t, http.StatusBadRequest, StatusFor(ValidationRequired))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(InternalExternalAPI))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(InternalServerError))
}

func TestParseAndRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ParseAndRespond(c, gorm.ErrRecordNotFound, "get order")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, OrderNotFound, body.Error)
}

func TestResponseHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		respond    func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, AuthUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "") }, http.StatusForbidden, AuthzForbidden},
		{"conflict", func(c *gin.Context) { Conflict(c, ProductStale, "stale") }, http.StatusConflict, ProductStale},
		{"internal", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, InternalServerError},
		{"validation", func(c *gin.Context) { RespondWithValidationError(c, map[string]string{"phone": "required"}) }, http.StatusBadRequest, ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.respond(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}
