package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromContext(c))
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}

func TestCartSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CartSession(false))
	router.GET("/cart", func(c *gin.Context) {
		c.String(http.StatusOK, GetCartSessionID(c))
	})

	existing := uuid.New().String()

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "header wins", header: existing, cookie: uuid.New().String(), want: existing},
		{name: "cookie fallback", cookie: existing, want: existing},
		{name: "issued when missing"},
		{name: "malformed replaced", header: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set(CartSessionHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Body.String()
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
				assert.NotEqual(t, tt.header, got)
			}
			assert.Equal(t, got, w.Header().Get(CartSessionHeader))
			assert.Contains(t, w.Header().Get("Set-Cookie"), CartSessionCookie+"="+got)
		})
	}
}

func TestValidators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	RegisterValidators()

	type request struct {
		Name  string `json:"name" binding:"required,notblank"`
		Phone string `json:"contact_number" binding:"required,notblank"`
	}

	var failed []string
	router := gin.New()
	router.POST("/check", func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					failed = append(failed, fe.Field())
				}
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		body       string
		want       int
		wantFailed []string
	}{
		{name: "valid", body: `{"name":"Rahima","contact_number":"01712345678"}`, want: http.StatusOK},
		{name: "foreign phone", body: `{"name":"Rahima","contact_number":"+1 415 555 0100"}`, want: http.StatusOK},
		{name: "blank name", body: `{"name":"   ","contact_number":"01712345678"}`, want: http.StatusBadRequest, wantFailed: []string{"name"}},
		{name: "missing phone", body: `{"name":"Rahima"}`, want: http.StatusBadRequest, wantFailed: []string{"contact_number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failed = nil
			req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.wantFailed, failed)
		})
	}
}
