package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-at-least-32-bytes-long!!")

func newActorRouter(cfg ActorConfig) (*gin.Engine, *string) {
	var seen string
	router := gin.New()
	router.Use(Actor(cfg))
	handler := func(c *gin.Context) {
		seen = GetActor(c)
		if ctxActor := logger.GetActor(c.Request.Context()); ctxActor != seen {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	}
	router.GET("/x", handler)
	router.GET("/health", handler)
	return router, &seen
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestActor_BearerToken(t *testing.T) {
	router, seen := newActorRouter(ActorConfig{Secret: testSecret, Issuer: "growerpay"})

	token, err := SignActorToken(testSecret, "growerpay", "jdoe", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jdoe", *seen)
}

func TestActor_NameClaimWins(t *testing.T) {
	router, seen := newActorRouter(ActorConfig{Secret: testSecret})

	claims := ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-17",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: "Payroll Clerk",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payroll Clerk", *seen)
}

func TestActor_Rejections(t *testing.T) {
	expired, err := SignActorToken(testSecret, "growerpay", "jdoe", -time.Hour)
	require.NoError(t, err)
	otherIssuer, err := SignActorToken(testSecret, "someone-else", "jdoe", time.Hour)
	require.NoError(t, err)
	wrongKey, err := SignActorToken([]byte("another-secret-another-secret-!!"), "growerpay", "jdoe", time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "jdoe"}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"not bearer", "Basic abc", dto.ErrCodeUnauthorized},
		{"garbage token", BearerPrefix + "not.a.token", dto.ErrCodeUnauthorized},
		{"expired", BearerPrefix + expired, dto.ErrCodeTokenExpired},
		{"wrong issuer", BearerPrefix + otherIssuer, dto.ErrCodeUnauthorized},
		{"wrong key", BearerPrefix + wrongKey, dto.ErrCodeUnauthorized},
		{"no expiry", BearerPrefix + noExpiry, dto.ErrCodeUnauthorized},
	}

	router, _ := newActorRouter(ActorConfig{Secret: testSecret, Issuer: "growerpay"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestActor_HeaderFallback(t *testing.T) {
	t.Run("accepted when enabled", func(t *testing.T) {
		router, seen := newActorRouter(ActorConfig{Secret: testSecret, AllowActorHeader: true})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(ActorHeader, " dev-clerk ")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dev-clerk", *seen)
	})

	t.Run("ignored when disabled", func(t *testing.T) {
		router, _ := newActorRouter(ActorConfig{Secret: testSecret})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(ActorHeader, "dev-clerk")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestActor_SkipPaths(t *testing.T) {
	router, seen := newActorRouter(ActorConfig{Secret: testSecret, SkipPaths: []string{"/health"}})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, *seen)
}
