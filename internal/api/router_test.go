package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/config"
	"github.com/jengzang/flight-delay-backend-go/internal/middleware"
	"github.com/jengzang/flight-delay-backend-go/internal/service"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func deps(t *testing.T, secret string) Deps {
	metrics := telemetry.New()
	loader := service.NewLoader(artifact.NewStore(t.TempDir()), nil, metrics)
	return Deps{
		Config:    &config.Config{JWTSecret: secret},
		Metrics:   metrics,
		Predictor: service.NewPredictor(loader, service.WithMetrics(metrics)),
		Limiter:   middleware.NewRateLimiter(100, time.Minute),
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := SetupRouter(deps(t, "s3cret"))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesDisabledWithoutSecret(t *testing.T) {
	r := SetupRouter(deps(t, ""))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	r := SetupRouter(deps(t, ""))

	for _, path := range []string{"/health", "/api/airports", "/api/airlines", "/api/model-info"} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/predict", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := SetupRouter(deps(t, ""))
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flight_delay_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
