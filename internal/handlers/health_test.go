package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/underwriter/internal/config"
)

// stubPinger is a Pinger that returns a fixed error.
type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func newHealthRouter(handler *HealthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handler.Health)
	router.GET("/health/ready", handler.Ready)
	router.GET("/api/v1/info", handler.Info)
	return router
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(nil, "test", config.StorageMemory)
	router := newHealthRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		db             *stubPinger
		storage        string
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "memory storage is always ready",
			storage:        config.StorageMemory,
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Storage: "memory", Database: "not_configured"},
		},
		{
			name:           "database connected",
			db:             &stubPinger{},
			storage:        config.StoragePostgres,
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Storage: "postgres", Database: "connected"},
		},
		{
			name:           "database unreachable",
			db:             &stubPinger{err: errors.New("connection refused")},
			storage:        config.StoragePostgres,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Storage: "postgres", Database: "disconnected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handler *HealthHandler
			if tt.db != nil {
				handler = NewHealthHandler(tt.db, "test", tt.storage)
			} else {
				handler = NewHealthHandler(nil, "test", tt.storage)
			}
			router := newHealthRouter(handler)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)

			if tt.db != nil {
				assert.Equal(t, 1, tt.db.calls)
			}
		})
	}
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		startTime   time.Time
		checkUptime bool
	}{
		{
			name:        "returns API info with development environment",
			env:         "development",
			startTime:   time.Now().Add(-2 * time.Hour),
			checkUptime: true,
		},
		{
			name:        "returns API info with production environment",
			env:         "production",
			startTime:   time.Now().Add(-24 * time.Hour),
			checkUptime: true,
		},
		{
			name:      "returns API info with test environment",
			env:       "test",
			startTime: time.Now(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(nil, tt.env, config.StorageMemory)
			handler.startTime = tt.startTime
			router := newHealthRouter(handler)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			assert.Equal(t, "memory", response.Storage)
			if tt.checkUptime {
				assert.NotEqual(t, "0h 0m 0s", response.Uptime)
			}
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"formats seconds only", 45 * time.Second, "0h 0m 45s"},
		{"formats minutes and seconds", 5*time.Minute + 30*time.Second, "0h 5m 30s"},
		{"formats hours, minutes and seconds", 2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{"formats days", 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
		{"formats exactly one day", 24 * time.Hour, "1d 0h 0m 0s"},
		{"formats zero duration", 0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestReadyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(ReadyResponse{Status: "ready", Storage: "postgres", Database: "connected"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ready","storage":"postgres","database":"connected"}`, string(data))
}

func BenchmarkHealthHandler_Health(b *testing.B) {
	router := newHealthRouter(NewHealthHandler(nil, "test", config.StorageMemory))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

func ExampleHealthHandler_Health() {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(nil, "development", config.StorageMemory)

	router := gin.New()
	router.GET("/health", handler.Health)

	fmt.Println("Health endpoint registered at /health")
	// Output: Health endpoint registered at /health
}
