package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/chatbot"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func TestSetupMetricsExposesChatbotMetrics(t *testing.T) {
	reg, handler := setupMetrics()
	m := metrics.NewChatbotMetrics(reg)
	m.ObserveTurn("booked")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "clinic_chatbot_turns_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, connectPostgresPool(context.Background(), "", logger))
}

func TestSetupSessionStoreDefaultsToMemory(t *testing.T) {
	store, err := setupSessionStore(context.Background(), &appconfig.Config{}, logging.New("error"))
	require.NoError(t, err)
	assert.IsType(t, &chatbot.MemorySessionStore{}, store)
}

func TestSetupSessionStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{SessionBackend: appconfig.SessionBackendRedis, RedisAddr: mr.Addr()}

	store, err := setupSessionStore(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	rs, ok := store.(*chatbot.RedisSessionStore)
	require.True(t, ok)
	defer rs.Close()
	assert.NoError(t, rs.Ping(context.Background()))
}

func TestSetupSessionStoreRejectsUnknownBackend(t *testing.T) {
	_, err := setupSessionStore(context.Background(), &appconfig.Config{SessionBackend: "etcd"}, logging.New("error"))
	assert.Error(t, err)
}

func TestBuildInMemoryServesHealth(t *testing.T) {
	cfg := &appconfig.Config{
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		CORSAllowedOrigins: []string{"*"},
		Timezone:           "UTC",
		SessionBackend:     appconfig.SessionBackendMemory,
		SeedDefaultUsers:   true,
	}
	a, err := build(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	defer a.close()

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuildRequiresJWTSecret(t *testing.T) {
	_, err := build(context.Background(), &appconfig.Config{}, logging.New("error"))
	assert.Error(t, err)
}
