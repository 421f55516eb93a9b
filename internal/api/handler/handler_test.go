package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonpair/backend/internal/api/handler"
	"anonpair/backend/internal/storage"
)

func newRouter(t *testing.T) (*gin.Engine, *storage.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewMemory()
	r := gin.New()
	handler.NewHandler(store, "test-secret").Register(r)
	return r, store
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatsRequiresToken(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatsWithIssuedToken(t *testing.T) {
	r, store := newRouter(t)

	require.NoError(t, store.SetLanguage(1, "en"))
	require.NoError(t, store.CreateChat(1, 2))
	require.NoError(t, store.AddToQueue(3, ""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp struct {
		Token  string `json:"token"`
		AnonID string `json:"anon_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.Token)
	require.NotEmpty(t, tokenResp.AnonID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalUsers  int64 `json:"total_users"`
		ActiveChats int64 `json:"active_chats"`
		InQueue     int64 `json:"in_queue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveChats)
	assert.Equal(t, int64(1), stats.InQueue)
}

func TestTokenFromDifferentSecretIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewMemory()

	issuer := gin.New()
	handler.NewHandler(store, "secret-a").Register(issuer)
	verifier := gin.New()
	handler.NewHandler(store, "secret-b").Register(verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	issuer.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)
	verifier.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
