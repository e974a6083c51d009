package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/config"
	"github.com/vox-librorum/vox-desk/internal/library"
)

func offlineRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lib, err := library.Default()
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", CORSOrigins: []string{"http://localhost:3000"}},
		Auth: config.AuthConfig{
			SessionTTL:      time.Hour,
			CookieName:      "vox_session",
			LoginRatePerMin: 100,
		},
		Desk: config.DeskConfig{AssistantDelay: time.Millisecond, CommandDelay: time.Millisecond},
		App:  config.AppConfig{Environment: "test", OfflineMode: true},
	}
	dep := Deps{Config: cfg, Log: zap.NewNop(), Library: lib}

	svcs, err := NewServices(dep)
	require.NoError(t, err)
	return BuildRouter(RouterDeps{ServiceName: "vox-desk", Version: "test", Deps: dep, Services: svcs})
}

func TestNewServices_OnlineNeedsDatabase(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "s", SessionTTL: time.Hour}}
	_, err := NewServices(Deps{Config: cfg, Log: zap.NewNop()})
	assert.Error(t, err)

	cfg.Auth.JWTSecret = ""
	_, err = NewServices(Deps{Config: cfg, Log: zap.NewNop()})
	assert.Error(t, err)
}

func TestOfflineRouter_PassphraseDesk(t *testing.T) {
	r := offlineRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"offline"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/desk", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body, _ := json.Marshal(map[string]string{"username": "nova", "password": "NOVA"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"offline":true`)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/api/desk", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"activeId":"salt-line"`)

	req = httptest.NewRequest(http.MethodGet, "/api/library?q=ravens", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("development", "loud")
	assert.Error(t, err)
}
