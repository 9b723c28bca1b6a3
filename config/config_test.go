package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

func TestNew(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	conf := New()

	assert.Equal(t, RemoteMongo, conf.RemoteMode)
	assert.Equal(t, 8*time.Second, conf.RemoteTimeout)
	assert.Equal(t, 30*time.Second, conf.PollInterval)
	assert.Equal(t, 60*time.Second, conf.SyncInterval)
	assert.Equal(t, "8080", conf.Port)
}

func TestNewEnvironmentOverrides(t *testing.T) {
	t.Setenv("REMOTE_MODE", "HTTP")
	t.Setenv("REMOTE_BASE_URL", "https://cases.example.gh/api/")
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("ALERT_EMAILS", "epa@example.gh, , minerals@example.gh")
	conf := New()

	assert.Equal(t, RemoteHTTP, conf.RemoteMode)
	assert.Equal(t, "https://cases.example.gh/api", conf.RemoteBaseURL)
	assert.Equal(t, 5*time.Second, conf.PollInterval)
	assert.Equal(t, []string{"epa@example.gh", "minerals@example.gh"}, conf.AlertEmails)
}

func TestNewConfigFile(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME: fromfile\nSYNC_INTERVAL: 2m\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	conf := New()

	assert.Equal(t, "fromfile", conf.DatabaseName)
	assert.Equal(t, 2*time.Minute, conf.SyncInterval)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
