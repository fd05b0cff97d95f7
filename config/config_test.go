package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/models"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "test")
}

func TestNew(t *testing.T) {
	setRequiredEnv(t)
	conf, err := New()

	require.NoError(t, err)
	assert.Equal(t, "8000", conf.Port)
	assert.Equal(t, "/api/v1", conf.APIPrefix)
	assert.Equal(t, 587, conf.SMTPPort)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.CORSOrigins)
	assert.Equal(t, "smtp", conf.EmailProvider)
}

func TestNewSplitsCORSOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	conf, err := New()

	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, conf.CORSOrigins)
}

func TestNewMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_PASSWORD", "")
	_, err := New()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Environment: "production", SMTPPort: 465, EmailProvider: "smtp", EmailRatePerSecond: 1, APIPrefix: "/api/v1"}
	assert.NoError(t, valid.Validate())
	assert.True(t, valid.IsProduction())

	badEnv := valid
	badEnv.Environment = "qa"
	assert.Error(t, badEnv.Validate())

	badPort := valid
	badPort.SMTPPort = 70000
	assert.Error(t, badPort.Validate())

	sendgridNoKey := valid
	sendgridNoKey.EmailProvider = "sendgrid"
	assert.Error(t, sendgridNoKey.Validate())

	badPrefix := valid
	badPrefix.APIPrefix = "api"
	assert.Error(t, badPrefix.Validate())
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Detail)
}

func TestErrorStatusUnauthorizedSetsChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("Invalid admin credentials", http.StatusUnauthorized, rr, nil)

	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(0))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
