package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases/mocks"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

func testAdmin(t *testing.T, password string) *models.AdminUser {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        "head@goldguard.gh",
		PasswordHash: string(hash),
		Active:       true,
		Roles:        []string{"admin"},
	}
}

func setupMiddleware(t *testing.T) (MiddlewareDB, *mocks.AdminDatabase, *models.AdminUser) {
	adb := &mocks.AdminDatabase{}
	admin := testAdmin(t, "s3cret")
	adb.On("FindOne", mock.Anything, bson.M{"email": "head@goldguard.gh"}).Return(admin, nil)
	adb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	m := MiddlewareDB{DB: adb, Secret: []byte("test-secret")}
	m.SetupGoGuardian()
	return m, adb, admin
}

func protected() http.Handler {
	return Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"admin": "` + AdminEmail(r) + `"}`))
	}))
}

func TestMiddleware_Unauthorized(t *testing.T) {
	setupMiddleware(t)

	rr := httptest.NewRecorder()
	protected().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/cases", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rr.Body.String())
}

func TestMiddleware_BasicAuth(t *testing.T) {
	setupMiddleware(t)

	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	req.SetBasicAuth("head@goldguard.gh", "s3cret")
	rr := httptest.NewRecorder()
	protected().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"admin": "head@goldguard.gh"}`, rr.Body.String())
}

func TestMiddleware_BadPassword(t *testing.T) {
	setupMiddleware(t)

	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	req.SetBasicAuth("head@goldguard.gh", "wrong")
	rr := httptest.NewRecorder()
	protected().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateToken_LoginAndLogout(t *testing.T) {
	m, _, admin := setupMiddleware(t)

	body := strings.NewReader(`{"email": "Head@GoldGuard.gh", "password": "s3cret"}`)
	rr := httptest.NewRecorder()
	m.CreateToken(rr, httptest.NewRequest("POST", "/api/v1/auth/login", body))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, admin.ID.Hex(), resp["_id"])
	token := resp["token"]
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	protected().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("DELETE", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	RevokeToken(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("GET", "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	protected().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateToken_InvalidCredentials(t *testing.T) {
	m, _, _ := setupMiddleware(t)

	rr := httptest.NewRecorder()
	m.CreateToken(rr, httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email": "nobody@goldguard.gh", "password": "x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	m.CreateToken(rr, httptest.NewRequest("POST", "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestValidateToken(t *testing.T) {
	m := MiddlewareDB{Secret: []byte("test-secret")}
	now := time.Now()

	token, expires, err := m.IssueToken("head@goldguard.gh", "abc", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(TokenTTL), expires, time.Second)

	info, err := m.ValidateToken(context.Background(), nil, token)
	require.NoError(t, err)
	assert.Equal(t, "head@goldguard.gh", info.UserName())
	assert.Equal(t, "abc", info.ID())

	expired, _, err := m.IssueToken("head@goldguard.gh", "abc", now.Add(-2*TokenTTL))
	require.NoError(t, err)
	_, err = m.ValidateToken(context.Background(), nil, expired)
	assert.Error(t, err)

	other := MiddlewareDB{Secret: []byte("other")}
	_, err = other.ValidateToken(context.Background(), nil, token)
	assert.Error(t, err)

	_, err = m.ValidateToken(context.Background(), nil, "asdfasdf")
	assert.Error(t, err)
}

func TestIssueToken_NoSecret(t *testing.T) {
	_, _, err := MiddlewareDB{}.IssueToken("a", "b", time.Now())
	assert.Error(t, err)
}

func TestValidateUser_Disabled(t *testing.T) {
	adb := &mocks.AdminDatabase{}
	admin := testAdmin(t, "pw")
	admin.Active = false
	adb.On("FindOne", mock.Anything, mock.Anything).Return(admin, nil)

	_, err := MiddlewareDB{DB: adb}.ValidateUser(context.Background(), nil, "head@goldguard.gh", "pw")
	assert.Error(t, err)

	adb = &mocks.AdminDatabase{}
	adb.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	_, err = MiddlewareDB{DB: adb}.ValidateUser(context.Background(), nil, "head@goldguard.gh", "pw")
	assert.Error(t, err)
}

func TestRevokeToken_Missing(t *testing.T) {
	setupMiddleware(t)
	rr := httptest.NewRecorder()
	RevokeToken(rr, httptest.NewRequest("DELETE", "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
