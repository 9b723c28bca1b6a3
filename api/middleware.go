package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases"
)

// TokenTTL is how long an admin token stays valid
const TokenTTL = 12 * time.Hour

// MiddlewareDB holds the admin store and the token signing secret
type MiddlewareDB struct {
	DB     databases.AdminDatabase
	Secret []byte
}

var authenticator auth.Authenticator
var cache store.Cache

// revoked maps logged-out tokens to their expiry
var revoked sync.Map

type adminContextKey struct{}

// Middleware adds some basic header authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		ctx := context.WithValue(r.Context(), adminContextKey{}, user.UserName())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminEmail returns the authenticated admin of the request, if any
func AdminEmail(r *http.Request) string {
	s, _ := r.Context().Value(adminContextKey{}).(string)
	return s
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateToken exchanges admin credentials for a signed token. Credentials come from a JSON
// body or, failing that, basic auth.
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Email == "" {
		email, password, ok := r.BasicAuth()
		if !ok {
			http.Error(w, `{"error": "email and password are required"}`, http.StatusUnauthorized)
			return
		}
		req = loginRequest{Email: email, Password: password}
	}

	info, err := m.ValidateUser(r.Context(), r, req.Email, req.Password)
	if err != nil {
		zap.S().Warnw("admin login failed", "email", req.Email, "error", err)
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	token, expires, err := m.IssueToken(info.UserName(), info.ID(), time.Now())
	if err != nil {
		http.Error(w, `{"error": "failed to issue token"}`, http.StatusInternalServerError)
		return
	}
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, info, r)

	response := map[string]string{
		"token":     token,
		"_id":       info.ID(),
		"email":     info.UserName(),
		"expiresAt": expires.UTC().Format(time.RFC3339),
	}
	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseBody)
}

// IssueToken signs an HS256 token for the admin
func (m MiddlewareDB) IssueToken(email, id string, now time.Time) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, errors.New("token secret is not configured")
	}
	expires := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":   email,
		"admin": id,
		"jti":   uuid.New().String(),
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return token, expires, nil
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), TokenTTL)
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(m.ValidateToken, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser checks an admin's email and bcrypt password
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	usernameHash := sha256.Sum256([]byte(email))

	admin, err := m.DB.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}
	if !admin.Active {
		return nil, fmt.Errorf("admin is disabled")
	}

	expectedUsernameHash := sha256.Sum256([]byte(admin.Email))
	usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	if usernameMatch {
		return auth.NewDefaultUser(admin.Email, admin.ID.Hex(), admin.Roles, nil), nil
	}
	return nil, fmt.Errorf("invalid credentials")
}

// ValidateToken verifies a bearer token issued by CreateToken. It runs on cache misses, so
// tokens survive a restart as long as the secret does.
func (m MiddlewareDB) ValidateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	if isRevoked(token) {
		return nil, errors.New("token revoked")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	email, _ := claims["sub"].(string)
	id, _ := claims["admin"].(string)
	if email == "" {
		return nil, errors.New("token has no subject")
	}
	return auth.NewDefaultUser(email, id, nil, nil), nil
}

// RevokeToken revokes a token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if reqToken == "" || strings.HasPrefix(reqToken, "Basic ") {
		http.Error(w, `{"error": "bearer token required"}`, http.StatusBadRequest)
		return
	}

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	revoked.Store(reqToken, time.Now().Add(TokenTTL))
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}

func isRevoked(token string) bool {
	v, ok := revoked.Load(token)
	if !ok {
		return false
	}
	if time.Now().After(v.(time.Time)) {
		revoked.Delete(token)
		return false
	}
	return true
}
