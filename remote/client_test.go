package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

const casesJSON = `[
	{"caseId":"GG-100","title":"Illegal Mining - Ashanti","region":"Ashanti","type":"Illegal Mining",
	 "status":"Solved","priority":"high","createdAt":"2024-02-01T10:00:00Z","updatedAt":"2024-02-02T10:00:00Z",
	 "reporter":{"isAnonymous":false,"fullName":"Yaw"}},
	{"caseId":"GG-101","title":"Other - Oti","region":"oti","status":"Bogus","priority":"","createdAt":"2024-02-03T10:00:00Z"},
	{"title":"no id"}
]`

func TestClient_FetchCasesBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cases", r.URL.Path)
		assert.Equal(t, "Bearer static-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(casesJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{Token: "static-token"})
	cases, err := c.FetchCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "GG-100", cases[0].ID)
	assert.Equal(t, models.StatusResolved, cases[0].Status)
	assert.Equal(t, models.PriorityHigh, cases[0].Priority)
	assert.Equal(t, models.OriginRemote, cases[0].Source)
	assert.False(t, cases[0].Reporter.Anonymous)

	assert.Equal(t, models.RegionOti, cases[1].Region)
	assert.Equal(t, models.StatusNew, cases[1].Status)
	assert.Equal(t, models.PriorityMedium, cases[1].Priority)
	assert.True(t, cases[1].Reporter.Anonymous)
	assert.False(t, cases[1].UpdatedAt.Before(cases[1].CreatedAt))
}

func TestClient_FetchCasesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"cases":` + casesJSON + `}`))
	}))
	defer srv.Close()

	cases, err := NewClient(srv.URL, Options{Token: "t"}).FetchCases(context.Background())
	require.NoError(t, err)
	assert.Len(t, cases, 2)
}

func TestClient_NoCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, Options{}).FetchCases(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.False(t, called)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, Options{Token: "t"}).FetchCases(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{Token: "t", Timeout: 20 * time.Millisecond})
	_, err := c.FetchCases(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestClient_ServiceJWT(t *testing.T) {
	secret := "shared-secret"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !tok.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cases, err := NewClient(srv.URL, Options{JWTSecret: secret}).FetchCases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cases)

	_, err = NewClient(srv.URL, Options{JWTSecret: "wrong"}).FetchCases(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestClient_SubmitCase(t *testing.T) {
	var got submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reports/submit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"caseId":"GG-555"}`))
	}))
	defer srv.Close()

	cs := models.Case{
		ID:          "CASE-1-ABC",
		Title:       "Water Pollution - Western",
		Description: "the river is brown",
		Region:      models.RegionWestern,
		Type:        "Water Pollution",
		Reporter:    models.Reporter{Anonymous: true},
	}
	id, err := NewClient(srv.URL, Options{Token: "t"}).SubmitCase(context.Background(), cs)
	require.NoError(t, err)

	assert.Equal(t, "GG-555", id)
	assert.Equal(t, "Water Pollution", got.Subject)
	assert.Equal(t, "Western", got.Region)
	assert.Equal(t, "the river is brown", got.Message)
	assert.True(t, got.IsAnonymous)
	assert.Equal(t, "CASE-1-ABC", got.CaseID)
}

func TestClient_SubmitCaseKeepsLocalIDWhenBackendIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL, Options{Token: "t"}).SubmitCase(context.Background(), models.Case{ID: "CASE-9"})
	require.NoError(t, err)
	assert.Equal(t, "CASE-9", id)
}

func TestClient_SubmitCaseRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"duplicate"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, Options{Token: "t"}).SubmitCase(context.Background(), models.Case{ID: "CASE-9"})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			var wc wireCase
			require.NoError(t, json.NewDecoder(r.Body).Decode(&wc))
			assert.Equal(t, "Verified", wc.Status)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Options{Token: "t"})
	require.NoError(t, c.UpdateCase(context.Background(), models.Case{ID: "GG-1", Status: models.StatusVerified}))
	require.NoError(t, c.DeleteCase(context.Background(), "GG-1"))

	assert.Equal(t, []string{"PUT /cases/GG-1", "DELETE /cases/GG-1"}, methods)
}

func TestSubjectOf(t *testing.T) {
	assert.Equal(t, "Illegal Mining", subjectOf(models.Case{Title: "Illegal Mining - Bono East", Region: models.RegionBonoEast}))
	assert.Equal(t, "Safety", subjectOf(models.Case{Title: "custom", Type: "Safety"}))
	assert.Equal(t, "custom", subjectOf(models.Case{Title: "custom"}))
}
