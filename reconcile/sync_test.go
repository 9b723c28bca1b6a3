package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	dbmocks "github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases/mocks"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile/mocks"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/remote"
)

func reviewedCase(id string) models.Case {
	reviewedAt := fixedNow.Add(time.Hour)
	return models.Case{
		ID:           id,
		Title:        "Illegal Mining - Ashanti",
		Description:  "excavators near the Offin river",
		Region:       models.RegionAshanti,
		Type:         "Illegal Mining",
		Status:       models.StatusVerified,
		Verification: models.VerificationVerified,
		Priority:     models.PriorityCritical,
		AssignedTo:   "officer.mensah",
		Reporter:     models.Reporter{Anonymous: true},
		Evidence:     []models.Evidence{{Type: models.EvidencePhoto, FileURL: "https://example.test/p.jpg", FileName: "p.jpg"}},
		ReviewedBy:   "inspector@goldguard.gh",
		ReviewedAt:   &reviewedAt,
		CreatedAt:    fixedNow,
		UpdatedAt:    reviewedAt,
	}
}

func TestService_SyncPendingCarriesReviewState(t *testing.T) {
	local := sqliteLocal(t)
	ctx := context.Background()
	require.NoError(t, local.Put(ctx, reviewedCase("CASE-1")))

	r := &mocks.RemoteStore{}
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("GG-1", nil).Once()
	r.On("UpdateCase", mock.Anything, mock.Anything).Return(nil)

	s := newService(r, local)
	n, err := s.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r.AssertCalled(t, "UpdateCase", mock.Anything, mock.MatchedBy(func(c models.Case) bool {
		return c.ID == "GG-1" &&
			c.Status == models.StatusVerified &&
			c.Verification == models.VerificationVerified &&
			c.AssignedTo == "officer.mensah" &&
			c.ReviewedBy == "inspector@goldguard.gh" &&
			c.SyncedAs == ""
	}))

	remaining, err := local.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	got, err := s.Find(ctx, "GG-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, got.Status)
	assert.Equal(t, models.OriginRemote, got.Source)
}

func TestService_SyncPendingFreshReportSkipsUpdate(t *testing.T) {
	local := sqliteLocal(t)
	ctx := context.Background()
	require.NoError(t, local.Put(ctx, models.Case{
		ID: "CASE-1", Status: models.StatusNew, Verification: models.VerificationPending, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}))

	r := &mocks.RemoteStore{}
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("GG-1", nil)

	_, err := newService(r, local).SyncPending(ctx)
	require.NoError(t, err)
	r.AssertNotCalled(t, "UpdateCase", mock.Anything, mock.Anything)
}

func TestService_SyncPendingUpdateFailureKeepsCaseQueued(t *testing.T) {
	local := sqliteLocal(t)
	ctx := context.Background()
	require.NoError(t, local.Put(ctx, reviewedCase("CASE-1")))

	r := &mocks.RemoteStore{}
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("GG-1", nil).Once()
	r.On("UpdateCase", mock.Anything, mock.Anything).Return(errRemoteDown).Once()
	r.On("UpdateCase", mock.Anything, mock.Anything).Return(nil).Once()

	s := newService(r, local)
	n, err := s.SyncPending(ctx)
	assert.ErrorIs(t, err, errRemoteDown)
	assert.Equal(t, 0, n)

	queued, err := local.Get(ctx, "CASE-1")
	require.NoError(t, err)
	assert.Equal(t, "GG-1", queued.SyncedAs)

	n, err = s.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	r.AssertNumberOfCalls(t, "SubmitCase", 1)
	r.AssertNumberOfCalls(t, "UpdateCase", 2)
}

// deleteFailsOnce is a pending queue whose first Delete fails
type deleteFailsOnce struct {
	*localstore.SQLiteStore
	failed bool
}

func (d *deleteFailsOnce) Delete(ctx context.Context, id string) error {
	if !d.failed {
		d.failed = true
		return errors.New("database is locked")
	}
	return d.SQLiteStore.Delete(ctx, id)
}

func TestService_SyncPendingResendUpsertsAcceptedCase(t *testing.T) {
	local := &deleteFailsOnce{SQLiteStore: sqliteLocal(t)}
	ctx := context.Background()
	require.NoError(t, local.Put(ctx, models.Case{ID: "CASE-1", Status: models.StatusNew, CreatedAt: fixedNow, UpdatedAt: fixedNow}))

	r := &mocks.RemoteStore{}
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("GG-1", nil).Once()
	r.On("UpdateCase", mock.Anything, mock.MatchedBy(func(c models.Case) bool { return c.ID == "GG-1" })).Return(nil)

	s := newService(r, local)
	_, err := s.SyncPending(ctx)
	var pe *localstore.PersistenceError
	require.ErrorAs(t, err, &pe)

	n, err := s.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r.AssertNumberOfCalls(t, "SubmitCase", 1)
	r.AssertNumberOfCalls(t, "UpdateCase", 1)
	assert.Equal(t, []string{"GG-1"}, ids(s.Snapshot().Cases))
}

func TestService_SavePreservesSyncedAs(t *testing.T) {
	local := sqliteLocal(t)
	ctx := context.Background()
	require.NoError(t, local.Put(ctx, models.Case{ID: "CASE-1", SyncedAs: "GG-1", CreatedAt: fixedNow}))

	s := newService(&mocks.RemoteStore{}, local)
	_, err := s.Save(ctx, models.Case{ID: "CASE-1", Source: models.OriginLocalPending, AssignedTo: "officer.asante", CreatedAt: fixedNow})
	require.NoError(t, err)

	stored, err := local.Get(ctx, "CASE-1")
	require.NoError(t, err)
	assert.Equal(t, "GG-1", stored.SyncedAs)
	assert.Equal(t, "officer.asante", stored.AssignedTo)
}

func TestService_SubmitReviewedCaseUpdatesRemote(t *testing.T) {
	r := &mocks.RemoteStore{}
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("GG-9", nil)
	r.On("UpdateCase", mock.Anything, mock.Anything).Return(nil)

	c, err := newService(r, &mocks.LocalStore{}).Submit(context.Background(), reviewedCase("CASE-9"))
	require.NoError(t, err)

	assert.Equal(t, "GG-9", c.ID)
	r.AssertCalled(t, "UpdateCase", mock.Anything, mock.MatchedBy(func(c models.Case) bool {
		return c.ID == "GG-9" && c.Status == models.StatusVerified
	}))
}

// intakeBackend is a case API that, like a real report intake endpoint, keeps only the
// report fields on submit and starts every case as New
type intakeBackend struct {
	mu    sync.Mutex
	down  atomic.Bool
	next  int
	order []string
	cases map[string]map[string]interface{}
}

func newIntakeBackend() *intakeBackend {
	return &intakeBackend{cases: map[string]map[string]interface{}{}}
}

func (b *intakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/cases":
		list := make([]map[string]interface{}, 0, len(b.order))
		for _, id := range b.order {
			list = append(list, b.cases[id])
		}
		_ = json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodPost && r.URL.Path == "/reports/submit":
		var sub map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.next++
		id := fmt.Sprintf("GG-%d", b.next)
		b.order = append(b.order, id)
		b.cases[id] = map[string]interface{}{
			"caseId":      id,
			"title":       fmt.Sprintf("%v - %v", sub["subject"], sub["region"]),
			"description": sub["message"],
			"region":      sub["region"],
			"status":      "New",
			"priority":    sub["priority"],
			"createdAt":   sub["createdAt"],
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "caseId": id})
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/cases/"):
		id := strings.TrimPrefix(r.URL.Path, "/cases/")
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, ok := b.cases[id]; !ok {
			b.order = append(b.order, id)
		}
		b.cases[id] = body
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestService_SyncPendingHTTPRemoteKeepsReviewState(t *testing.T) {
	backend := newIntakeBackend()
	srv := httptest.NewServer(backend)
	defer srv.Close()

	ctx := context.Background()
	s := newService(remote.NewClient(srv.URL, remote.Options{Token: "t"}), sqliteLocal(t))

	backend.down.Store(true)
	queued, err := s.Submit(ctx, models.Case{
		ID:          "CASE-1718000000000-AB12CD34E",
		Title:       "Illegal Mining - Ashanti",
		Description: "excavators near the Offin river",
		Region:      models.RegionAshanti,
		Type:        "Illegal Mining",
		Status:      models.StatusNew,
		Priority:    models.PriorityHigh,
		Reporter:    models.Reporter{Anonymous: true},
		Evidence:    []models.Evidence{},
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	})
	require.NoError(t, err)
	require.Equal(t, models.OriginLocalPending, queued.Source)

	queued.Status = models.StatusVerified
	queued.Verification = models.VerificationVerified
	queued.AssignedTo = "officer.mensah"
	queued.ReviewedBy = "inspector@goldguard.gh"
	_, err = s.Save(ctx, queued)
	require.NoError(t, err)

	backend.down.Store(false)
	n, err := s.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap := s.Refresh(ctx)
	require.True(t, snap.RemoteOK)
	require.Len(t, snap.Cases, 1)
	got := snap.Cases[0]
	assert.Equal(t, "GG-1", got.ID)
	assert.Equal(t, models.OriginRemote, got.Source)
	assert.Equal(t, models.StatusVerified, got.Status)
	assert.Equal(t, models.VerificationVerified, got.Verification)
	assert.Equal(t, "officer.mensah", got.AssignedTo)
	assert.Equal(t, "inspector@goldguard.gh", got.ReviewedBy)
}

func TestService_SyncPendingMongoRemoteKeepsReviewState(t *testing.T) {
	ctx := context.Background()
	local := sqliteLocal(t)
	require.NoError(t, local.Put(ctx, reviewedCase("CASE-1")))

	db := &dbmocks.CaseDatabase{}
	db.On("InsertOne", mock.Anything, mock.Anything).Return(&dbmocks.InsertOneResultHelper{}, nil)
	db.On("ReplaceOne", mock.Anything, bson.M{"_id": "CASE-1"}, mock.MatchedBy(func(c models.Case) bool {
		return c.Status == models.StatusVerified &&
			c.Verification == models.VerificationVerified &&
			c.AssignedTo == "officer.mensah"
	}), mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	n, err := newService(remote.NewMongoStore(db), local).SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	db.AssertNumberOfCalls(t, "ReplaceOne", 1)
}

func TestService_SubscribersSeeIncreasingSequences(t *testing.T) {
	r := &mocks.RemoteStore{}
	l := &mocks.LocalStore{}
	r.On("FetchCases", mock.Anything).Return([]models.Case{{ID: "A"}}, nil)
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("", nil)
	l.On("List", mock.Anything).Return([]models.Case{}, nil)

	s := newService(r, l)
	var (
		mu   sync.Mutex
		seen []uint64
	)
	s.Subscribe(func(snap reconcile.Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Seq)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Refresh(context.Background())
		}()
		go func(i int) {
			defer wg.Done()
			_, _ = s.Submit(context.Background(), models.Case{ID: fmt.Sprintf("CASE-%d", i)})
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, s.Snapshot().Seq, seen[len(seen)-1])
}
