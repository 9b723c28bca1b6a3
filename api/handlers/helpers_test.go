package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile/mocks"
)

var errRemoteDown = errors.New("remote down")

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// newCaseService returns a service over a mocked remote holding remoteCases and an in-memory
// local queue seeded with pending
func newCaseService(t *testing.T, remoteCases []models.Case, pending ...models.Case) (*reconcile.Service, *mocks.RemoteStore, *localstore.SQLiteStore) {
	t.Helper()
	local, err := localstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	for _, c := range pending {
		require.NoError(t, local.Put(context.Background(), c))
	}

	r := &mocks.RemoteStore{}
	r.On("FetchCases", mock.Anything).Return(remoteCases, nil).Maybe()

	svc := reconcile.NewService(r, local, reconcile.Options{RemoteTimeout: time.Second})
	svc.Refresh(context.Background())
	return svc, r, local
}

func photoCase(id string, region models.Region) models.Case {
	return models.Case{
		ID:        id,
		Title:     "Illegal Mining - " + string(region),
		Region:    region,
		Type:      "Illegal Mining",
		Status:    models.StatusNew,
		Priority:  models.PriorityHigh,
		Evidence:  []models.Evidence{{Type: models.EvidencePhoto, FileURL: "https://example.test/p.jpg", FileName: "p.jpg"}},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func plainCase(id string, region models.Region, status models.CaseStatus) models.Case {
	return models.Case{
		ID:        id,
		Title:     "General - " + string(region),
		Region:    region,
		Type:      "General",
		Status:    status,
		Priority:  models.PriorityMedium,
		Evidence:  []models.Evidence{},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

// recordingNotifier captures alerted cases
type recordingNotifier struct {
	mu    sync.Mutex
	cases []models.Case
	done  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) CaseCreated(ctx context.Context, c models.Case) error {
	n.mu.Lock()
	n.cases = append(n.cases, c)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}
