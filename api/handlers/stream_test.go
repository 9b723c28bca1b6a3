package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api/handlers"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

type streamFrame struct {
	Type     string             `json:"type"`
	Data     reconcile.Snapshot `json:"data"`
	Degraded bool               `json:"degraded"`
}

func readFrame(t *testing.T, conn *websocket.Conn) streamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f streamFrame
	require.NoError(t, json.Unmarshal(msg, &f))
	return f
}

func TestStreamHub_SendsSnapshotsToClients(t *testing.T) {
	svc, r, _ := newCaseService(t, []models.Case{plainCase("R-1", models.RegionSavannah, models.StatusOpen)})
	r.On("SubmitCase", mock.Anything, mock.Anything).Return("R-2", nil)

	hub := handlers.NewStreamHub(svc)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Equal(t, "cases", first.Type)
	require.Len(t, first.Data.Cases, 1)
	assert.Equal(t, "R-1", first.Data.Cases[0].ID)

	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.Submit(context.Background(), plainCase("CASE-NEW", models.RegionSavannah, models.StatusNew))
	require.NoError(t, err)

	next := readFrame(t, conn)
	assert.Greater(t, next.Data.Seq, first.Data.Seq)
	assert.Len(t, next.Data.Cases, 2)
}

func TestStreamHub_CloseDisconnectsClients(t *testing.T) {
	svc, _, _ := newCaseService(t, nil)
	hub := handlers.NewStreamHub(svc)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestStreamHub_SkipsOlderSnapshots(t *testing.T) {
	svc, _, _ := newCaseService(t, []models.Case{plainCase("R-1", models.RegionSavannah, models.StatusOpen)})
	hub := handlers.NewStreamHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	current := svc.Snapshot()
	hub.Broadcast(current)
	first := readFrame(t, conn)
	assert.Equal(t, current.Seq, first.Data.Seq)

	stale := current
	stale.Cases = nil
	hub.Broadcast(stale)

	newer := current
	newer.Seq = current.Seq + 1
	hub.Broadcast(newer)

	next := readFrame(t, conn)
	assert.Equal(t, newer.Seq, next.Data.Seq)
	assert.Len(t, next.Data.Cases, 1)
}
