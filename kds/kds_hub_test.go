package kds

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/models"
)

func TestEventFor(t *testing.T) {
	assert.Equal(t, EventMenuCreate, EventFor(database.CollectionMenuItems, models.ActionInsert))
	assert.Equal(t, EventOrderUpdate, EventFor(database.CollectionOrders, models.ActionUpdate))
	assert.Equal(t, EventTableDelete, EventFor(database.CollectionTables, models.ActionDelete))
	assert.Empty(t, EventFor("payments", models.ActionInsert))
	assert.Empty(t, EventFor(database.CollectionOrders, "TRUNCATE"))
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, "kitchen")
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestBroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	sent := hub.Broadcast(Message{Event: EventOrderCreate, Data: map[string]string{"id": "ORD-1"}})
	assert.Equal(t, 1, sent)

	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventOrderCreate, got.Event)
	assert.Equal(t, "ORD-1", got.Data["id"])
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Broadcast(Message{Event: EventMenuUpdate}))
}
