package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/utils"
)

// Event types
const (
	EventMenuCreate  = "menu_create"
	EventMenuUpdate  = "menu_update"
	EventMenuDelete  = "menu_delete"
	EventOrderCreate = "order_create"
	EventOrderUpdate = "order_update"
	EventOrderDelete = "order_delete"
	EventTableCreate = "table_create"
	EventTableUpdate = "table_update"
	EventTableDelete = "table_delete"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// EventFor maps a collection change to the event name clients listen for.
// Returns "" for collections the hub does not announce.
func EventFor(collection, action string) string {
	var kind string
	switch collection {
	case database.CollectionMenuItems:
		kind = "menu"
	case database.CollectionOrders:
		kind = "order"
	case database.CollectionTables:
		kind = "table"
	default:
		return ""
	}

	switch action {
	case models.ActionInsert:
		return kind + "_create"
	case models.ActionUpdate:
		return kind + "_update"
	case models.ActionDelete:
		return kind + "_delete"
	}
	return ""
}

// Hub menampung semua client KDS (kitchen, staff, admin) yang tersambung
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// Register -> menambahkan connection dengan role
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	utils.InfoLogger.WithField("role", role).Debug("kds client registered")
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.unregister(conn)
}

func (h *Hub) unregister(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Serve registers conn and blocks reading until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, role string) {
	h.Register(conn, role)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends msg to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("kds: marshal message")
		return 0
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"role":  role,
				"event": msg.Event,
			}).WithError(err).Warn("kds: dropping client")
			h.unregister(conn)
			continue
		}
		sent++
	}
	return sent
}

// Send satisfies the change monitor sink contract.
func (h *Hub) Send(_ context.Context, msg Message) error {
	h.Broadcast(msg)
	return nil
}
