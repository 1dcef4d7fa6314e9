package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/kds"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/utils"
	"gorm.io/gorm"
)

const changeBatchSize = 100

// ChangeEvent is one stored document change as announced to sinks.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Rev        string          `json:"rev,omitempty"`
	Action     string          `json:"action"`
	Event      string          `json:"event"`
	ChangedAt  time.Time       `json:"changedAt"`
	Doc        json.RawMessage `json:"doc,omitempty"`
}

// ChangeSink receives every change the monitor picks up.
type ChangeSink interface {
	Deliver(ctx context.Context, ev ChangeEvent) error
}

// HubSink forwards changes to websocket clients.
type HubSink struct {
	Hub *kds.Hub
}

func (s HubSink) Deliver(ctx context.Context, ev ChangeEvent) error {
	var data interface{} = map[string]string{"id": ev.ID}
	if len(ev.Doc) > 0 {
		data = ev.Doc
	}
	return s.Hub.Send(ctx, kds.Message{Event: ev.Event, Data: data})
}

type ChangeMonitor struct {
	DB       *gorm.DB
	Interval time.Duration
	sinks    []ChangeSink
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewChangeMonitor(db *gorm.DB, interval time.Duration, sinks ...ChangeSink) *ChangeMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &ChangeMonitor{
		DB:       db,
		Interval: interval,
		sinks:    sinks,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.Poll(context.Background()); err != nil {
					utils.ErrorLogger.WithError(err).Error("change monitor: poll failed")
				}
			case <-cm.stopChan:
				return
			}
		}
	}()
}

// Stop menghentikan polling dan menunggu goroutine selesai.
func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopChan) })
	<-cm.done
}

// Poll processes one batch of unprocessed changes and returns how many were
// marked processed. A change is marked even when a sink rejects it; sink
// errors are logged. Sinks run with no transaction open, so store writes are
// never held up by a slow client.
func (cm *ChangeMonitor) Poll(ctx context.Context) (int, error) {
	db := cm.DB.WithContext(ctx)

	var changes []models.DocumentChange
	if err := db.Where("processed = ?", false).
		Order("id ASC").
		Limit(changeBatchSize).
		Find(&changes).Error; err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		if ev, ok := cm.buildEvent(ctx, db, change); ok {
			cm.deliver(ctx, ev)
		}
		ids = append(ids, change.ID)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.DocumentChange{}).
			Where("id IN ?", ids).
			Update("processed", true).Error
	})
	if err != nil {
		return 0, err
	}

	utils.InfoLogger.WithField("count", len(ids)).Debug("change monitor: processed changes")
	return len(ids), nil
}

func (cm *ChangeMonitor) buildEvent(ctx context.Context, db *gorm.DB, change models.DocumentChange) (ChangeEvent, bool) {
	event := kds.EventFor(change.Collection, change.ActionType)
	if event == "" {
		return ChangeEvent{}, false
	}

	ev := ChangeEvent{
		Collection: change.Collection,
		ID:         change.DocID,
		Rev:        change.Rev,
		Action:     change.ActionType,
		Event:      event,
		ChangedAt:  change.ChangedAt,
	}
	if change.ActionType == models.ActionDelete {
		return ev, true
	}

	row, err := database.LoadDocument(ctx, db, change.Collection, change.DocID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Sudah dihapus sebelum sempat diproses; delete change menyusul.
		return ev, false
	case err != nil:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"collection": change.Collection,
			"id":         change.DocID,
		}).WithError(err).Error("change monitor: load document")
		return ev, false
	}
	ev.Doc = json.RawMessage(row.Body)
	return ev, true
}

func (cm *ChangeMonitor) deliver(ctx context.Context, ev ChangeEvent) {
	for _, sink := range cm.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"event": ev.Event,
				"id":    ev.ID,
			}).WithError(err).Warn("change monitor: sink rejected change")
		}
	}
}
