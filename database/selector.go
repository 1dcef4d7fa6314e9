package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SelectorConfig struct {
	Driver       string
	DSN          string
	FallbackDir  string
	Namespace    string
	ProbeTimeout time.Duration
}

// Selector probes the primary engine once, on first use, and hands out the
// backend for each collection. The decision holds for the process lifetime.
type Selector struct {
	cfg  SelectorConfig
	open func() (*gorm.DB, error)

	once sync.Once
	mode Mode
	db   *gorm.DB
	err  error

	mu       sync.Mutex
	backends map[string]Backend
}

func NewSelector(cfg SelectorConfig) *Selector {
	s := newSelector(cfg)
	s.open = s.openPrimary
	return s
}

// NewSelectorWithOpener probes with a caller supplied opener instead of the
// configured driver.
func NewSelectorWithOpener(cfg SelectorConfig, open func() (*gorm.DB, error)) *Selector {
	s := newSelector(cfg)
	s.open = open
	return s
}

func newSelector(cfg SelectorConfig) *Selector {
	if cfg.Namespace == "" {
		cfg.Namespace = "orderin"
	}
	if cfg.FallbackDir == "" {
		cfg.FallbackDir = "data"
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Selector{cfg: cfg, backends: make(map[string]Backend)}
}

func (s *Selector) Mode() Mode {
	s.probe()
	return s.mode
}

// DB returns the primary engine's handle, nil in fallback mode.
func (s *Selector) DB() *gorm.DB {
	s.probe()
	return s.db
}

// ProbeError is the reason the primary engine was rejected, if it was.
func (s *Selector) ProbeError() error {
	s.probe()
	return s.err
}

func (s *Selector) Backend(collection string) Backend {
	s.probe()

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.backends[collection]; ok {
		return b
	}

	var b Backend
	if s.mode == ModePrimary {
		b = NewDocumentEngine(s.db, collection)
	} else {
		b = NewSnapshotStore(s.cfg.FallbackDir, s.cfg.Namespace, collection)
	}
	s.backends[collection] = b
	return b
}

func (s *Selector) probe() {
	s.once.Do(func() {
		db, err := s.open()
		if err == nil {
			err = Migrate(db)
		}
		if err != nil {
			s.mode = ModeFallback
			s.err = fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
			utils.InfoLogger.WithFields(logrus.Fields{
				"component": "database",
				"driver":    s.cfg.Driver,
				"dir":       s.cfg.FallbackDir,
			}).Warnf("Primary document engine unavailable, using snapshot files: %v", err)
			return
		}
		s.db = db
		s.mode = ModePrimary
		utils.InfoLogger.WithFields(logrus.Fields{
			"component": "database",
			"driver":    s.cfg.Driver,
		}).Info("Primary document engine ready")
	})
}

func (s *Selector) openPrimary() (*gorm.DB, error) {
	dialector, err := Dialector(s.cfg.Driver, s.cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d := strings.ToLower(s.cfg.Driver); d == "" || strings.HasPrefix(d, "sqlite") {
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProbeTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
