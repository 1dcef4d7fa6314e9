package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/config"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/kds"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/qr"
	"github.com/yeremiapane/orderin/router"
	"github.com/yeremiapane/orderin/services"
	"github.com/yeremiapane/orderin/storage"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	selector := database.NewSelector(database.SelectorConfig{
		Driver:      cfg.StoreDriver,
		DSN:         cfg.StoreDSN,
		FallbackDir: cfg.StoreFallbackDir,
		Namespace:   cfg.StoreNamespace,
	})

	gen := newQRGenerator(cfg)
	menus := store.NewMenuStore(selector.Backend(database.CollectionMenuItems))
	orders := store.NewOrderStore(selector.Backend(database.CollectionOrders))
	tables := store.NewTableStore(selector.Backend(database.CollectionTables), gen)

	if cfg.S3Enabled() {
		uploader, err := storage.NewAwsS3(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.S3PublicURL,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		})
		if err != nil {
			utils.ErrorLogger.Errorf("S3 disabled: %v", err)
		} else {
			tables.SetUploader(uploader)
		}
	}

	menus.Load(ctx)
	orders.Load(ctx)
	tables.Load(ctx)

	if cfg.SeedMenu {
		if _, err := services.SeedMenu(ctx, menus); err != nil {
			utils.ErrorLogger.Errorf("Menu seed failed: %v", err)
		}
	}

	auth, err := services.NewAuthService(
		services.Credential{Username: cfg.DemoAdminUsername, PIN: cfg.DemoAdminPIN, Role: models.RoleAdmin},
		services.Credential{Username: cfg.DemoStaffUsername, PIN: cfg.DemoStaffPIN, Role: models.RoleStaff},
		services.Credential{Username: cfg.DemoKitchenUsername, PIN: cfg.DemoKitchenPIN, Role: models.RoleKitchen},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid operator credentials: %v", err)
	}

	hub := kds.NewHub()

	// Change monitor hanya jalan di mode primary; snapshot files tidak punya change log.
	if selector.Mode() == database.ModePrimary {
		sinks := []services.ChangeSink{services.HubSink{Hub: hub}}
		if cfg.AMQPURL != "" {
			publisher, err := services.DialEventPublisher(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				utils.ErrorLogger.Errorf("AMQP publisher disabled: %v", err)
			} else {
				defer publisher.Close()
				sinks = append(sinks, publisher)
			}
		}
		monitor := services.NewChangeMonitor(selector.DB(), cfg.ChangeMonitorInterval, sinks...)
		monitor.Start()
		defer monitor.Stop()
	}

	go cleanupBlacklist(ctx, time.Hour)

	r := router.SetupRouter(router.Deps{
		Selector:       selector,
		Menus:          menus,
		Orders:         orders,
		Tables:         tables,
		Auth:           auth,
		Hub:            hub,
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.ErrorLogger.Errorf("Shutdown: %v", err)
		}
	}()

	utils.InfoLogger.WithFields(logrus.Fields{
		"port": cfg.Port,
		"mode": selector.Mode().String(),
	}).Info("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.ErrorLogger.Errorf("Server stopped: %v", err)
	}
}

func newQRGenerator(cfg *config.Config) *qr.Generator {
	var opts []qr.Option
	if cfg.QRRenderSurface == "raster" {
		opts = append(opts, qr.WithSurface(qr.PNGSurface{}))
	}
	return qr.NewGenerator(cfg.OrderingBaseURL, opts...)
}

func cleanupBlacklist(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := utils.CleanupBlacklist(now); n > 0 {
				utils.InfoLogger.WithField("removed", n).Debug("Expired tokens removed from blacklist")
			}
		}
	}
}
