package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/goshare/internal/bot"
	config "github.com/mwantia/goshare/internal/config/server"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/internal/service"
	"github.com/mwantia/goshare/internal/web"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/log"
)

type GoShareAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store    *store.SQLiteStore
	gw       *gateway.TelegramGateway
	gate     *service.AccessGate
	delivery *service.Delivery
	expiry   *service.ExpiryScheduler
	sessions *service.SessionStore
	stats    *service.Stats
	bot      *bot.Bot
	web      *web.Server
}

func NewAgent(cfg *config.BaseServerConfig) *GoShareAgent {
	return &GoShareAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("goshare", cfg.Log),
	}
}

// setupServices builds the service graph in dependency order and registers
// the pieces in the container.
func (gsa *GoShareAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	gsa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](gsa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(gsa.log)))

	gsa.log.Debug("Connecting database '%s'...", gsa.cfg.Database.Path)
	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: gsa.cfg.Database.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect store: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	gsa.store = s
	errs.Add(container.Register[store.SQLiteStore](gsa.sc,
		container.With[store.Store](),
		container.WithInstance(s)))

	gsa.log.Debug("Authenticating against the Bot API...")
	gw, err := gateway.NewTelegramGateway(gsa.cfg.Telegram.BotToken, gsa.log.Named("gateway"))
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	gsa.gw = gw
	errs.Add(container.Register[gateway.TelegramGateway](gsa.sc,
		container.With[gateway.Gateway](),
		container.WithInstance(gw)))

	gsa.gate = service.NewAccessGate(gw,
		gsa.cfg.Telegram.ForceSubChannelIDs,
		gsa.cfg.Delivery.GateCacheTTLDuration(),
		gsa.log.Named("gate"))

	gsa.expiry = service.NewExpiryScheduler(s, gw,
		gsa.cfg.Delivery.SweepIntervalDuration(),
		gsa.cfg.Messages.AutoDeleteSuccess,
		gsa.log.Named("expiry"))

	gsa.delivery = service.NewDelivery(s, gw, gsa.gate, gsa.expiry, service.DeliveryConfig{
		ArchiveChannelID: gsa.cfg.Telegram.ArchiveChannelID,
		ProtectContent:   gsa.cfg.Delivery.ProtectContent,
		CaptionTemplate:  gsa.cfg.Messages.CustomCaption,
		AutoDelete:       gsa.cfg.Delivery.AutoDeleteDuration(),
	}, gsa.log.Named("delivery"))

	// A persisted runtime override takes precedence over the config value.
	if value, ok, err := s.GetSetting(ctx, "auto_delete_seconds"); err != nil {
		gsa.log.Warn("Failed to read auto-delete setting: %v", err)
	} else if ok {
		if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
			gsa.delivery.SetAutoDelete(time.Duration(seconds) * time.Second)
		}
	}

	gsa.sessions = service.NewSessionStore(gsa.cfg.Delivery.SessionTimeoutDuration())
	gsa.stats = service.NewStats(s)

	gsa.bot = bot.New(gw, s, gsa.gate, gsa.delivery, gsa.sessions, gsa.stats,
		gsa.cfg, gsa.log.Named("bot"))

	if gsa.cfg.Web.Enabled {
		gsa.web = web.NewServer(gsa.cfg.Web.Listen, s, gsa.stats, gsa.log.Named("web"))
	}

	return errs.Errors()
}

// verifyChannels logs the resolved archive and force-sub channels so a
// misconfigured id is visible at startup instead of at first delivery.
func (gsa *GoShareAgent) verifyChannels(ctx context.Context) {
	ids := append([]int64{gsa.cfg.Telegram.ArchiveChannelID}, gsa.cfg.Telegram.ForceSubChannelIDs...)
	for _, id := range ids {
		chat, err := gsa.gw.GetChat(ctx, id)
		if err != nil {
			gsa.log.Warn("Channel %d could not be resolved: %v", id, err)
			continue
		}
		gsa.log.Info("Channel %d resolved as '%s'", id, chat.Title)
	}
}

func (gsa *GoShareAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gsa.mutex.Lock()

	if err := gsa.setupServices(ctx); err != nil {
		gsa.mutex.Unlock()
		return err
	}

	gsa.log.Info("Starting as '@%s'", gsa.gw.Username())
	if gsa.cfg.Telegram.IsForceSubEnabled() {
		gsa.log.Info("Subscription gate active for %d channel(s)", len(gsa.cfg.Telegram.ForceSubChannelIDs))
	} else {
		gsa.log.Info("Subscription gate disabled, no channels configured")
	}
	gsa.verifyChannels(ctx)

	gsa.expiry.Start(ctx)
	if gsa.web != nil {
		gsa.web.Start()
	}

	updates := gsa.gw.Updates(gsa.cfg.Telegram.UpdateTimeout)
	gsa.wait.Add(1)
	go func() {
		defer gsa.wait.Done()
		gsa.bot.Run(ctx, updates)
	}()

	gsa.mutex.Unlock()
	<-ctx.Done()

	gsa.log.Info("Shutting down...")

	timeout, err := time.ParseDuration(gsa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gsa.gw.StopUpdates()
	gsa.expiry.Stop()
	if gsa.web != nil {
		if err := gsa.web.Shutdown(shutdown); err != nil {
			gsa.log.Warn("Web server shutdown failed: %v", err)
		}
	}

	if err := gsa.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	if err := gsa.store.Close(); err != nil {
		gsa.log.Warn("Failed to close store: %v", err)
	}

	gsa.wait.Wait()
	return nil
}
