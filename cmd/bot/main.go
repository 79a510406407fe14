package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/monument-calc/internal/bot"
	"github.com/Spok95/monument-calc/internal/config"
	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/users"
	"github.com/Spok95/monument-calc/internal/infra/db"
	httpx "github.com/Spok95/monument-calc/internal/infra/http"
	"github.com/Spok95/monument-calc/internal/infra/logger"
	"github.com/Spok95/monument-calc/internal/infra/metrics"
)

// storage — хранилища по выбранному драйверу.
type storage struct {
	catalog calculator.Store
	users   bot.UserStore
	dialogs bot.DialogStore
	orders  orders.Repository
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*storage, error) {
	if !cfg.NeedsPostgres() {
		log.Warn("storage driver is memory, data will be lost on restart")
		return &storage{
			catalog: calculator.NewMemStore(),
			users:   users.NewMemRepo(),
			dialogs: dialog.NewMemRepo(),
			orders:  orders.NewMemRepo(),
			close:   func() {},
		}, nil
	}

	if err := db.Migrate(cfg.Postgres.DSN, cfg.Postgres.Migrations, log); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	log.Info("db connected")

	st := &storage{
		catalog: calculator.NewPGStore(pool),
		users:   users.NewRepo(pool),
		dialogs: dialog.NewRepo(pool),
		orders:  orders.NewRepo(pool),
		close:   pool.Close,
	}
	if cfg.Storage.Driver == config.DriverPebble {
		ps, err := calculator.NewPebbleStore(cfg.Storage.PebbleDir)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("catalog stored in pebble", "dir", cfg.Storage.PebbleDir)
		st.catalog = ps
		st.close = func() {
			if err := ps.Close(); err != nil {
				log.Error("pebble close failed", "err", err)
			}
			pool.Close()
		}
	}
	return st, nil
}

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	if cfg.App.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.App.Timezone); err == nil {
			time.Local = loc
		} else {
			log.Warn("unknown timezone, using system default", "tz", cfg.App.Timezone, "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.Storage.Driver, "err", err)
		return
	}
	defer st.close()

	m := metrics.New(nil)
	catalog := calculator.NewCatalogService(st.catalog, logger.Component(log, "calculator"), m)
	if _, err := catalog.LoadCatalog(ctx); err != nil {
		log.Error("catalog init failed", "err", err)
		return
	}

	// без токена работает только HTTP API
	var api *tgbotapi.BotAPI
	var notifier orders.Notifier
	if cfg.Telegram.Token != "" {
		api, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		log.Info("telegram authorized", "username", api.Self.UserName)
		if cfg.Telegram.AdminChatID != 0 {
			notifier = bot.NewNotifier(api, cfg.Telegram.AdminChatID)
		}
	} else {
		log.Warn("telegram token is empty, bot is disabled")
	}
	if notifier == nil {
		log.Warn("admin chat is not configured, orders are kept in the inbox only")
	}

	ordersSvc := orders.NewService(st.orders, notifier,
		orders.NewCooldown(cfg.Orders.Cooldown), logger.Component(log, "orders"), m)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled,
		httpx.NewAPI(catalog, ordersSvc, m, logger.Component(log, "api")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if api != nil {
		tg := bot.New(api, logger.Component(log, "bot"), st.users, st.dialogs,
			catalog, ordersSvc, cfg.Telegram.AdminIDs, m)
		g.Go(func() error {
			if err := tg.Run(gctx, cfg.Telegram.Timeout); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", "err", err)
		return
	}
	log.Info("graceful shutdown complete")
}
