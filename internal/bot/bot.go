package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/users"
)

type DialogStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type UserStore interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	UpsertFromTelegram(ctx context.Context, tg users.Telegram, role users.Role) (*users.User, error)
	SaveContact(ctx context.Context, tgID int64, name, phone string) error
}

type QuoteMetrics interface {
	QuoteComputed(channel string)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	log     *slog.Logger
	users   UserStore
	states  DialogStore
	catalog *calculator.CatalogService
	orders  *orders.Service
	admins  map[int64]bool
	metrics QuoteMetrics
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	usersRepo UserStore, statesRepo DialogStore,
	catalog *calculator.CatalogService, ordersSvc *orders.Service,
	adminIDs []int64, m QuoteMetrics) *Bot {

	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Bot{
		api: api, log: log, users: usersRepo, states: statesRepo,
		catalog: catalog, orders: ordersSvc,
		admins: admins, metrics: m,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	if cb.Message == nil {
		return
	}
	b.handleCallback(ctx, cb)
}

// isAdmin — админы задаются в конфиге; роль в users только отражает это.
func (b *Bot) isAdmin(tgID int64) bool { return b.admins[tgID] }
