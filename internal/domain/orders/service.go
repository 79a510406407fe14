package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	OrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, status Status, limit int) ([]Order, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// Notifier доставляет заявку людям (админский чат Telegram).
type Notifier interface {
	Notify(ctx context.Context, o Order) error
}

type Metrics interface {
	OrderSubmitted(source string)
	OrderFailed(reason string)
	OrderRateLimited(source string)
}

type noopMetrics struct{}

func (noopMetrics) OrderSubmitted(string)   {}
func (noopMetrics) OrderFailed(string)      {}
func (noopMetrics) OrderRateLimited(string) {}

// RateLimitError несёт время до следующей разрешённой заявки.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Minute))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

const (
	maxNameLen    = 100
	maxMessageLen = 4000
)

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

// ValidPhone — та же проверка телефона, что и при отправке заявки.
func ValidPhone(phone string) bool { return phoneRe.MatchString(strings.TrimSpace(phone)) }

type Service struct {
	repo     Repository
	notifier Notifier
	cooldown *Cooldown
	log      *slog.Logger
	metrics  Metrics
}

func NewService(repo Repository, notifier Notifier, cooldown *Cooldown, log *slog.Logger, m Metrics) *Service {
	if m == nil {
		m = noopMetrics{}
	}
	if cooldown == nil {
		cooldown = NewCooldown(0)
	}
	return &Service{repo: repo, notifier: notifier, cooldown: cooldown, log: log, metrics: m}
}

// Submit: проверка → кулдаун по key → запись во входящие → уведомление.
// Слот кулдауна занимается до записи и освобождается, если запись не удалась.
// Заявка, записанная во входящие, считается доставленной, даже если
// уведомление в чат не ушло: админ увидит её в разделе «Заявки».
func (s *Service) Submit(ctx context.Context, key string, req Request) (*Order, error) {
	const op = "orders.Service.Submit"
	req = normalizeRequest(req)
	log := s.log.With("key", key, "source", req.Source, "channel", req.Channel)

	if err := validateRequest(req); err != nil {
		s.metrics.OrderFailed("validation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if wait, ok := s.cooldown.Reserve(key); !ok {
		log.Info("order rate limited", "retry_after", wait)
		s.metrics.OrderRateLimited(req.Source)
		return nil, fmt.Errorf("%s: %w", op, &RateLimitError{RetryAfter: wait})
	}

	o := &Order{
		ID:      uuid.New(),
		Name:    req.Name,
		Phone:   req.Phone,
		Message: req.Message,
		Source:  req.Source,
		Channel: req.Channel,
		Total:   req.Total,
		ChatID:  req.ChatID,
		Status:  StatusNew,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.cooldown.Release(key)
		log.Error("order persist failed", "err", err)
		s.metrics.OrderFailed("storage")
		return nil, fmt.Errorf("%s: %w", op, errors.Join(ErrDelivery, err))
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, *o); err != nil {
			log.Warn("order notify failed", "order_id", o.ID, "err", err)
			s.metrics.OrderFailed("notify")
		}
	}

	s.metrics.OrderSubmitted(req.Source)
	log.Info("order submitted", "order_id", o.ID)
	return o, nil
}

func (s *Service) Inbox(ctx context.Context, status Status, limit int) ([]Order, error) {
	const op = "orders.Service.Inbox"
	res, err := s.repo.List(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *Service) Order(ctx context.Context, id uuid.UUID) (*Order, error) {
	const op = "orders.Service.Order"
	o, err := s.repo.OrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (s *Service) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	const op = "orders.Service.MarkProcessed"
	if err := s.repo.MarkProcessed(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RetryAfter достаёт время ожидания из ошибки Submit.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

func normalizeRequest(r Request) Request {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	if r.Source == "" {
		r.Source = SourceContact
	}
	if r.Channel == "" {
		r.Channel = ChannelAPI
	}
	return r
}

func validateRequest(r Request) error {
	switch {
	case r.Name == "":
		return errors.Join(ErrValidation, errors.New("name is required"))
	case len([]rune(r.Name)) > maxNameLen:
		return errors.Join(ErrValidation, errors.New("name is too long"))
	case !phoneRe.MatchString(r.Phone):
		return errors.Join(ErrValidation, errors.New("phone is invalid"))
	case len([]rune(r.Message)) > maxMessageLen:
		return errors.Join(ErrValidation, errors.New("message is too long"))
	case r.Total.IsNegative():
		return errors.Join(ErrValidation, errors.New("total is negative"))
	}
	return nil
}
