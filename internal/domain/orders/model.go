package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusProcessed Status = "processed"
)

// Source — что отправлено: заказ из калькулятора или просьба связаться.
const (
	SourceCalculator = wizard.SourceCalculator
	SourceContact    = "contact"
)

// Channel — откуда пришла заявка.
const (
	ChannelTelegram = "telegram"
	ChannelAPI      = "api"
)

// Request — заявка клиента. Message обычно содержит отрисованный
// черновик заказа (см. RenderDraft) и комментарий.
type Request struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Message string          `json:"message"`
	Source  string          `json:"source"`
	Channel string          `json:"channel"`
	Total   decimal.Decimal `json:"total"`
	ChatID  int64           `json:"-"` // 0 для заявок с сайта
}

type Order struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	Message     string
	Source      string
	Channel     string
	Total       decimal.Decimal
	ChatID      int64
	Status      Status
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
