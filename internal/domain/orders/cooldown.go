package orders

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultCooldown = time.Hour

// Cooldown — не больше одной заявки с ключа (чат, IP) за период.
// Reserve проверяет и расходует лимит под одной блокировкой,
// Release возвращает его, если заявку не удалось сохранить.
type Cooldown struct {
	period time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewCooldown; period <= 0 отключает ограничение.
func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period:   period,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait возвращает, сколько ещё ждать до следующей заявки (0 — можно сейчас).
func (c *Cooldown) Wait(key string) time.Duration {
	if c.period <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	lim, ok := c.limiters[key]
	if !ok {
		return 0
	}
	return c.wait(lim, c.now())
}

func (c *Cooldown) Allowed(key string) bool { return c.Wait(key) == 0 }

// Reserve занимает слот ключа. false — слот занят, wait — сколько ждать.
func (c *Cooldown) Reserve(key string) (time.Duration, bool) {
	if c.period <= 0 {
		return 0, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	lim, ok := c.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.period), 1)
		c.limiters[key] = lim
	}
	if !lim.AllowN(now, 1) {
		return c.wait(lim, now), false
	}
	c.gc(now)
	return 0, true
}

// Release отдаёт слот, занятый Reserve. Reserve проходит только при
// полном лимите, поэтому ключ просто сбрасывается.
func (c *Cooldown) Release(key string) {
	if c.period <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.limiters, key)
}

func (c *Cooldown) wait(lim *rate.Limiter, now time.Time) time.Duration {
	tokens := lim.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) * float64(c.period))
}

// gc выкидывает ключи, у которых лимит уже восстановился.
func (c *Cooldown) gc(now time.Time) {
	if len(c.limiters) < 1024 {
		return
	}
	for k, lim := range c.limiters {
		if lim.TokensAt(now) >= 1 {
			delete(c.limiters, k)
		}
	}
}
