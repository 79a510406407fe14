package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DriverPostgres = "postgres"
	DriverPebble   = "pebble"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		AdminChatID int64   `mapstructure:"admin_chat_id"` // куда падают заявки
		AdminIDs    []int64 `mapstructure:"admin_ids"`     // кому доступна админка
		Timeout     int     `mapstructure:"timeout"`       // long polling, сек
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN        string
		Migrations string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Storage struct {
		Driver    string
		PebbleDir string `mapstructure:"pebble_dir"`
	} `mapstructure:"storage"`

	Orders struct {
		Cooldown time.Duration
	} `mapstructure:"orders"`
}

// NeedsPostgres — true, если хоть что-то живёт в Postgres.
// Диалоги, пользователи и заявки при драйвере memory остаются в памяти.
func (c Config) NeedsPostgres() bool { return c.Storage.Driver != DriverMemory }

func (c Config) IsAdmin(tgID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func Load(path string) (Config, error) {
	// .env — необязательный, переменные окружения важнее
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ключи без значения по умолчанию не подхватываются из APP_* при Unmarshal
	v.SetDefault("app.env", "prod")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.migrations", "migrations")
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("storage.pebble_dir", "data/catalog")
	v.SetDefault("orders.cooldown", time.Hour)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverPebble, DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.NeedsPostgres() && c.Postgres.DSN == "" {
		return errors.New("config: postgres.dsn is required")
	}
	if c.Orders.Cooldown < 0 {
		return errors.New("config: orders.cooldown must be >= 0")
	}
	return nil
}
