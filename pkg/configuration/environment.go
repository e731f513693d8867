package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jaydenmetz/realty-core/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"realty_core"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

// CommissionOptions carries the fee schedule and tier fallbacks that the
// original deployment kept as inline literals. Values are parsed as decimal
// strings so amounts never pass through binary floating point.
type CommissionOptions struct {
	TransactionFee  string `env:"COMMISSION_TRANSACTION_FEE" envDefault:"285"`
	CoordinationFee string `env:"COMMISSION_COORDINATION_FEE" envDefault:"250"`
	FranchiseRate   string `env:"COMMISSION_FRANCHISE_RATE" envDefault:"0.0257"`
	FallbackSplit   string `env:"COMMISSION_FALLBACK_SPLIT" envDefault:"70"`
	MidTierGCI      string `env:"COMMISSION_MID_TIER_GCI" envDefault:"50000"`
	PostCapGCI      string `env:"COMMISSION_POST_CAP_GCI" envDefault:"100000"`
}

func (c *CommissionOptions) validate() error {
	for name, v := range map[string]string{
		"COMMISSION_TRANSACTION_FEE":  c.TransactionFee,
		"COMMISSION_COORDINATION_FEE": c.CoordinationFee,
		"COMMISSION_FRANCHISE_RATE":   c.FranchiseRate,
		"COMMISSION_FALLBACK_SPLIT":   c.FallbackSplit,
		"COMMISSION_MID_TIER_GCI":     c.MidTierGCI,
		"COMMISSION_POST_CAP_GCI":     c.PostCapGCI,
	} {
		if _, err := decimal.NewFromString(v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
	}
	return nil
}

func (c *CommissionOptions) decimalOf(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(fmt.Sprintf("commission option %q not validated at load time: %v", v, err))
	}
	return d
}

func (c *CommissionOptions) TransactionFeeAmount() decimal.Decimal  { return c.decimalOf(c.TransactionFee) }
func (c *CommissionOptions) CoordinationFeeAmount() decimal.Decimal { return c.decimalOf(c.CoordinationFee) }
func (c *CommissionOptions) FranchiseRateValue() decimal.Decimal    { return c.decimalOf(c.FranchiseRate) }
func (c *CommissionOptions) FallbackSplitValue() decimal.Decimal    { return c.decimalOf(c.FallbackSplit) }
func (c *CommissionOptions) MidTierThreshold() decimal.Decimal      { return c.decimalOf(c.MidTierGCI) }
func (c *CommissionOptions) PostCapThreshold() decimal.Decimal      { return c.decimalOf(c.PostCapGCI) }

type RegistryOptions struct {
	// Minimum width of the zero-padded suffix in display codes (ESC-2025-001).
	DisplayPadWidth int `env:"REGISTRY_DISPLAY_PAD_WIDTH" envDefault:"3"`
}

func (r *RegistryOptions) validate() error {
	if r.DisplayPadWidth < 3 {
		return fmt.Errorf("REGISTRY_DISPLAY_PAD_WIDTH must be at least 3, got %d", r.DisplayPadWidth)
	}
	return nil
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	Commission CommissionOptions
	Registry   RegistryOptions

	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Commission.validate(); err != nil {
		return fmt.Errorf("commission configuration error: %w", err)
	}
	if err := c.Registry.validate(); err != nil {
		return fmt.Errorf("registry configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}
