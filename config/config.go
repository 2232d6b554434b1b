package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingMarket es el error fatal de arranque: sin dirección de mercado
// el bot no puede operar.
var ErrMissingMarket = errors.New("market address not set (MARKET_ADDRESS or trading.market_address)")

// Config es la configuración completa del bot.
type Config struct {
	Trading   TradingConfig   `yaml:"trading"`
	Screening ScreeningConfig `yaml:"screening"`
	API       APIConfig       `yaml:"api"`
	Notify    NotifyConfig    `yaml:"notify"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// TradingConfig controla la ejecución de órdenes y los loops.
type TradingConfig struct {
	MarketAddress      string  `yaml:"market_address"`      // mercado del venue, requerido
	WalletSecret       string  `yaml:"wallet_secret"`       // credencial de firma (solo por env normalmente)
	SlippagePct        float64 `yaml:"slippage_pct"`        // tolerancia de slippage en %
	ProfitMultiplier   float64 `yaml:"profit_multiplier"`   // target de venta = entrada × multiplier
	BuyBudget          float64 `yaml:"buy_budget"`          // gasto fijo por compra en moneda quote
	ScanIntervalSecs   int     `yaml:"scan_interval_secs"`  // periodo del discovery loop
	PollIntervalSecs   int     `yaml:"poll_interval_secs"`  // tick de los monitores de posición
	ErrorBackoffSecs   int     `yaml:"error_backoff_secs"`  // espera tras un fallo de lectura del book
}

// ScreeningConfig contiene las ventanas de elegibilidad.
type ScreeningConfig struct {
	MinAgeHours  float64 `yaml:"min_age_hours"`
	MaxAgeHours  float64 `yaml:"max_age_hours"`
	MinMarketCap float64 `yaml:"min_market_cap"`
	MaxMarketCap float64 `yaml:"max_market_cap"`
}

// APIConfig contiene los endpoints y credenciales de los colaboradores externos.
type APIConfig struct {
	VenueRPC     string `yaml:"venue_rpc"`     // endpoint RPC del venue
	DiscoveryURL string `yaml:"discovery_url"` // feed HTTP de nuevos tokens
	DiscoveryWS  string `yaml:"discovery_ws"`  // stream websocket (opcional, "" lo desactiva)
	RugcheckURL  string `yaml:"rugcheck_url"`
	RugcheckKey  string `yaml:"rugcheck_key"`
	MoniURL      string `yaml:"moni_url"`
	MoniKey      string `yaml:"moni_key"`
}

// NotifyConfig controla las notificaciones por email. Si EmailUser está vacío,
// solo se notifica por consola.
type NotifyConfig struct {
	EmailUser      string `yaml:"email_user"`
	EmailPass      string `yaml:"email_pass"`
	EmailRecipient string `yaml:"email_recipient"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
}

// StorageConfig controla el trade journal.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// MetricsConfig controla el endpoint de Prometheus. Addr vacío lo desactiva.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato, nivel y archivo de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`   // ruta del log rotado, "" = solo stdout
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML para los secretos.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Sin archivo: todo por env + defaults, como el despliegue mínimo.
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate verifica la configuración mínima para operar.
func (c *Config) Validate() error {
	if c.Trading.MarketAddress == "" {
		return ErrMissingMarket
	}
	if c.Trading.SlippagePct < 0 || c.Trading.SlippagePct >= 100 {
		return fmt.Errorf("slippage_pct out of range: %v", c.Trading.SlippagePct)
	}
	if c.Trading.ProfitMultiplier <= 1 {
		return fmt.Errorf("profit_multiplier must be > 1: %v", c.Trading.ProfitMultiplier)
	}
	if c.Screening.MinAgeHours > c.Screening.MaxAgeHours {
		return fmt.Errorf("age window inverted: [%v, %v]", c.Screening.MinAgeHours, c.Screening.MaxAgeHours)
	}
	if c.Screening.MinMarketCap > c.Screening.MaxMarketCap {
		return fmt.Errorf("market cap window inverted: [%v, %v]", c.Screening.MinMarketCap, c.Screening.MaxMarketCap)
	}
	return nil
}

// ScanInterval devuelve el periodo del discovery loop como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Trading.ScanIntervalSecs) * time.Second
}

// PollInterval devuelve el tick de los monitores como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Trading.PollIntervalSecs) * time.Second
}

// ErrorBackoff devuelve la espera tras fallo de lectura como time.Duration.
func (c *Config) ErrorBackoff() time.Duration {
	return time.Duration(c.Trading.ErrorBackoffSecs) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
// Los secretos solo deberían llegar por aquí, nunca por el YAML versionado.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKET_ADDRESS"); v != "" {
		cfg.Trading.MarketAddress = v
	}
	if v := os.Getenv("WALLET_SECRET"); v != "" {
		cfg.Trading.WalletSecret = v
	}
	if v := os.Getenv("RUGCHECK_API_KEY"); v != "" {
		cfg.API.RugcheckKey = v
	}
	if v := os.Getenv("GETMONI_API_KEY"); v != "" {
		cfg.API.MoniKey = v
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.Notify.EmailUser = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.Notify.EmailPass = v
	}
	if v := os.Getenv("EMAIL_RECIPIENT"); v != "" {
		cfg.Notify.EmailRecipient = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	// Solo el valor cero (no seteado) recibe default: un valor negativo es un
	// typo del usuario y debe llegar a Validate, no reescribirse en silencio.
	if cfg.Trading.SlippagePct == 0 {
		cfg.Trading.SlippagePct = 1 // 1%
	}
	if cfg.Trading.ProfitMultiplier == 0 {
		cfg.Trading.ProfitMultiplier = 5 // 5x
	}
	if cfg.Trading.BuyBudget <= 0 {
		cfg.Trading.BuyBudget = 0.01
	}
	if cfg.Trading.ScanIntervalSecs <= 0 {
		cfg.Trading.ScanIntervalSecs = 600 // 10 minutos
	}
	if cfg.Trading.PollIntervalSecs <= 0 {
		cfg.Trading.PollIntervalSecs = 300 // 5 minutos
	}
	if cfg.Trading.ErrorBackoffSecs <= 0 {
		cfg.Trading.ErrorBackoffSecs = 300
	}
	if cfg.Screening.MinAgeHours <= 0 {
		cfg.Screening.MinAgeHours = 5
	}
	if cfg.Screening.MaxAgeHours <= 0 {
		cfg.Screening.MaxAgeHours = 10
	}
	if cfg.Screening.MinMarketCap <= 0 {
		cfg.Screening.MinMarketCap = 5000
	}
	if cfg.Screening.MaxMarketCap <= 0 {
		cfg.Screening.MaxMarketCap = 10000
	}
	if cfg.API.VenueRPC == "" {
		cfg.API.VenueRPC = "https://api.mainnet-beta.solana.com"
	}
	if cfg.API.DiscoveryURL == "" {
		cfg.API.DiscoveryURL = "https://frontend-api.pump.fun/coins"
	}
	if cfg.API.RugcheckURL == "" {
		cfg.API.RugcheckURL = "https://api.rugcheck.xyz/check"
	}
	if cfg.API.MoniURL == "" {
		cfg.API.MoniURL = "https://api.getmoni.xyz/project"
	}
	if cfg.Notify.SMTPHost == "" {
		cfg.Notify.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Notify.SMTPPort <= 0 {
		cfg.Notify.SMTPPort = 587
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "pumpbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
