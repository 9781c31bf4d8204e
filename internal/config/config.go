// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tj309c/supply-signals/internal/engine"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	ReportDir string
	LogLevel  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	SignalTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// EngineConfig carries the business-policy constants behind the signal
// computations. Every threshold here is negotiated planning policy.
type EngineConfig struct {
	LookbackDays          int
	MarketIntroBufferDays int
	MinActiveDays         int

	LeadTimeLookbackDays   int
	LeadTimeBufferDays     float64
	HighConfidenceMinPOs   int
	MediumConfidenceMinPOs int
	DefaultLeadTimeDays    float64

	DIOFastMax     float64
	DIONormalMax   float64
	DIOSlowMax     float64
	DIOVerySlowMax float64

	DIOCriticalMax float64
	DIOWarningMax  float64
	DIOSafeMin     float64

	ABCMethod       string
	ABCValueA       float64
	ABCValueB       float64
	ABCCountA       float64
	ABCCountB       float64

	ServiceLevel      int
	ReorderBufferDays float64

	ScrapMinAgeDays             int
	ScrapConservativeMinAgeDays int
	ScrapConservativeMaxMonths  int
	ScrapConservativeKeepDays   float64
	ScrapMediumMinAgeDays       int
	ScrapMediumKeepDays         float64
	ScrapMediumLowKeepDays      float64
	ScrapAggressiveMinAgeDays   int
	ScrapAggressiveKeepDays     float64
	ScrapAggressiveOldAgeDays   int
	ScrapAggressiveOldKeepDays  float64
	ScrapAggressiveLowKeepDays  float64

	BaseCurrency  string
	CurrencyRates map[string]float64

	Workers int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:   viper.GetString("APP_DATA_DIR"),
				ReportDir: viper.GetString("APP_REPORT_DIR"),
				LogLevel:  viper.GetString("APP_LOG_LEVEL"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				SignalTTLSeconds: viper.GetInt("CACHE_SIGNAL_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Engine: loadEngineConfig(),
		}
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "supplysignals")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("APP_DATA_DIR", "./data/input")
	viper.SetDefault("APP_REPORT_DIR", "./data/reports")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_SIGNAL_TTL_SECONDS", 300)
	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "supply-extracts")
	viper.SetDefault("STORAGE_PREFIX", "")
	viper.SetDefault("STORAGE_USE_SSL", true)

	defaults := engine.DefaultConfig()
	viper.SetDefault("ENGINE_LOOKBACK_DAYS", defaults.LookbackDays)
	viper.SetDefault("ENGINE_MARKET_INTRO_BUFFER_DAYS", defaults.MarketIntroBufferDays)
	viper.SetDefault("ENGINE_MIN_ACTIVE_DAYS", defaults.MinActiveDays)
	viper.SetDefault("ENGINE_LEAD_TIME_LOOKBACK_DAYS", defaults.LeadTimeLookbackDays)
	viper.SetDefault("ENGINE_LEAD_TIME_BUFFER_DAYS", defaults.LeadTimeBufferDays)
	viper.SetDefault("ENGINE_HIGH_CONFIDENCE_MIN_POS", defaults.HighConfidenceMinPOs)
	viper.SetDefault("ENGINE_MEDIUM_CONFIDENCE_MIN_POS", defaults.MediumConfidenceMinPOs)
	viper.SetDefault("ENGINE_DEFAULT_LEAD_TIME_DAYS", defaults.DefaultLeadTimeDays)
	viper.SetDefault("ENGINE_DIO_FAST_MAX", defaults.Movement.FastMax)
	viper.SetDefault("ENGINE_DIO_NORMAL_MAX", defaults.Movement.NormalMax)
	viper.SetDefault("ENGINE_DIO_SLOW_MAX", defaults.Movement.SlowMax)
	viper.SetDefault("ENGINE_DIO_VERY_SLOW_MAX", defaults.Movement.VerySlowMax)
	viper.SetDefault("ENGINE_DIO_CRITICAL_MAX", defaults.StockOut.CriticalMax)
	viper.SetDefault("ENGINE_DIO_WARNING_MAX", defaults.StockOut.WarningMax)
	viper.SetDefault("ENGINE_DIO_SAFE_MIN", defaults.StockOut.SafeMin)
	viper.SetDefault("ENGINE_ABC_METHOD", defaults.ABC.Method)
	viper.SetDefault("ENGINE_ABC_VALUE_A", defaults.ABC.ValueAPercent)
	viper.SetDefault("ENGINE_ABC_VALUE_B", defaults.ABC.ValueBPercent)
	viper.SetDefault("ENGINE_ABC_COUNT_A", defaults.ABC.CountAPercent)
	viper.SetDefault("ENGINE_ABC_COUNT_B", defaults.ABC.CountBPercent)
	viper.SetDefault("ENGINE_SERVICE_LEVEL", defaults.ServiceLevel)
	viper.SetDefault("ENGINE_REORDER_BUFFER_DAYS", defaults.ReorderBufferDays)
	viper.SetDefault("ENGINE_SCRAP_MIN_AGE_DAYS", defaults.Scrap.MinAgeDays)
	viper.SetDefault("ENGINE_SCRAP_CONSERVATIVE_MIN_AGE_DAYS", defaults.Scrap.ConservativeMinAgeDays)
	viper.SetDefault("ENGINE_SCRAP_CONSERVATIVE_MAX_MONTHS", defaults.Scrap.ConservativeMaxActiveMonths)
	viper.SetDefault("ENGINE_SCRAP_CONSERVATIVE_KEEP_DAYS", defaults.Scrap.ConservativeKeepDays)
	viper.SetDefault("ENGINE_SCRAP_MEDIUM_MIN_AGE_DAYS", defaults.Scrap.MediumMinAgeDays)
	viper.SetDefault("ENGINE_SCRAP_MEDIUM_KEEP_DAYS", defaults.Scrap.MediumKeepDays)
	viper.SetDefault("ENGINE_SCRAP_MEDIUM_LOW_KEEP_DAYS", defaults.Scrap.MediumLowKeepDays)
	viper.SetDefault("ENGINE_SCRAP_AGGRESSIVE_MIN_AGE_DAYS", defaults.Scrap.AggressiveMinAgeDays)
	viper.SetDefault("ENGINE_SCRAP_AGGRESSIVE_KEEP_DAYS", defaults.Scrap.AggressiveKeepDays)
	viper.SetDefault("ENGINE_SCRAP_AGGRESSIVE_OLD_AGE_DAYS", defaults.Scrap.AggressiveOldAgeDays)
	viper.SetDefault("ENGINE_SCRAP_AGGRESSIVE_OLD_KEEP_DAYS", defaults.Scrap.AggressiveOldKeepDays)
	viper.SetDefault("ENGINE_SCRAP_AGGRESSIVE_LOW_KEEP_DAYS", defaults.Scrap.AggressiveLowKeepDays)
	viper.SetDefault("ENGINE_BASE_CURRENCY", defaults.BaseCurrency)
	viper.SetDefault("ENGINE_CURRENCY_RATES", defaults.CurrencyRates)
	viper.SetDefault("ENGINE_WORKERS", defaults.Workers)
}

func loadEngineConfig() EngineConfig {
	rates := map[string]float64{}
	for key, v := range viper.GetStringMap("ENGINE_CURRENCY_RATES") {
		switch val := v.(type) {
		case float64:
			rates[key] = val
		case int:
			rates[key] = float64(val)
		}
	}
	// viper lowercases string-map keys; rate keys are currency pairs.
	normalized := make(map[string]float64, len(rates))
	for key, v := range rates {
		normalized[normalizeRateKey(key)] = v
	}

	return EngineConfig{
		LookbackDays:          viper.GetInt("ENGINE_LOOKBACK_DAYS"),
		MarketIntroBufferDays: viper.GetInt("ENGINE_MARKET_INTRO_BUFFER_DAYS"),
		MinActiveDays:         viper.GetInt("ENGINE_MIN_ACTIVE_DAYS"),

		LeadTimeLookbackDays:   viper.GetInt("ENGINE_LEAD_TIME_LOOKBACK_DAYS"),
		LeadTimeBufferDays:     viper.GetFloat64("ENGINE_LEAD_TIME_BUFFER_DAYS"),
		HighConfidenceMinPOs:   viper.GetInt("ENGINE_HIGH_CONFIDENCE_MIN_POS"),
		MediumConfidenceMinPOs: viper.GetInt("ENGINE_MEDIUM_CONFIDENCE_MIN_POS"),
		DefaultLeadTimeDays:    viper.GetFloat64("ENGINE_DEFAULT_LEAD_TIME_DAYS"),

		DIOFastMax:     viper.GetFloat64("ENGINE_DIO_FAST_MAX"),
		DIONormalMax:   viper.GetFloat64("ENGINE_DIO_NORMAL_MAX"),
		DIOSlowMax:     viper.GetFloat64("ENGINE_DIO_SLOW_MAX"),
		DIOVerySlowMax: viper.GetFloat64("ENGINE_DIO_VERY_SLOW_MAX"),

		DIOCriticalMax: viper.GetFloat64("ENGINE_DIO_CRITICAL_MAX"),
		DIOWarningMax:  viper.GetFloat64("ENGINE_DIO_WARNING_MAX"),
		DIOSafeMin:     viper.GetFloat64("ENGINE_DIO_SAFE_MIN"),

		ABCMethod: viper.GetString("ENGINE_ABC_METHOD"),
		ABCValueA: viper.GetFloat64("ENGINE_ABC_VALUE_A"),
		ABCValueB: viper.GetFloat64("ENGINE_ABC_VALUE_B"),
		ABCCountA: viper.GetFloat64("ENGINE_ABC_COUNT_A"),
		ABCCountB: viper.GetFloat64("ENGINE_ABC_COUNT_B"),

		ServiceLevel:      viper.GetInt("ENGINE_SERVICE_LEVEL"),
		ReorderBufferDays: viper.GetFloat64("ENGINE_REORDER_BUFFER_DAYS"),

		ScrapMinAgeDays:             viper.GetInt("ENGINE_SCRAP_MIN_AGE_DAYS"),
		ScrapConservativeMinAgeDays: viper.GetInt("ENGINE_SCRAP_CONSERVATIVE_MIN_AGE_DAYS"),
		ScrapConservativeMaxMonths:  viper.GetInt("ENGINE_SCRAP_CONSERVATIVE_MAX_MONTHS"),
		ScrapConservativeKeepDays:   viper.GetFloat64("ENGINE_SCRAP_CONSERVATIVE_KEEP_DAYS"),
		ScrapMediumMinAgeDays:       viper.GetInt("ENGINE_SCRAP_MEDIUM_MIN_AGE_DAYS"),
		ScrapMediumKeepDays:         viper.GetFloat64("ENGINE_SCRAP_MEDIUM_KEEP_DAYS"),
		ScrapMediumLowKeepDays:      viper.GetFloat64("ENGINE_SCRAP_MEDIUM_LOW_KEEP_DAYS"),
		ScrapAggressiveMinAgeDays:   viper.GetInt("ENGINE_SCRAP_AGGRESSIVE_MIN_AGE_DAYS"),
		ScrapAggressiveKeepDays:     viper.GetFloat64("ENGINE_SCRAP_AGGRESSIVE_KEEP_DAYS"),
		ScrapAggressiveOldAgeDays:   viper.GetInt("ENGINE_SCRAP_AGGRESSIVE_OLD_AGE_DAYS"),
		ScrapAggressiveOldKeepDays:  viper.GetFloat64("ENGINE_SCRAP_AGGRESSIVE_OLD_KEEP_DAYS"),
		ScrapAggressiveLowKeepDays:  viper.GetFloat64("ENGINE_SCRAP_AGGRESSIVE_LOW_KEEP_DAYS"),

		BaseCurrency:  viper.GetString("ENGINE_BASE_CURRENCY"),
		CurrencyRates: normalized,

		Workers: viper.GetInt("ENGINE_WORKERS"),
	}
}

// EngineConfig converts the flat env-driven settings into the engine's
// structured configuration.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	e := c.Engine

	cfg.LookbackDays = e.LookbackDays
	cfg.MarketIntroBufferDays = e.MarketIntroBufferDays
	cfg.MinActiveDays = e.MinActiveDays
	cfg.LeadTimeLookbackDays = e.LeadTimeLookbackDays
	cfg.LeadTimeBufferDays = e.LeadTimeBufferDays
	cfg.HighConfidenceMinPOs = e.HighConfidenceMinPOs
	cfg.MediumConfidenceMinPOs = e.MediumConfidenceMinPOs
	cfg.DefaultLeadTimeDays = e.DefaultLeadTimeDays
	cfg.Movement = engine.MovementThresholds{
		FastMax:     e.DIOFastMax,
		NormalMax:   e.DIONormalMax,
		SlowMax:     e.DIOSlowMax,
		VerySlowMax: e.DIOVerySlowMax,
	}
	cfg.StockOut = engine.StockOutThresholds{
		CriticalMax: e.DIOCriticalMax,
		WarningMax:  e.DIOWarningMax,
		SafeMin:     e.DIOSafeMin,
	}
	cfg.ABC = engine.ABCConfig{
		Method:        e.ABCMethod,
		ValueAPercent: e.ABCValueA,
		ValueBPercent: e.ABCValueB,
		CountAPercent: e.ABCCountA,
		CountBPercent: e.ABCCountB,
	}
	cfg.ServiceLevel = e.ServiceLevel
	cfg.ReorderBufferDays = e.ReorderBufferDays
	cfg.Scrap = engine.ScrapConfig{
		MinAgeDays:                  e.ScrapMinAgeDays,
		ConservativeMinAgeDays:      e.ScrapConservativeMinAgeDays,
		ConservativeMaxActiveMonths: e.ScrapConservativeMaxMonths,
		ConservativeKeepDays:        e.ScrapConservativeKeepDays,
		MediumMinAgeDays:            e.ScrapMediumMinAgeDays,
		MediumKeepDays:              e.ScrapMediumKeepDays,
		MediumLowKeepDays:           e.ScrapMediumLowKeepDays,
		AggressiveMinAgeDays:        e.ScrapAggressiveMinAgeDays,
		AggressiveKeepDays:          e.ScrapAggressiveKeepDays,
		AggressiveOldAgeDays:        e.ScrapAggressiveOldAgeDays,
		AggressiveOldKeepDays:       e.ScrapAggressiveOldKeepDays,
		AggressiveLowKeepDays:       e.ScrapAggressiveLowKeepDays,
	}
	cfg.BaseCurrency = e.BaseCurrency
	if len(e.CurrencyRates) > 0 {
		cfg.CurrencyRates = e.CurrencyRates
	}
	cfg.Workers = e.Workers
	return cfg
}

func normalizeRateKey(key string) string {
	// "usd_to_eur" -> "USD_to_EUR"
	parts := []byte(key)
	upper := func(b byte) byte {
		if b >= 'a' && b <= 'z' {
			return b - 32
		}
		return b
	}
	if len(parts) == 10 && string(parts[3:7]) == "_to_" {
		for i := 0; i < 3; i++ {
			parts[i] = upper(parts[i])
		}
		for i := 7; i < 10; i++ {
			parts[i] = upper(parts[i])
		}
	}
	return string(parts)
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
