package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	OAuth     OAuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Log       LogConfig
	Billing   BillingConfig
	Jobs      JobsConfig
	Admin     AdminConfig
	Printer   PrinterConfig
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	Debug           bool
	ShutdownTimeout time.Duration
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// RedisConfig configures the fee schedule cache. An empty URL disables it.
type RedisConfig struct {
	URL         string
	ScheduleTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig holds the values a fresh database is seeded with. Running
// calculations always read the stored schedule, never this struct.
type BillingConfig struct {
	Currency              string
	TerminalChargeEnabled bool
	TerminalChargeRate    float64
	FeeCash               float64
	FeeOnline             float64
	FeeDebitCard          float64
	FeeCreditCard         float64
	FeeMastercard         float64
	FeeUnion              float64
	CatalogFile           string
}

// FeePercentages returns the seed fee for every payment method.
func (b BillingConfig) FeePercentages() map[feecalc.PaymentMethod]float64 {
	return map[feecalc.PaymentMethod]float64{
		feecalc.MethodCash:       b.FeeCash,
		feecalc.MethodOnline:     b.FeeOnline,
		feecalc.MethodDebitCard:  b.FeeDebitCard,
		feecalc.MethodCreditCard: b.FeeCreditCard,
		feecalc.MethodMastercard: b.FeeMastercard,
		feecalc.MethodUnion:      b.FeeUnion,
	}
}

type JobsConfig struct {
	Enabled               bool
	IdempotencyPurgeEvery time.Duration
}

// PrinterConfig addresses the front desk receipt printer. Type "none"
// disables printing.
type PrinterConfig struct {
	Type          string
	USBPath       string
	Address       string
	Width         int
	ClinicName    string
	ClinicAddress string
	ClinicPhone   string
	Footer        string
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "dentalbill-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_SHUTDOWN_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "dentalbill")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kuala_Lumpur")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", "")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_SCHEDULE_TTL_SECONDS", 300)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("BILLING_CURRENCY", "RM")
	viper.SetDefault("BILLING_TERMINAL_CHARGE_ENABLED", true)
	viper.SetDefault("BILLING_TERMINAL_CHARGE_RATE", 8)
	viper.SetDefault("BILLING_FEE_CASH", feecalc.DefaultFeePercentages[feecalc.MethodCash])
	viper.SetDefault("BILLING_FEE_ONLINE", feecalc.DefaultFeePercentages[feecalc.MethodOnline])
	viper.SetDefault("BILLING_FEE_DEBIT_CARD", feecalc.DefaultFeePercentages[feecalc.MethodDebitCard])
	viper.SetDefault("BILLING_FEE_CREDIT_CARD", feecalc.DefaultFeePercentages[feecalc.MethodCreditCard])
	viper.SetDefault("BILLING_FEE_MASTERCARD", feecalc.DefaultFeePercentages[feecalc.MethodMastercard])
	viper.SetDefault("BILLING_FEE_UNION", feecalc.DefaultFeePercentages[feecalc.MethodUnion])
	viper.SetDefault("BILLING_CATALOG_FILE", "configs/catalog.yaml")
	viper.SetDefault("JOBS_ENABLED", true)
	viper.SetDefault("JOBS_IDEMPOTENCY_PURGE_MINUTES", 60)
	viper.SetDefault("ADMIN_EMAIL", "admin@clinic.local")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("ADMIN_NAME", "Clinic Admin")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("CLINIC_NAME", "Dental Clinic")

	return &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Env:             viper.GetString("APP_ENV"),
			Port:            viper.GetString("APP_PORT"),
			Debug:           viper.GetBool("APP_DEBUG"),
			ShutdownTimeout: time.Duration(viper.GetInt("APP_SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
			FrontendSuccessURL: viper.GetString("OAUTH_FRONTEND_SUCCESS_URL"),
			FrontendErrorURL:   viper.GetString("OAUTH_FRONTEND_ERROR_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			URL:         viper.GetString("REDIS_URL"),
			ScheduleTTL: time.Duration(viper.GetInt("REDIS_SCHEDULE_TTL_SECONDS")) * time.Second,
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Billing: BillingConfig{
			Currency:              viper.GetString("BILLING_CURRENCY"),
			TerminalChargeEnabled: viper.GetBool("BILLING_TERMINAL_CHARGE_ENABLED"),
			TerminalChargeRate:    viper.GetFloat64("BILLING_TERMINAL_CHARGE_RATE"),
			FeeCash:               viper.GetFloat64("BILLING_FEE_CASH"),
			FeeOnline:             viper.GetFloat64("BILLING_FEE_ONLINE"),
			FeeDebitCard:          viper.GetFloat64("BILLING_FEE_DEBIT_CARD"),
			FeeCreditCard:         viper.GetFloat64("BILLING_FEE_CREDIT_CARD"),
			FeeMastercard:         viper.GetFloat64("BILLING_FEE_MASTERCARD"),
			FeeUnion:              viper.GetFloat64("BILLING_FEE_UNION"),
			CatalogFile:           viper.GetString("BILLING_CATALOG_FILE"),
		},
		Jobs: JobsConfig{
			Enabled:               viper.GetBool("JOBS_ENABLED"),
			IdempotencyPurgeEvery: time.Duration(viper.GetInt("JOBS_IDEMPOTENCY_PURGE_MINUTES")) * time.Minute,
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
			Name:     viper.GetString("ADMIN_NAME"),
		},
		Printer: PrinterConfig{
			Type:          viper.GetString("PRINTER_TYPE"),
			USBPath:       viper.GetString("PRINTER_USB_PATH"),
			Address:       viper.GetString("PRINTER_ADDRESS"),
			Width:         viper.GetInt("PRINTER_WIDTH"),
			ClinicName:    viper.GetString("CLINIC_NAME"),
			ClinicAddress: viper.GetString("CLINIC_ADDRESS"),
			ClinicPhone:   viper.GetString("CLINIC_PHONE"),
			Footer:        viper.GetString("PRINTER_FOOTER"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// splitList reads comma separated env values such as
// CORS_ALLOWED_ORIGINS="https://a.my, https://b.my".
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
