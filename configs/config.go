package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	JWT          JWTConfig
	Storefront   StorefrontConfig
	OrderService OrderServiceConfig
	Payment      PaymentConfig
	SMS          SMSConfig
	Log          LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Mode           string
	AllowOrigins   []string
	SessionMaxIdle time.Duration
}

type DatabaseConfig struct {
	PostgresURL string
	MongoURL    string
	MongoDBName string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	CartTTL  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

// StorefrontConfig holds the URLs the shopper is sent back to after the
// hosted payment page, plus cart persistence settings.
type StorefrontConfig struct {
	BaseURL       string
	SuccessPath   string
	CancelPath    string
	CartNamespace string
	Currency      string
}

type OrderServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type PaymentConfig struct {
	Provider string // stripe, razorpay
	Stripe   StripeConfig
	Razorpay RazorpayConfig
}

type StripeConfig struct {
	SecretKey string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

type SMSConfig struct {
	APIKey   string
	SenderID string
	BaseURL  string
}

type LogConfig struct {
	Env string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			Mode:           getEnv("GIN_MODE", "debug"),
			AllowOrigins:   getEnvList("CORS_ALLOW_ORIGINS", "*"),
			SessionMaxIdle: time.Duration(getEnvInt("SESSION_MAX_IDLE_MINUTES", 60)) * time.Minute,
		},
		Database: DatabaseConfig{
			PostgresURL: getEnv("POSTGRES_URL", ""),
			MongoURL:    getEnv("MONGO_URL", ""),
			MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CartTTL:  time.Duration(getEnvInt("CART_TTL_HOURS", 24*30)) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getEnv("KAFKA_CHECKOUT_TOPIC", "checkout_events"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		JWT: JWTConfig{
			SecretKey:   getEnv("JWT_SECRET", "your-secret-key"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24*7),
		},
		Storefront: StorefrontConfig{
			BaseURL:       getEnv("STOREFRONT_BASE_URL", "http://localhost:3000"),
			SuccessPath:   getEnv("STOREFRONT_SUCCESS_PATH", "/checkout/success"),
			CancelPath:    getEnv("STOREFRONT_CANCEL_PATH", "/checkout/cancel"),
			CartNamespace: getEnv("CART_NAMESPACE", "storefront:cart"),
			Currency:      strings.ToLower(getEnv("STOREFRONT_CURRENCY", "inr")),
		},
		OrderService: OrderServiceConfig{
			BaseURL: getEnv("ORDER_SERVICE_URL", "http://localhost:8081/api"),
			APIKey:  getEnv("ORDER_SERVICE_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("ORDER_SERVICE_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Payment: PaymentConfig{
			Provider: strings.ToLower(getEnv("PAYMENT_PROVIDER", "stripe")),
			Stripe: StripeConfig{
				SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			},
			Razorpay: RazorpayConfig{
				KeyID:     getEnv("RAZORPAY_KEY_ID", "rzp_test_key"),
				KeySecret: getEnv("RAZORPAY_KEY_SECRET", "secret"),
				BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			},
		},
		SMS: SMSConfig{
			APIKey:   getEnv("SMS_API_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", ""),
			BaseURL:  getEnv("SMS_BASE_URL", "http://app.mydreamstechnology.in/vb/apikey.php"),
		},
		Log: LogConfig{
			Env: getEnv("APP_ENV", "development"),
		},
	}
}

// SuccessURL is the absolute post-payment landing page.
func (s StorefrontConfig) SuccessURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.SuccessPath
}

func (s StorefrontConfig) CancelURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.CancelPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
