package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server           ServerConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	Kafka            KafkaConfig
	ProductService   ServiceConfig
	CartService      ServiceConfig
	ShopService      ServiceConfig
	AnalyticsService ServiceConfig
	CartSync         CartSyncConfig
	Stock            StockConfig
	Features         FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers         []string
	ConsumerGroup   string
	DeadLetterTopic string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

type CartSyncConfig struct {
	Interval time.Duration
}

type StockConfig struct {
	LowStockInterval time.Duration
}

type FeatureFlags struct {
	EnableOrderCaching bool
	EnableOrderEvents  bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8082),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "mercato"),
			Password:     getEnvString("DB_PASSWORD", "mercato"),
			Name:         getEnvString("DB_NAME", "mercato_orders"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:         getEnvList("KAFKA_BROKERS", "localhost:9092"),
			ConsumerGroup:   getEnvString("KAFKA_CONSUMER_GROUP", "orders-platform"),
			DeadLetterTopic: getEnvString("KAFKA_DEAD_LETTER_TOPIC", "order.events.deadletter"),
		},
		ProductService: ServiceConfig{
			BaseURL: getEnvString("PRODUCT_SERVICE_URL", "http://localhost:8001"),
			Timeout: time.Duration(getEnvInt("PRODUCT_SERVICE_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("PRODUCT_SERVICE_API_KEY", ""),
		},
		CartService: ServiceConfig{
			BaseURL: getEnvString("CART_SERVICE_URL", "http://localhost:8002"),
			Timeout: time.Duration(getEnvInt("CART_SERVICE_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("CART_SERVICE_API_KEY", ""),
		},
		ShopService: ServiceConfig{
			BaseURL: getEnvString("SHOP_SERVICE_URL", "http://localhost:8003"),
			Timeout: time.Duration(getEnvInt("SHOP_SERVICE_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("SHOP_SERVICE_API_KEY", ""),
		},
		AnalyticsService: ServiceConfig{
			BaseURL: getEnvString("ANALYTICS_SERVICE_URL", "http://localhost:8004"),
			Timeout: time.Duration(getEnvInt("ANALYTICS_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("ANALYTICS_SERVICE_API_KEY", ""),
		},
		CartSync: CartSyncConfig{
			Interval: time.Duration(getEnvInt("CART_SYNC_INTERVAL", 300)) * time.Second,
		},
		Stock: StockConfig{
			LowStockInterval: time.Duration(getEnvInt("LOW_STOCK_INTERVAL", 600)) * time.Second,
		},
		Features: FeatureFlags{
			EnableOrderCaching: getEnvBool("ENABLE_ORDER_CACHING", true),
			EnableOrderEvents:  getEnvBool("ENABLE_ORDER_EVENTS", true),
		},
	}
}

func getEnvString(key, defaultValue string) string {
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
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
