package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Bridge    BridgeConfig
	Receipt   ReceiptConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
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
	Secret      string
	ExpiryHours time.Duration
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

// PrinterConfig selects how the API hands jobs to a printer.
type PrinterConfig struct {
	Type          string
	BridgeURL     string
	BridgeTimeout time.Duration
	USBPath       string
	Address       string
}

// BridgeConfig configures the local print bridge daemon.
type BridgeConfig struct {
	ListenAddr string
	DeviceType string
}

type ReceiptConfig struct {
	TempleName string
	Address    string
	Footer     string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
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
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:          viper.GetString("PRINTER_TYPE"),
			BridgeURL:     viper.GetString("PRINTER_BRIDGE_URL"),
			BridgeTimeout: time.Duration(viper.GetInt("PRINTER_BRIDGE_TIMEOUT_SECONDS")) * time.Second,
			USBPath:       viper.GetString("PRINTER_USB_PATH"),
			Address:       viper.GetString("PRINTER_ADDRESS"),
		},
		Bridge: BridgeConfig{
			ListenAddr: viper.GetString("BRIDGE_LISTEN_ADDR"),
			DeviceType: viper.GetString("BRIDGE_DEVICE_TYPE"),
		},
		Receipt: ReceiptConfig{
			TempleName: viper.GetString("TEMPLE_NAME"),
			Address:    viper.GetString("TEMPLE_ADDRESS"),
			Footer:     viper.GetString("TEMPLE_FOOTER"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "starprint")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8000")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "star_temple")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 720)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "bridge")
	viper.SetDefault("PRINTER_BRIDGE_URL", "ws://localhost:8080")
	viper.SetDefault("PRINTER_BRIDGE_TIMEOUT_SECONDS", 5)
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("BRIDGE_LISTEN_ADDR", ":8080")
	viper.SetDefault("BRIDGE_DEVICE_TYPE", "usb")
	viper.SetDefault("TEMPLE_NAME", "SRI SUBRAMANYA SWAMY TEMPLE")
	viper.SetDefault("TEMPLE_ADDRESS", "Tarikere - 577228")
	viper.SetDefault("TEMPLE_FOOTER", "Sarve Jana Sukhino Bhavantu")
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
