package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTSetupSecret string        `mapstructure:"jwt_setup_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	SetupTokenTTL  time.Duration `mapstructure:"setup_token_ttl"`
	GoogleClientID string        `mapstructure:"google_client_id"`
}

type CryptoConfig struct {
	// Khoá 32 byte dùng mã hoá API key của người dùng
	APIKeySecret string `mapstructure:"api_key_secret"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"` // key dự phòng cấp server
	Model  string `mapstructure:"model"`
}

type TTSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Giữ nguyên tên biến môi trường cũ
var envBindings = map[string]string{
	"server.port":            "PORT",
	"server.allowed_origins": "CORS_ORIGINS",
	"database.host":          "DB_HOST",
	"database.port":          "DB_PORT",
	"database.user":          "DB_USER",
	"database.password":      "DB_PASSWORD",
	"database.name":          "DB_NAME",
	"database.sslmode":       "DB_SSLMODE",
	"database.timezone":      "DB_TIMEZONE",
	"auth.jwt_secret":        "JWT_SECRET",
	"auth.jwt_setup_secret":  "JWT_SETUP_SECRET",
	"auth.token_ttl":         "JWT_TTL",
	"auth.setup_token_ttl":   "JWT_SETUP_TTL",
	"auth.google_client_id":  "GOOGLE_CLIENT_ID",
	"crypto.api_key_secret":  "API_KEY_ENCRYPTION_SECRET",
	"gemini.api_key":         "GEMINI_API_KEY",
	"gemini.model":           "GEMINI_MODEL",
	"tts.credentials_file":   "GOOGLE_CREDENTIALS_JSON",
	"log.level":              "LOG_LEVEL",
	"log.format":             "LOG_FORMAT",
}

// Load đọc .env (nếu có) rồi nạp cấu hình từ biến môi trường.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("Không tìm thấy file .env, dùng biến môi trường hệ thống")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "engchi")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "Asia/Ho_Chi_Minh")

	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.setup_token_ttl", time.Hour)

	v.SetDefault("gemini.model", "gemini-2.0-flash")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.JWTSetupSecret == "" {
		c.Auth.JWTSetupSecret = c.Auth.JWTSecret + ":setup"
	}
	if len(c.Crypto.APIKeySecret) != 32 {
		return fmt.Errorf("API_KEY_ENCRYPTION_SECRET must be exactly 32 bytes, got %d", len(c.Crypto.APIKeySecret))
	}
	return nil
}
