package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port          string   `yaml:"port"`
	PublicBaseURL string   `yaml:"publicBaseUrl"`
	AllowOrigins  []string `yaml:"allowOrigins"`
	UploadsDir    string   `yaml:"uploadsDir"`
}

// FrontendOrigins 明確列出的前端來源，不含萬用字元
func (s ServerConfig) FrontendOrigins() []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(origin string) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" || origin == "*" || seen[origin] {
			return
		}
		seen[origin] = true
		origins = append(origins, origin)
	}
	for _, origin := range s.AllowOrigins {
		add(origin)
	}
	add(s.PublicBaseURL)
	return origins
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	LogLevel string `yaml:"logLevel"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secretKey"`
	WebhookSecret string `yaml:"webhookSecret"`
}

type MailConfig struct {
	APIURL      string        `yaml:"apiUrl"`
	APIKey      string        `yaml:"apiKey"`
	From        string        `yaml:"from"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
	Backoff     time.Duration `yaml:"backoff"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwtSecret"`
	TokenTTL    time.Duration `yaml:"tokenTTL"`
	OwnerOpenID string        `yaml:"ownerOpenId"`
	CookieName  string        `yaml:"cookieName"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type NotifyConfig struct {
	// direct 直接呼叫郵件 API，queue 透過 RabbitMQ 交給 mail-worker
	Mode string `yaml:"mode"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Mail     MailConfig     `yaml:"mail"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
}

const (
	NotifyDirect = "direct"
	NotifyQueue  = "queue"
)

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:          "3000",
			PublicBaseURL: "http://localhost:3000",
			AllowOrigins:  []string{"*"},
			UploadsDir:    "./uploads",
		},
		Database: DatabaseConfig{Driver: "mysql", LogLevel: "warn"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		RabbitMQ: RabbitMQConfig{Queue: "mail_outbox"},
		Mail: MailConfig{
			From:        "Möbelhaus <noreply@manus.space>",
			Timeout:     10 * time.Second,
			MaxAttempts: 1,
			Backoff:     time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:   365 * 24 * time.Hour,
			CookieName: "app_session_id",
		},
		Log:    LogConfig{Level: "info"},
		Notify: NotifyConfig{Mode: NotifyDirect},
	}
}

// 讀取設定檔，檔案不存在時使用預設值，再以環境變數覆蓋
func LoadConfig(filename string) (Config, error) {
	_ = godotenv.Load()

	config := Default()
	file, err := os.Open(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, err
	}
	if err == nil {
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, fmt.Errorf("解析設定檔 %s 失敗: %w", filename, err)
		}
	}

	if err := applyEnv(&config); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	setString := func(key string, target *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}

	setString("DATABASE_URL", &config.Database.DSN)
	setString("DATABASE_DRIVER", &config.Database.Driver)
	setString("REDIS_ADDR", &config.Redis.Addr)
	setString("REDIS_PASSWORD", &config.Redis.Password)
	setString("RABBITMQ_URL", &config.RabbitMQ.URL)
	setString("STRIPE_SECRET_KEY", &config.Stripe.SecretKey)
	setString("STRIPE_WEBHOOK_SECRET", &config.Stripe.WebhookSecret)
	setString("MAIL_API_URL", &config.Mail.APIURL)
	setString("MAIL_API_KEY", &config.Mail.APIKey)
	setString("JWT_SECRET", &config.Auth.JWTSecret)
	setString("OWNER_OPEN_ID", &config.Auth.OwnerOpenID)
	setString("PORT", &config.Server.Port)
	setString("PUBLIC_BASE_URL", &config.Server.PublicBaseURL)
	setString("NOTIFY_MODE", &config.Notify.Mode)
	setString("LOG_LEVEL", &config.Log.Level)

	if v, ok := os.LookupEnv("REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB 必須為數字: %w", err)
		}
		config.Redis.Database = n
	}
	return nil
}

// 啟動 API 伺服器前檢查必要設定
func (c Config) Validate() error {
	var missing []string
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "stripe.webhookSecret")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwtSecret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("缺少必要設定: %s", strings.Join(missing, ", "))
	}

	switch c.Notify.Mode {
	case NotifyDirect:
	case NotifyQueue:
		if c.RabbitMQ.URL == "" {
			return errors.New("notify.mode 為 queue 時必須設定 rabbitmq.url")
		}
	default:
		return fmt.Errorf("未知的 notify.mode %q", c.Notify.Mode)
	}
	return nil
}
