package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	Firebase FirebaseConfig
	Queue    QueueConfig
	Template TemplateConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig backs the template read cache. An empty Addr disables caching;
// the database stays the source of truth either way.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMSConfig configures the AWS SNS transactional SMS channel. An empty Region
// disables the channel.
type SMSConfig struct {
	Region   string
	SenderID string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type QueueConfig struct {
	Interval       time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryDelay     time.Duration
	MaxConcurrent  int
	DeliverTimeout time.Duration
}

type TemplateConfig struct {
	CacheTTL time.Duration
}

// Load reads configuration from defaults overridden by SCHOOLHUB_* environment
// variables (e.g. SCHOOLHUB_DATABASE_DSN, SCHOOLHUB_SMTP_HOST).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHOOLHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.readtimeout", 10*time.Second)
	v.SetDefault("server.writetimeout", 10*time.Second)

	v.SetDefault("database.dsn", "schoolhub:schoolhub@tcp(localhost:3306)/schoolhub?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)
	v.SetDefault("database.connmaxlifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.accesssecret", "change-me-in-production")
	v.SetDefault("jwt.refreshsecret", "change-me-refresh")
	v.SetDefault("jwt.accessexpiry", 15*time.Minute)
	v.SetDefault("jwt.refreshexpiry", 168*time.Hour)
	v.SetDefault("jwt.issuer", "schoolhub")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@schoolhub.local")
	v.SetDefault("smtp.timeout", 15*time.Second)

	v.SetDefault("sms.region", "")
	v.SetDefault("sms.senderid", "SchoolHub")

	v.SetDefault("firebase.serviceaccountpath", "")

	v.SetDefault("queue.interval", 30*time.Second)
	v.SetDefault("queue.batchsize", 100)
	v.SetDefault("queue.maxattempts", 3)
	v.SetDefault("queue.retrydelay", 5*time.Minute)
	v.SetDefault("queue.maxconcurrent", 50)
	v.SetDefault("queue.delivertimeout", 20*time.Second)

	v.SetDefault("template.cachettl", 30*time.Minute)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
