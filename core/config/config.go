package config

import (
	"strings"
	"sync"
	"time"

	"setlist-api/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	S3         S3Config         `mapstructure:"s3"`
	Invitation InvitationConfig `mapstructure:"invitation"`
	Event      EventConfig      `mapstructure:"event"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	BaseURL   string `mapstructure:"base_url"`
	MaxUsers  int    `mapstructure:"max_users"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
}

type InvitationConfig struct {
	CodeTTL         time.Duration `mapstructure:"code_ttl"`
	CodeCooldown    time.Duration `mapstructure:"code_cooldown"`
	CodeMaxAttempts int           `mapstructure:"code_max_attempts"`
	UserCapMargin   int           `mapstructure:"user_cap_margin"`
}

type EventConfig struct {
	ReminderLead time.Duration `mapstructure:"reminder_lead"`
}

var (
	instance *Config
	once     sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "setlist-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 7070)
	v.SetDefault("app.base_url", "http://localhost:7070")
	v.SetDefault("app.max_users", 100)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "setlist")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "24h")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "Setlist")

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("invitation.code_ttl", "168h")
	v.SetDefault("invitation.code_cooldown", "3600s")
	v.SetDefault("invitation.code_max_attempts", 3)
	v.SetDefault("invitation.user_cap_margin", 5)

	v.SetDefault("event.reminder_lead", "1h")
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Config:Load:NoDotEnv", "error", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, which the
	// defaults above take care of.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Init() (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = Load()
	})
	return instance, err
}

func Get() *Config {
	return instance
}

func GetSafe() (*Config, bool) {
	if instance == nil {
		return nil, false
	}
	return instance, true
}
