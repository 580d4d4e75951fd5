package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPPort       string   `mapstructure:"http_port"`
	GRPCPort       string   `mapstructure:"grpc_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

type RabbitMQConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Exchange string `mapstructure:"exchange"`
}

// AuthConfig configures host token verification. An empty JWTSecret disables it.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type GameConfig struct {
	SessionGCDelay     time.Duration `mapstructure:"session_gc_delay"`
	DefaultTimeLimit   time.Duration `mapstructure:"default_time_limit"`
	DefaultPoints      int           `mapstructure:"default_points"`
	MinComebackPlayers int           `mapstructure:"min_comeback_players"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

// Load reads configuration from an optional config/config.yaml, a .env file
// (outside production) and the environment. Nested keys map to env names with
// "_" instead of ".", e.g. DATABASE_HOST or GAME_SESSION_GC_DELAY.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("env", "APP_ENV")

	if v.GetString("env") != "production" {
		// .env is optional in development.
		_ = godotenv.Load()
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.grpc_port", "50052")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.host", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "stemuiz")
	v.SetDefault("database.password", "stemuiz_password")
	v.SetDefault("database.name", "stemuiz")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "redis")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", "24h")

	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.host", "rabbitmq")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.exchange", "game.events")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("game.session_gc_delay", "1h")
	v.SetDefault("game.default_time_limit", "30s")
	v.SetDefault("game.default_points", 1000)
	v.SetDefault("game.min_comeback_players", 6)
}

func (c *Config) validate() error {
	if c.Game.DefaultTimeLimit <= 0 {
		return fmt.Errorf("game.default_time_limit must be positive, got %s", c.Game.DefaultTimeLimit)
	}
	if c.Game.DefaultPoints <= 0 {
		return fmt.Errorf("game.default_points must be positive, got %d", c.Game.DefaultPoints)
	}
	if c.Game.SessionGCDelay < 0 {
		return fmt.Errorf("game.session_gc_delay must not be negative")
	}
	return nil
}
