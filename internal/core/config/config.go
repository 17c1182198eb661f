package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	CORSOrigins []string `mapstructure:"corsorigins"`
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret   string
	Issuer   string
	TTLHours int `mapstructure:"ttlhours"`
}

func (j JWT) TTL() time.Duration { return time.Duration(j.TTLHours) * time.Hour }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mongo struct {
	URI        string
	Database   string
	TimeoutSec int
}

type Redis struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	AdviceTTLSec int    `mapstructure:"advicettlsec"`
}

type Advice struct {
	BaseURL    string `mapstructure:"baseurl"`
	TimeoutSec int
}

type Admin struct {
	Name     string
	Email    string
	Password string
}

type Limits struct {
	RPS              float64
	Burst            int
	Concurrency      int64
	MaxBodyBytes     int64
	RequestTimeoutMs int
}

type Tracing struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Mongo   Mongo
	Redis   Redis `mapstructure:"redis"`
	Advice  Advice
	Admin   Admin
	Limits  Limits
	Tracing Tracing
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "heartbeat-insights")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.corsorigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxsizemb", 100)
	v.SetDefault("log.rotate.maxbackups", 7)
	v.SetDefault("log.rotate.maxagedays", 30)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "heartbeat-insights")
	v.SetDefault("jwt.ttlhours", 720)

	v.SetDefault("db.driver", "mongo")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "heartbeat")
	v.SetDefault("mongo.timeoutsec", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.advicettlsec", 60)

	v.SetDefault("advice.baseurl", "https://api.adviceslip.com")
	v.SetDefault("advice.timeoutsec", 5)

	v.SetDefault("admin.name", "")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("limits.rps", 50)
	v.SetDefault("limits.burst", 100)
	v.SetDefault("limits.concurrency", 256)
	v.SetDefault("limits.maxbodybytes", 1<<20)
	v.SetDefault("limits.requesttimeoutms", 15000)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.servicename", "heartbeat-insights")
}

// Load 读取 YAML（path > CONFIG_PATH > 本地默认文件），再叠加 APP_ 前缀环境变量。
// 文件不存在不算错误：每个 key 都有默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mongo", "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if c.JWT.Secret == "" && c.App.Env != "dev" && c.App.Env != "test" {
		return errors.New("config: jwt.secret is required outside dev")
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("config: jwt.ttlhours must be positive")
	}
	return nil
}

func (c *Config) IsProd() bool { return c.App.Env == "prod" || c.App.Env == "production" }
