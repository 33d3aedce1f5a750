package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name          string `mapstructure:"name"`
		HTTPAddr      string `mapstructure:"http_addr"`
		LogProduction bool   `mapstructure:"log_production"`
	} `mapstructure:"app"`
	Database struct {
		Driver               string `mapstructure:"driver"`
		DSN                  string `mapstructure:"dsn"`
		MaxIdleConns         int    `mapstructure:"max_idle_conns"`
		MaxOpenConns         int    `mapstructure:"max_open_conns"`
		ConnMaxLifetimeHours int    `mapstructure:"conn_max_lifetime_hours"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Service struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"service"`
	Storage struct {
		AccountID       string `mapstructure:"account_id"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		AccessKeySecret string `mapstructure:"access_key_secret"`
		Bucket          string `mapstructure:"bucket"`
		CDNBaseURL      string `mapstructure:"cdn_base_url"`
	} `mapstructure:"storage"`
	Worker struct {
		Interval time.Duration `mapstructure:"interval"`
		Batch    int           `mapstructure:"batch"`
	} `mapstructure:"worker"`
	Scheduler struct {
		ReevaluateInterval time.Duration `mapstructure:"reevaluate_interval"`
	} `mapstructure:"scheduler"`
}

// StorageEnabled reports whether tour archives can be uploaded.
func (c *Config) StorageEnabled() bool {
	return c.Storage.AccountID != "" && c.Storage.Bucket != ""
}

// env names that do not follow the SECTION_KEY convention
var aliases = map[string][]string{
	"database.dsn":                  {"DATABASE_URL"},
	"database.driver":               {"DB_DRIVER"},
	"app.http_addr":                 {"HTTP_ADDR"},
	"app.log_production":            {"LOG_PRODUCTION"},
	"service.token":                 {"SERVICE_TOKEN"},
	"redis.addr":                    {"REDIS_ADDR"},
	"redis.password":                {"REDIS_PASSWORD"},
	"storage.account_id":            {"CLOUDFLARE_ACCOUNT_ID"},
	"storage.access_key_id":         {"R2_ACCESS_KEY_ID"},
	"storage.access_key_secret":     {"R2_ACCESS_KEY_SECRET"},
	"storage.bucket":                {"R2_BUCKET_NAME"},
	"storage.cdn_base_url":          {"CDN_BASE_URL"},
	"worker.interval":               {"WORKER_INTERVAL"},
	"worker.batch":                  {"WORKER_BATCH"},
	"scheduler.reevaluate_interval": {"TOUR_REEVALUATE_INTERVAL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "il2-stats")
	v.SetDefault("app.http_addr", ":5200")
	v.SetDefault("app.log_production", false)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime_hours", 1)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("service.token", "")
	v.SetDefault("storage.account_id", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.access_key_secret", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.cdn_base_url", "")
	v.SetDefault("worker.interval", "10s")
	v.SetDefault("worker.batch", 100)
	v.SetDefault("scheduler.reevaluate_interval", "15m")
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range aliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.Service.Token == "" {
		return nil, fmt.Errorf("SERVICE_TOKEN environment variable not set")
	}
	if cfg.Worker.Batch <= 0 {
		cfg.Worker.Batch = 100
	}
	return cfg, nil
}
