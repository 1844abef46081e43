package config

import (
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 設置 viper watch 與 onConfigChange
read : 一般讀取, 需要讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DbName            string        `mapstructure:"POSTGRES_DB"`
	DbHost            string        `mapstructure:"POSTGRES_HOST"`
	DbPort            string        `mapstructure:"POSTGRES_PORT"`
	DbUser            string        `mapstructure:"POSTGRES_USER"`
	DbPas             string        `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	RedisRetryDelay   time.Duration `mapstructure:"REDIS_RETRY_DELAY"`
	CacheExpiration   int           `mapstructure:"CACHE_EXPIRATION"`
	AuthTokenKey      string        `mapstructure:"AUTH_TOKEN_KEY"`
	KafkaBrokers      []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic   string        `mapstructure:"KAFKA_ORDER_TOPIC"`
	KafkaLogTopic     string        `mapstructure:"KAFKA_LOG_TOPIC"`
	RateLimitCapacity int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRatePS   int           `mapstructure:"RATE_LIMIT_RATE_PS"`
	RealtimeBroadcast string        `mapstructure:"REALTIME_BROADCAST"`
	PermissionFile    string        `mapstructure:"PERMISSION_FILE"`
}

// CacheTTL CACHE_EXPIRATION 為秒數, 非正數時使用預設值, 快取一律有過期時間
func (c *Config) CacheTTL() time.Duration {
	if c.CacheExpiration <= 0 {
		return defaultCacheExpiration * time.Second
	}
	return time.Duration(c.CacheExpiration) * time.Second
}

const defaultCacheExpiration = 3600

var defaults = map[string]any{
	"SERVER_PORT":         "5000",
	"ENV":                 "development",
	"LOG_LEVEL":           "info",
	"POSTGRES_DB":         "ordertracker",
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "postgres",
	"POSTGRES_PASSWORD":   "postgres",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_RETRY_DELAY":   "5s",
	"CACHE_EXPIRATION":    defaultCacheExpiration,
	"AUTH_TOKEN_KEY":      "",
	"KAFKA_BROKERS":       []string{},
	"KAFKA_ORDER_TOPIC":   "order-events",
	"KAFKA_LOG_TOPIC":     "",
	"RATE_LIMIT_CAPACITY": 20,
	"RATE_LIMIT_RATE_PS":  5,
	"REALTIME_BROADCAST":  "local",
	"PERMISSION_FILE":     "docs/permission.yaml",
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleTon{}
		v := viper.GetViper()
		cf, fileLoaded, err := loadConfig(v, configFilePath())
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.Config = cf
		if !fileLoaded {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, _, err := loadConfig(v, "")
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
			log.Printf("config reloaded from %s", e.Name)
		})
		v.WatchConfig()
	})
}

func configFilePath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return ".env"
}

/*
單純回傳錯誤, 由外部決定要不要Fatal
設定檔不存在時只使用環境變數與預設值
*/
func loadConfig(v *viper.Viper, path string) (cf *Config, fileLoaded bool, err error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
	}
	if path != "" || v.ConfigFileUsed() != "" {
		if err = v.ReadInConfig(); err == nil {
			fileLoaded = true
		} else if !isNotExist(err) {
			return nil, false, err
		}
	}

	cf = &Config{}
	if err = v.Unmarshal(cf); err != nil {
		return nil, false, err
	}
	return cf, fileLoaded, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// LoadConfigFrom 給測試或工具使用, 不設置 watch
func LoadConfigFrom(path string) (*Config, error) {
	cf, _, err := loadConfig(viper.New(), path)
	return cf, err
}
