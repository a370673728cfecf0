package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 讀取 .env, 設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Env         string `mapstructure:"ENV"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// mongo | postgres
	DbDriver            string `mapstructure:"DB_DRIVER"`
	MongoURI            string `mapstructure:"MONGO_URI"`
	MongoDb             string `mapstructure:"MONGO_DB"`
	MongoUseTransaction bool   `mapstructure:"MONGO_USE_TRANSACTION"`
	DbName              string `mapstructure:"POSTGRES_DB"`
	DbHost              string `mapstructure:"POSTGRES_HOST"`
	DbPort              string `mapstructure:"POSTGRES_PORT"`
	DbUser              string `mapstructure:"POSTGRES_USER"`
	DbPas               string `mapstructure:"POSTGRES_PASSWORD"`
	MigrationURL        string `mapstructure:"MIGRATION_URL"`

	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDb            int    `mapstructure:"REDIS_DB"`
	ProductCacheTTLSec int    `mapstructure:"PRODUCT_CACHE_TTL_SEC"`

	// 逗號分隔
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	OrderEventTopic string `mapstructure:"ORDER_EVENT_TOPIC"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogKafkaTopic string `mapstructure:"LOG_KAFKA_TOPIC"`

	IdentityJwtSecret string `mapstructure:"IDENTITY_JWT_SECRET"`
	IdentityPublicKey string `mapstructure:"IDENTITY_PUBLIC_KEY"`
	IdentityIssuer    string `mapstructure:"IDENTITY_ISSUER"`
	SellerConfigPath  string `mapstructure:"SELLER_CONFIG_PATH"`

	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
	PaymentCurrency   string `mapstructure:"PAYMENT_CURRENCY"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryApiKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryApiSecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// token_bucket | fixed_window | slide_window | redis_token_bucket | none
	RateLimitAlgorithm string `mapstructure:"RATE_LIMIT_ALGORITHM"`
	RateLimitCapacity  int    `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRate      int    `mapstructure:"RATE_LIMIT_RATE"`
	RateLimitWindowSec int    `mapstructure:"RATE_LIMIT_WINDOW_SEC"`
}

// Brokers 將 KAFKA_BROKERS 拆成清單
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		path := configPath()
		cf, err := Load(path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf

		if _, err := os.Stat(path); err != nil {
			return
		}
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := Load(path)
			if err != nil {
				log.Printf("failed to reload config file: %v", err)
				return
			}
			config_singleton.mu.Lock()
			config_singleton.Config = cf
			config_singleton.mu.Unlock()
		})
	})
}

func configPath() string {
	if p := os.Getenv("STOREFRONT_CONFIG"); p != "" {
		return p
	}
	return ".env"
}

/*
單純回傳錯誤  由外部決定要不要Fatal
.env 不存在時只讀環境變數
*/
func Load(path string) (*Config, error) {
	// 不覆蓋已存在的環境變數
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	setDefaults()
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	bindEnvs(Config{})

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cf := &Config{}
	if err := viper.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

func setDefaults() {
	viper.SetDefault("SERVICE_NAME", "storefront")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_DRIVER", "mongo")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "storefront")
	viper.SetDefault("MIGRATION_URL", "file://internal/infra/repository/db/migration")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("PRODUCT_CACHE_TTL_SEC", 300)
	viper.SetDefault("ORDER_EVENT_TOPIC", "order-created")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("RATE_LIMIT_ALGORITHM", "token_bucket")
	viper.SetDefault("RATE_LIMIT_CAPACITY", 50)
	viper.SetDefault("RATE_LIMIT_RATE", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 1)
}

// AutomaticEnv 只對已知 key 生效, 依 mapstructure tag 逐一綁定
func bindEnvs(cf any) {
	t := reflect.TypeOf(cf)
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}
