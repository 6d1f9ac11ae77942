package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverMySQL  = "mysql"

	defaultAppName           = "Clinic Booking"
	defaultAppPort           = 8080
	defaultOpenAIModel       = "gpt-4o"
	defaultClassifierTimeout = 10 * time.Second
	defaultRateLimit         = 20
	defaultRateWindow        = time.Minute
)

// Config holds the application's configuration values.
type Config struct {
	AppName  string `json:"appname"`
	AppEnv   string `json:"appenv"`
	AppPort  uint16 `json:"appport"`
	GinMode  string `json:"ginmode"`
	LogLevel string `json:"loglevel"`

	StoreDriver string `json:"store_driver"`
	DBHost      string `json:"dbhost"`
	DBPort      uint16 `json:"dbport"`
	DBName      string `json:"dbname"`
	DBUSER      string `json:"dbuser"`
	DBPass      string `json:"-"`

	OpenAIAPIKey      string        `json:"-"`
	OpenAIModel       string        `json:"openai_model"`
	OpenAIBaseURL     string        `json:"openai_base_url"`
	ClassifierTimeout time.Duration `json:"classifier_timeout"`

	RateLimit  int           `json:"rate_limit"`
	RateWindow time.Duration `json:"rate_window"`

	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"-"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from an optional .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("config: .env file not loaded, using process environment")
		}

		appPort, err := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		if err != nil || appPort == 0 {
			appPort = defaultAppPort
		}
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		config = &Config{
			AppName:  getEnv("APPNAME", defaultAppName),
			AppEnv:   os.Getenv("APPENV"),
			AppPort:  uint16(appPort),
			GinMode:  getEnv("GINMODE", "release"),
			LogLevel: getEnv("LOG_LEVEL", "info"),

			StoreDriver: getEnv("STORE_DRIVER", StoreDriverMemory),
			DBHost:      os.Getenv("DBHOST"),
			DBPort:      uint16(dbPort),
			DBName:      os.Getenv("DBNAME"),
			DBUSER:      os.Getenv("DBUSER"),
			DBPass:      os.Getenv("DBPASS"),

			OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:       getEnv("OPENAI_MODEL", defaultOpenAIModel),
			OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
			ClassifierTimeout: getDuration("CLASSIFIER_TIMEOUT", defaultClassifierTimeout),

			RateLimit:  getInt("RATE_LIMIT", defaultRateLimit),
			RateWindow: getDuration("RATE_WINDOW", defaultRateWindow),

			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		}
	})
	return config
}

// ResetConfigForTest drops the cached Config so the next LoadConfig re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// When APPENV is "test" it opens a private in-memory SQLite database instead.
func ConnectMySQL() (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if os.Getenv("APPENV") == "test" {
		dsn := fmt.Sprintf("file:clinic_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	cfg := LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("config: open mysql: %w", err)
	}

	return db, nil
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// getDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
