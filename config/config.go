package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`
	DBHost  string `json:"dbhost"`
	DBPort  uint16 `json:"dbport"`
	DBName  string `json:"dbname"`
	DBUSER  string `json:"dbuser"`
	DBPass  string `json:"dbpass"`

	RedisAddr   string `json:"redis_addr"`
	RedisPass   string `json:"-"`
	RedisDB     int    `json:"redis_db"`
	RabbitMQURL string `json:"-"`
	LogLevel    string `json:"log_level"`

	SlotDurationMinutes int           `json:"slot_duration_minutes"`
	ClinicOpen          string        `json:"clinic_open"`
	ClinicLastSlot      string        `json:"clinic_last_slot"`
	SlotCapacity        int           `json:"slot_capacity"`
	MaxOverflowDays     int           `json:"max_overflow_days"`
	FollowUpMarkers     []string      `json:"follow_up_markers"`
	ItemCatalogFile     string        `json:"item_catalog_file"`
	Doctors             []string      `json:"doctors"`
	ItemCacheTTL        time.Duration `json:"item_cache_ttl"`
}

var config *Config
var once sync.Once

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-numeric config value")
	}
	return def
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig loads the environment variables, from a .env file when one is
// present, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded, using process environment")
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		ttl := 5 * time.Minute
		if v := os.Getenv("ITEM_CACHE_TTL"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				ttl = d
			}
		}

		defaults := slot.DefaultPolicy()
		config = &Config{
			AppName: os.Getenv("APPNAME"),
			AppEnv:  os.Getenv("APPENV"),
			AppPort: uint16(appPort),
			GinMode: os.Getenv("GINMODE"),
			DBHost:  os.Getenv("DBHOST"),
			DBPort:  uint16(dbPort),
			DBName:  os.Getenv("DBNAME"),
			DBUSER:  os.Getenv("DBUSER"),
			DBPass:  os.Getenv("DBPASS"),

			RedisAddr:   envString("REDIS_ADDR", "localhost:6379"),
			RedisPass:   os.Getenv("REDIS_PASS"),
			RedisDB:     envInt("REDIS_DB", 0),
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			LogLevel:    envString("LOG_LEVEL", "info"),

			SlotDurationMinutes: envInt("SLOT_DURATION_MINUTES", int(slot.DefaultGranularity/time.Minute)),
			ClinicOpen:          envString("CLINIC_OPEN", slot.FormatClock(slot.DefaultOpen)),
			ClinicLastSlot:      envString("CLINIC_LAST_SLOT", slot.FormatClock(slot.DefaultLastStart)),
			SlotCapacity:        envInt("SLOT_CAPACITY", slot.DefaultCapacity),
			MaxOverflowDays:     envInt("MAX_OVERFLOW_DAYS", 0),
			FollowUpMarkers:     envList("FOLLOW_UP_MARKERS", defaults.FollowUpMarkers),
			ItemCatalogFile:     os.Getenv("ITEM_CATALOG_FILE"),
			Doctors:             envList("DOCTORS", nil),
			ItemCacheTTL:        ttl,
		}
	})
	return config
}

// Grid builds the slot grid from the configured clinic hours.
func (c *Config) Grid() (slot.Grid, error) {
	open, err := slot.ParseClock(c.ClinicOpen)
	if err != nil {
		return slot.Grid{}, fmt.Errorf("CLINIC_OPEN: %w", err)
	}
	last, err := slot.ParseClock(c.ClinicLastSlot)
	if err != nil {
		return slot.Grid{}, fmt.Errorf("CLINIC_LAST_SLOT: %w", err)
	}
	g := slot.Grid{
		Granularity: time.Duration(c.SlotDurationMinutes) * time.Minute,
		Open:        open,
		LastStart:   last,
		Capacity:    c.SlotCapacity,
	}
	return g, g.Check()
}

// Policy returns the pricing policy with the configured follow-up markers.
func (c *Config) Policy() slot.Policy {
	p := slot.DefaultPolicy()
	p.FollowUpMarkers = c.FollowUpMarkers
	return p
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// With APPENV=test it opens a private in-memory sqlite database instead.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if cfg.AppEnv == "test" {
		dsn := fmt.Sprintf("file:testdb_app_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}
