package config

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Backend  BackendConfig  `yaml:"backend"`
	Upload   UploadConfig   `yaml:"upload"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	CookieSecret   string   `yaml:"cookie_secret"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	CookieMaxAgeH  int      `yaml:"cookie_max_age_hours"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // memory | mysql | sqlite
	TTLHours int    `yaml:"ttl_hours"`
	MaxSize  int    `yaml:"max_size"`
	Path     string `yaml:"path"` // sqlite file
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

const defaultCookieSecret = "ifrs-console-dev-secret-change-me"

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 5173, CookieSecret: defaultCookieSecret, CookieMaxAgeH: 24 * 7, AllowedOrigins: []string{"http://localhost:5173"}},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Backend:  BackendConfig{BaseURL: "http://localhost:8000", TimeoutSeconds: 180},
		Upload:   UploadConfig{MaxSizeMB: 50},
		Store:    StoreConfig{Driver: "memory", TTLHours: 24, MaxSize: 10000, Path: "data/sessions.db"},
		Database: DatabaseConfig{Port: 3306, Name: "ifrs_console"},
	}
}

func Load(configFile string) *Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	c := Default()

	paths := []string{"etc/config-dev.yaml", "/etc/ifrs-console/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Backend.BaseURL, "BACKEND_URL")
	envOverride(&c.Server.CookieSecret, "COOKIE_SECRET")
	envOverride(&c.Store.Driver, "STORE_DRIVER")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Store.Path, "STORE_PATH")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideInt(&c.Upload.MaxSizeMB, "UPLOAD_MAX_MB")
	envOverrideBool(&c.Server.CookieSecure, "COOKIE_SECURE")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// UsesDefaultSecret reports whether the cookie signing key was never configured.
func (c *Config) UsesDefaultSecret() bool {
	return c.Server.CookieSecret == "" || c.Server.CookieSecret == defaultCookieSecret
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) CookieMaxAge() time.Duration {
	return time.Duration(c.Server.CookieMaxAgeH) * time.Hour
}

func (c *Config) StoreTTL() time.Duration {
	return time.Duration(c.Store.TTLHours) * time.Hour
}

func (c *Config) UploadLimit() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// OpenSQLiteDB opens the single-file token database, creating its directory.
func (c *Config) OpenSQLiteDB() (*gorm.DB, error) {
	if dir := filepath.Dir(c.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return gorm.Open(sqlite.Open(c.Store.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
