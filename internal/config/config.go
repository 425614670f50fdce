package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Допустимые значения CACHE_BACKEND
const (
	CacheFile     = "file"
	CacheMemory   = "memory"
	CachePostgres = "postgres"
	CacheMongo    = "mongo"
)

type Config struct {
	Port            string        `yaml:"port"`
	TodosPort       string        `yaml:"todos_port"`
	TodosURL        string        `yaml:"todos_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	CacheBackend    string        `yaml:"cache_backend"`
	CachePath       string        `yaml:"cache_path"`
	CacheKey        string        `yaml:"cache_key"`
	DatabaseURL     string        `yaml:"database_url"`
	MongoURI        string        `yaml:"mongo_uri"`
	MongoDatabase   string        `yaml:"mongo_database"`
	PageSize        int           `yaml:"page_size"`
	LogLevel        string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		TodosPort:      "3000",
		TodosURL:       "http://localhost:3000/todos",
		RequestTimeout: 5 * time.Second,
		CacheBackend:   CacheFile,
		CacheKey:       "tasks",
		MongoDatabase:  "taskboard",
		PageSize:       5,
		LogLevel:       "info",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE, then
// the environment. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.TodosPort = getEnv("TODOS_PORT", c.TodosPort)
	c.TodosURL = getEnv("TODOS_URL", c.TodosURL)
	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.CachePath = getEnv("CACHE_PATH", c.CachePath)
	c.CacheKey = getEnv("CACHE_KEY", c.CacheKey)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.RefreshInterval, err = getDuration("REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	return nil
}

func (c Config) Validate() error {
	switch c.CacheBackend {
	case CacheFile, CacheMemory:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return errors.New("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
	case CacheMongo:
		if c.MongoURI == "" {
			return errors.New("CACHE_BACKEND=mongo requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
