package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

// DatabaseConfig selects discrete mode when any of the discrete fields
// is set; otherwise the URL form is used. Both empty means the data
// plane is unconfigured.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
}

type CrawlerConfig struct {
	UserAgent  string `yaml:"userAgent"`
	TimeoutMs  int    `yaml:"timeoutMs"`
	SettleMs   int    `yaml:"settleMs"`
	BrowserURL string `yaml:"browserURL"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // openai | static
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseURL"`
	Model    string `yaml:"model"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"perMinute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Default user agent identifies the tool on every fetch.
const DefaultUserAgent = "Mozilla/5.0 (compatible; linkdex/0.1.0; +https://github.com/linkdex)"

// Load reads the yaml config at path (a missing file is fine; defaults
// apply) and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8000},
		Cache:  CacheConfig{TTLSeconds: 3600},
		Crawler: CrawlerConfig{
			UserAgent: DefaultUserAgent,
			TimeoutMs: 30000,
			SettleMs:  1000,
		},
		Embedding: EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small"},
	}

	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PGHOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PGPORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("PGDATABASE"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PGUSER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PGPASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LINKDEX_CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("LINKDEX_WEB_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LINKDEX_WEB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("LINKDEX_WEB_DEBUG"); v != "" {
		cfg.Server.Debug = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LINKDEX_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("LINKDEX_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("LINKDEX_EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("LINKDEX_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("LINKDEX_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
}

// DSN returns the Postgres connection string, or "" when the database
// is unconfigured. Any present discrete field selects discrete mode.
func (d DatabaseConfig) DSN() string {
	if d.Host != "" || d.Port != 0 || d.Name != "" || d.User != "" || d.Password != "" {
		u := &url.URL{Scheme: "postgres"}
		host := d.Host
		if host == "" {
			host = "localhost"
		}
		if d.Port != 0 {
			u.Host = fmt.Sprintf("%s:%d", host, d.Port)
		} else {
			u.Host = host
		}
		if d.Name != "" {
			u.Path = "/" + d.Name
		}
		if d.User != "" {
			if d.Password != "" {
				u.User = url.UserPassword(d.User, d.Password)
			} else {
				u.User = url.User(d.User)
			}
		}
		return u.String()
	}
	return d.URL
}

// Configured reports whether any database connection info is present.
func (d DatabaseConfig) Configured() bool {
	return d.DSN() != ""
}
