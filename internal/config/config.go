// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno. Los secretos (firma de sesión,
// clave de cifrado, client secrets) se esperan por env; el YAML cubre
// lo no sensible.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"` // si vacío => <server.base_url>/auth/callback/<provider>
	Scopes       []string `yaml:"scopes"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// BaseURL pública del servicio, usada para derivar redirect URLs
		// cuando el provider no define la suya.
		BaseURL string `yaml:"base_url"`
		// LandingPath es a dónde se redirige tras el callback (éxito o error).
		LandingPath string `yaml:"landing_path"`
	} `yaml:"server"`

	Storage struct {
		DSN             string `yaml:"dsn"`
		MaxConns        int    `yaml:"max_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Session struct {
		CookieName    string `yaml:"cookie_name"`
		TTL           string `yaml:"ttl"`            // default 168h
		SigningSecret string `yaml:"signing_secret"` // preferir SESSION_SIGNING_SECRET
	} `yaml:"session"`

	Security struct {
		// TokenEncryptionKey cifra tokens de providers en reposo.
		// Preferir TOKEN_ENCRYPTION_KEY por env.
		TokenEncryptionKey string `yaml:"token_encryption_key"`
	} `yaml:"security"`

	Handshake struct {
		// TTL de las cookies de handshake (state/provider/verifier).
		TTL string `yaml:"ttl"` // default 600s
	} `yaml:"handshake"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Limit   int    `yaml:"limit"`
		Window  string `yaml:"window"`
	} `yaml:"rate"`

	Providers struct {
		X         ProviderConfig `yaml:"x"`
		Instagram ProviderConfig `yaml:"instagram"`
		Facebook  ProviderConfig `yaml:"facebook"`
		TikTok    ProviderConfig `yaml:"tiktok"`
	} `yaml:"providers"`
}

// Load lee el YAML (si path no es vacío), aplica overrides de env y
// normaliza defaults. Con path vacío la config sale solo de env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnv()
	c.normalize()
	return &c, nil
}

func (c *Config) applyEnv() {
	setStr(&c.App.Env, "APP_ENV")
	setStr(&c.App.LogLevel, "LOG_LEVEL")
	setStr(&c.Server.Addr, "SERVER_ADDR")
	setStr(&c.Server.BaseURL, "SERVER_BASE_URL")
	setStr(&c.Storage.DSN, "STORAGE_DSN")
	setStr(&c.Cache.Kind, "CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Cache.Redis.DB, "REDIS_DB")
	setStr(&c.Session.SigningSecret, "SESSION_SIGNING_SECRET")
	setStr(&c.Security.TokenEncryptionKey, "TOKEN_ENCRYPTION_KEY")

	applyProviderEnv(&c.Providers.X, "X")
	applyProviderEnv(&c.Providers.Instagram, "INSTAGRAM")
	applyProviderEnv(&c.Providers.Facebook, "FACEBOOK")
	applyProviderEnv(&c.Providers.TikTok, "TIKTOK")
}

// applyProviderEnv aplica <PREFIX>_CLIENT_ID / _CLIENT_SECRET / _REDIRECT_URI.
func applyProviderEnv(p *ProviderConfig, prefix string) {
	setStr(&p.ClientID, prefix+"_CLIENT_ID")
	setStr(&p.ClientSecret, prefix+"_CLIENT_SECRET")
	setStr(&p.RedirectURL, prefix+"_REDIRECT_URI")
}

func (c *Config) normalize() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.LandingPath == "" {
		c.Server.LandingPath = "/"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sg_session"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "168h"
	}
	if c.Handshake.TTL == "" {
		c.Handshake.TTL = "600s"
	}
	if c.Rate.Limit <= 0 {
		c.Rate.Limit = 30
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Storage.MaxConns <= 0 {
		c.Storage.MaxConns = 10
	}

	// Redirect URLs derivadas de base_url si no hay override
	deriveRedirect(&c.Providers.X, c.Server.BaseURL, "x")
	deriveRedirect(&c.Providers.Instagram, c.Server.BaseURL, "instagram")
	deriveRedirect(&c.Providers.Facebook, c.Server.BaseURL, "facebook")
	deriveRedirect(&c.Providers.TikTok, c.Server.BaseURL, "tiktok")
}

func deriveRedirect(p *ProviderConfig, baseURL, id string) {
	if p.RedirectURL == "" {
		p.RedirectURL = baseURL + "/auth/callback/" + id
	}
}

// SessionTTL parsea el TTL de sesión con fallback a 7 días.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Session.TTL, 168*time.Hour)
}

// HandshakeTTL parsea el TTL del handshake con fallback a 600s.
func (c *Config) HandshakeTTL() time.Duration {
	return parseDuration(c.Handshake.TTL, 600*time.Second)
}

// RateWindow parsea la ventana de rate limiting con fallback a 1 minuto.
func (c *Config) RateWindow() time.Duration {
	return parseDuration(c.Rate.Window, time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
