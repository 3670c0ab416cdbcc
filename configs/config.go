package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FORFLY_"

type AppConfig struct {
	Env             string `koanf:"env"` // dev | test | production
	HTTPAddr        string `koanf:"http_addr"`
	APIBaseURL      string `koanf:"api_base_url"`
	AuthRedirectURL string `koanf:"auth_redirect_url"`
	LogFile         string `koanf:"log_file"`
	LogLevel        string `koanf:"log_level"`
}

type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DB       string `koanf:"db"`
	SSLMode  string `koanf:"sslmode"`
}

// DSN builds a libpq keyword/value connection string pinned to UTC.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		p.Host, p.User, p.Password, p.DB, p.Port, p.SSLMode,
	)
}

type RedisConfig struct {
	Addr           string        `koanf:"addr"`
	Password       string        `koanf:"password"`
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl"`
}

type SessionConfig struct {
	Secret string `koanf:"secret"`
	Name   string `koanf:"name"`
	Secure bool   `koanf:"secure"`
}

type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	LinkTTL   time.Duration `koanf:"link_ttl"`
}

type OIDCConfig struct {
	Issuer       string `koanf:"issuer"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

func (o OIDCConfig) Enabled() bool { return o.Issuer != "" }

type EmailConfig struct {
	AWSAccessKeyID     string `koanf:"aws_access_key_id"`
	AWSSecretAccessKey string `koanf:"aws_secret_access_key"`
	AWSRegion          string `koanf:"aws_region"`
	SenderEmail        string `koanf:"sender_address"`
	Endpoint           string `koanf:"endpoint"` // optional, e.g. a local SES emulator
}

type AfricaTalkingConfig struct {
	Username string `koanf:"username"`
	APIKey   string `koanf:"api_key"`
	SMSURL   string `koanf:"sms_url"`
	SenderID string `koanf:"sender_id"`
}

type Config struct {
	App      AppConfig           `koanf:"app"`
	Postgres PostgresConfig      `koanf:"postgres"`
	Redis    RedisConfig         `koanf:"redis"`
	Session  SessionConfig       `koanf:"session"`
	Security SecurityConfig      `koanf:"security"`
	OIDC     OIDCConfig          `koanf:"oidc"`
	Email    EmailConfig         `koanf:"email"`
	SMS      AfricaTalkingConfig `koanf:"sms"`
}

func (c Config) IsProduction() bool { return c.App.Env == "production" }

func defaults() Config {
	var c Config
	c.App.Env = "dev"
	c.App.HTTPAddr = ":3333"
	c.App.LogFile = "./logs/app.log"
	c.Postgres = PostgresConfig{Host: "localhost", Port: "5432", User: "docker", Password: "docker", DB: "forfly", SSLMode: "disable"}
	c.Redis.IdempotencyTTL = 24 * time.Hour
	c.Session.Name = "auth"
	c.Security.TokenTTL = 7 * 24 * time.Hour
	c.Security.LinkTTL = 7 * 24 * time.Hour
	c.Email.AWSRegion = "us-east-1"
	c.SMS.SMSURL = "https://api.sandbox.africastalking.com/version1/messaging" // Sandbox URL
	c.SMS.SenderID = "AFRICASTKNG"
	return c
}

// Load reads, in increasing priority: built-in defaults, <dir>/base.yaml,
// <dir>/<env>.yaml and FORFLY_* environment variables (a .env file in the
// working directory is loaded into the environment first).
// e.g. FORFLY_POSTGRES__HOST, FORFLY_SECURITY__JWT_SECRET
func Load(dir string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	envName := os.Getenv(envPrefix + "APP__ENV")
	if envName == "" {
		envName = "dev"
	}

	k := koanf.New(".")
	for _, name := range []string{"base", envName} {
		path := fmt.Sprintf("%s/%s.yaml", dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.App.APIBaseURL == "" {
		return fmt.Errorf("app.api_base_url required")
	}
	if c.Postgres.Host == "" || c.Postgres.DB == "" {
		return fmt.Errorf("postgres.host and postgres.db required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	if c.IsProduction() && c.Email.SenderEmail == "" {
		return fmt.Errorf("email.sender_address required in production")
	}
	return nil
}
