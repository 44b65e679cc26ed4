package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "WATRACK"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "watrack.db"
	defaultLogLevel     = "info"
	defaultVerifyToken  = "atikwanduka-secret"
)

// AppConfig captures runtime configuration for the ingestion service.
// WhatsAppPhone may be empty: the redirect endpoint degrades to a 500
// for every request rather than failing the whole process.
type AppConfig struct {
	HTTPAddress        string
	DatabasePath       string
	LogLevel           string
	WhatsAppPhone      string
	WebhookVerifyToken string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("webhook.verify_token", defaultVerifyToken)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:        configViper.GetString("http.address"),
		DatabasePath:       configViper.GetString("database.path"),
		LogLevel:           configViper.GetString("log.level"),
		WhatsAppPhone:      strings.TrimSpace(configViper.GetString("whatsapp.phone")),
		WebhookVerifyToken: configViper.GetString("webhook.verify_token"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.WebhookVerifyToken) == "" {
		return fmt.Errorf("webhook.verify_token is required")
	}
	return nil
}
