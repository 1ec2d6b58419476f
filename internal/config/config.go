package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SMTPConfig configures the email channel. Notifications are skipped
// when Host is empty.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// WhatsAppConfig configures the Ultramsg channel. Notifications are
// skipped when InstanceID is empty.
type WhatsAppConfig struct {
	BaseURL    string `yaml:"base_url"`
	InstanceID string `yaml:"instance_id"`
	Token      string `yaml:"token"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "partnerledger.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		WhatsApp: WhatsAppConfig{
			BaseURL: "https://api.ultramsg.com",
		},
	}

	if path := os.Getenv("PARTNERLEDGER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PARTNERLEDGER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PARTNERLEDGER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARTNERLEDGER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PARTNERLEDGER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PARTNERLEDGER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if host := os.Getenv("PARTNERLEDGER_SMTP_HOST"); host != "" {
		cfg.SMTP.Host = host
	}
	if portStr := os.Getenv("PARTNERLEDGER_SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARTNERLEDGER_SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if username := os.Getenv("PARTNERLEDGER_SMTP_USERNAME"); username != "" {
		cfg.SMTP.Username = username
	}
	if password := os.Getenv("PARTNERLEDGER_SMTP_PASSWORD"); password != "" {
		cfg.SMTP.Password = password
	}
	if from := os.Getenv("PARTNERLEDGER_SMTP_FROM"); from != "" {
		cfg.SMTP.From = from
	}

	if baseURL := os.Getenv("PARTNERLEDGER_WHATSAPP_BASE_URL"); baseURL != "" {
		cfg.WhatsApp.BaseURL = baseURL
	}
	if instance := os.Getenv("PARTNERLEDGER_WHATSAPP_INSTANCE_ID"); instance != "" {
		cfg.WhatsApp.InstanceID = instance
	}
	if token := os.Getenv("PARTNERLEDGER_WHATSAPP_TOKEN"); token != "" {
		cfg.WhatsApp.Token = token
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
