package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"readearn-backend/models"
)

// Config holds the application configuration
type Config struct {
	Database struct {
		Host     string `yaml:"host"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		Port     string `yaml:"port"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Auth struct {
		Secret        string `yaml:"secret"`
		PromoteSecret string `yaml:"promote_secret"`
	} `yaml:"auth"`
	Server struct {
		Port    int  `yaml:"port"`
		Verbose bool `yaml:"verbose"`
	} `yaml:"server"`

	// Defaults are the economic fallbacks used when the settings row is
	// absent. Seeded from models.DefaultSnapshot and overridable per field
	// through the environment, so both code paths resolve identically.
	Defaults models.SettingsSnapshot `yaml:"-"`
}

// GlobalConfig is the global configuration instance
var GlobalConfig Config

// DSN generates the PostgreSQL DSN from database config
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

// LoadConfig reads and parses the YAML configuration file into GlobalConfig
func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, &GlobalConfig); err != nil {
		return err
	}

	if GlobalConfig.Database.Host == "" {
		log.Fatal("database.host is required in config.yaml")
	}
	if GlobalConfig.Database.User == "" {
		log.Fatal("database.user is required in config.yaml")
	}
	if GlobalConfig.Database.Password == "" {
		log.Fatal("database.password is required in config.yaml")
	}
	if GlobalConfig.Database.DBName == "" {
		log.Fatal("database.dbname is required in config.yaml")
	}
	if GlobalConfig.Database.Port == "" {
		log.Fatal("database.port is required in config.yaml")
	}
	if GlobalConfig.Database.SSLMode == "" {
		log.Fatal("database.sslmode is required in config.yaml")
	}
	if GlobalConfig.Auth.Secret == "" {
		log.Fatal("auth.secret is required in config.yaml")
	}
	if GlobalConfig.Server.Port == 0 {
		log.Fatal("server.port is required in config.yaml")
	}
	if GlobalConfig.Server.Port < 1 || GlobalConfig.Server.Port > 65535 {
		log.Fatal("server.port must be between 1 and 65535")
	}

	GlobalConfig.Defaults = DefaultsFromEnv()

	return nil
}

// DefaultsFromEnv resolves the economic defaults: the hardcoded snapshot
// overlaid with any environment overrides.
func DefaultsFromEnv() models.SettingsSnapshot {
	defaults := models.DefaultSnapshot()
	if v, ok := envDecimal("EARNING_PER_VIEW"); ok {
		defaults.EarningPerView = v
	}
	if v, ok := envDecimal("EARNING_PER_SELF_VIEW"); ok {
		defaults.EarningPerSelfView = v
	}
	if v, ok := envDecimal("MIN_WITHDRAWAL"); ok {
		defaults.MinWithdrawal = v
	}
	if raw := os.Getenv("VIEW_COOLDOWN_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			defaults.Cooldown = time.Duration(minutes) * time.Minute
		} else {
			log.Printf("ignoring invalid VIEW_COOLDOWN_MINUTES=%q", raw)
		}
	}
	return defaults
}

func envDecimal(key string) (decimal.Decimal, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.IsPositive() {
		log.Printf("ignoring invalid %s=%q", key, raw)
		return decimal.Zero, false
	}
	return v, true
}
