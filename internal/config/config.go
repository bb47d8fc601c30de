// Package config loads the server's YAML configuration, with viper-driven
// environment-variable overrides layered on top.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of knobs the core's external collaborators
// (transport, storage wiring) need at startup.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Tenancy  TenancyConfig  `yaml:"tenancy" mapstructure:"tenancy"`
}

type ServerConfig struct {
	Listen  string `yaml:"listen" mapstructure:"listen"`
	BaseURL string `yaml:"baseUrl" mapstructure:"baseUrl"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"` // "postgres" | "sqlite"
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	MaxOpenConn int    `yaml:"maxOpenConn" mapstructure:"maxOpenConn"`
}

// TenancyConfig carries the per-tenant compatibility flags and formatting
// choices that are left tenant-configurable rather than fixed.
type TenancyConfig struct {
	// CompatEmptyValueClearsAttribute makes PATCH replace with
	// [{"value":""}] clear the attribute.
	CompatEmptyValueClearsAttribute bool `yaml:"compatEmptyValueClearsAttribute" mapstructure:"compatEmptyValueClearsAttribute"`
	// KeepEmptyUserGroups keeps an empty User.groups array visible in
	// responses instead of stripping it.
	KeepEmptyUserGroups bool `yaml:"keepEmptyUserGroups" mapstructure:"keepEmptyUserGroups"`
	// MetaDateTimeFormat is "rfc3339" or "epoch".
	MetaDateTimeFormat string `yaml:"metaDateTimeFormat" mapstructure:"metaDateTimeFormat"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.baseUrl", "http://localhost:8080/scim/v2")
	v.SetDefault("database.backend", "sqlite")
	v.SetDefault("database.dsn", "scim.db")
	v.SetDefault("database.maxOpenConn", 10)
	v.SetDefault("tenancy.compatEmptyValueClearsAttribute", false)
	v.SetDefault("tenancy.keepEmptyUserGroups", false)
	v.SetDefault("tenancy.metaDateTimeFormat", "rfc3339")
}

// Load reads configFile (YAML), layering in SCIM_-prefixed environment
// variable overrides via viper's automatic-env binding and key replacer.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the structural requirements of this core's own
// configuration knobs.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("config: server.listen must not be empty")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("config: server.baseUrl must not be empty")
	}
	switch c.Database.Backend {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: database.backend must be \"postgres\" or \"sqlite\", got %q", c.Database.Backend)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn must not be empty")
	}
	switch c.Tenancy.MetaDateTimeFormat {
	case "rfc3339", "epoch":
	default:
		return fmt.Errorf("config: tenancy.metaDateTimeFormat must be \"rfc3339\" or \"epoch\", got %q", c.Tenancy.MetaDateTimeFormat)
	}
	return nil
}
