package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/database"
	"beryll-inventory/core/events"
	"beryll-inventory/core/logger"
	"beryll-inventory/core/reconcile"
	"beryll-inventory/core/server"
	"beryll-inventory/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Each section is owned by the package that consumes it.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// BMC holds credentials and transport settings for BMC inventory queries.
	BMC bmc.Config `mapstructure:"bmc"`
	// Reconcile holds timeouts and caching for reconciliation runs.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	// Events holds configuration for the inventory change event publisher.
	Events events.Config `mapstructure:"events"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}

	switch c.BMC.Driver {
	case bmc.DriverRedfish, bmc.DriverBmclib:
	default:
		errs = append(errs, fmt.Errorf("bmc.driver: unsupported %q", c.BMC.Driver))
	}
	if c.BMC.Protocol != "http" && c.BMC.Protocol != "https" {
		errs = append(errs, fmt.Errorf("bmc.protocol: must be http or https, got %q", c.BMC.Protocol))
	}
	if c.BMC.Retries < 0 {
		errs = append(errs, errors.New("bmc.retries: must not be negative"))
	}

	if c.Reconcile.ArchiveSnapshots && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket: required when reconcile.archive_snapshots is set"))
	}

	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
