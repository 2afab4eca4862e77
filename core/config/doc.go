// Package config provides configuration management for the inventory service.
//
// Values come from a .env file (if present) and environment variables. Defaults are
// declared with `default` struct tags on each section and registered with Viper by
// reflection, so every key can be overridden as SECTION_KEY (e.g. BMC_TIMEOUT_SECONDS).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, metrics toggle
//   - Database: MySQL or SQLite connection details
//   - Storage: MinIO/S3 bucket for BMC snapshot archives
//   - Log: level and format
//   - BMC: driver, credentials, timeout and retry policy
//   - Reconcile: run timeout, compare cache TTL, snapshot archiving
//   - Events: NATS URL and subject prefix
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
