package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServiceName       string `env:"SERVICE_NAME" envDefault:"equipreg"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPListenAddr    string `env:"HTTP_LISTEN_ADDR" envDefault:":8090"`
	MetricsListenAddr string `env:"METRICS_LISTEN_ADDR" envDefault:":9090"`

	// Optional TLS for the API listener. With a client CA set, callers must
	// present a certificate signed by it in addition to their API key.
	TLSCertFile     string `env:"TLS_CERT_FILE"`
	TLSKeyFile      string `env:"TLS_KEY_FILE"`
	TLSClientCAFile string `env:"TLS_CLIENT_CA_FILE"`

	// StoreProvider is one of memory, postgres or sqlite.
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"equipreg.db"`

	// DeployerIdentity becomes the certification registry's contract owner.
	DeployerIdentity string `env:"DEPLOYER_IDENTITY"`
	// CallersFile maps API keys to caller identities.
	CallersFile string `env:"CALLERS_FILE"`

	SnapshotBucket string `env:"SNAPSHOT_BUCKET"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting the named component needs is present.
// Components are "registry-api" and "snapshot".
func (c *Config) Validate(component string) error {
	var missing []string

	switch component {
	case "registry-api":
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.DeployerIdentity == "" {
			missing = append(missing, "DEPLOYER_IDENTITY")
		}
		if c.CallersFile == "" {
			missing = append(missing, "CALLERS_FILE")
		}
	case "snapshot":
		if c.SnapshotBucket == "" {
			missing = append(missing, "SNAPSHOT_BUCKET")
		}
		if c.S3Endpoint == "" {
			missing = append(missing, "S3_ENDPOINT")
		}
		if c.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if c.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown component %q", component)
	}

	switch c.StoreProvider {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid STORE_PROVIDER %q: must be memory, postgres or sqlite", c.StoreProvider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config for %s: %s", component, strings.Join(missing, ", "))
	}

	// A snapshot opens its own store; a memory store would always be empty.
	if component == "snapshot" && c.StoreProvider == "memory" {
		return fmt.Errorf("snapshot requires a persistent store: STORE_PROVIDER must be postgres or sqlite, got memory")
	}
	return nil
}
