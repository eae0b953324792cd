package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable
// naming conventions, so `server.listen_addr` binds to
// STREAMGATE_SERVER_LISTEN_ADDR.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("probe.timeout", "5s")
	v.SetDefault("probe.ttl", "30s")
	v.SetDefault("probe.liveness_path", "/health")

	v.SetDefault("resolve.max_attempts", 3)
	v.SetDefault("resolve.base_delay", "100ms")
	v.SetDefault("resolve.max_delay", "30s")

	v.SetDefault("telemetry.service_name", "streamgate")
	v.SetDefault("telemetry.logging", true)
	v.SetDefault("telemetry.log_level", "info")

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// Load reads the configuration file at path, applies environment overrides,
// expands credential references, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("streamgate")
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.expandCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
