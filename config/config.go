package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/weanime/streamgate/observe"
)

// ProviderConfig declares one upstream provider and its admission tuning.
type ProviderConfig struct {
	// Name is the stable provider identifier. Must be unique.
	Name string `mapstructure:"name"`

	// Kind is "licensed" or "community".
	Kind string `mapstructure:"kind"`

	// BaseURL is the provider's API root. Providers with fallback hosts
	// leave this empty and list Hosts instead.
	BaseURL string `mapstructure:"base_url"`

	// Hosts lists fallback hosts probed for liveness before use.
	Hosts []string `mapstructure:"hosts"`

	// Token is the provider credential. Supports ${VAR} references resolved
	// at load time. Never logged.
	Token string `mapstructure:"token"`

	// TokenHeader and Scheme shape the injected auth header.
	// Defaults: "Authorization" / "Bearer".
	TokenHeader string `mapstructure:"token_header"`
	Scheme      string `mapstructure:"scheme"`

	// Admission tuning. Zero values fall back to controller defaults.
	MinInterval  time.Duration `mapstructure:"min_interval"`
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`

	// CacheTTL bounds how long resolved sources are cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// FetchTimeout bounds a single upstream call.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// ProbeConfig tunes the health prober for fallback hosts.
type ProbeConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	LivenessPath string        `mapstructure:"liveness_path"`
}

// ResolveConfig tunes the retry executor shared by all adapters.
type ResolveConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// TelemetryConfig mirrors the observe configuration surface.
type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Version     string  `mapstructure:"version"`
	Tracing     bool    `mapstructure:"tracing"`
	TraceExport string  `mapstructure:"trace_exporter"`
	SamplePct   float64 `mapstructure:"sample_pct"`
	Metrics     bool    `mapstructure:"metrics"`
	MetricsExp  string  `mapstructure:"metrics_exporter"`
	Logging     bool    `mapstructure:"logging"`
	LogLevel    string  `mapstructure:"log_level"`
}

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Config is the full streamgate configuration.
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`

	// Priority orders provider names from most to least preferred.
	Priority []string `mapstructure:"priority"`

	// Regions maps provider name to the regions it serves. A provider
	// absent from the map serves all regions.
	Regions map[string][]string `mapstructure:"regions"`

	Probe     ProbeConfig     `mapstructure:"probe"`
	Resolve   ResolveConfig   `mapstructure:"resolve"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
}

// Provider returns the named provider config.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// ObserveConfig maps the telemetry section onto the observe package's
// configuration.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Version:     c.Telemetry.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing,
			Exporter:  c.Telemetry.TraceExport,
			SamplePct: c.Telemetry.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics,
			Exporter: c.Telemetry.MetricsExp,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Telemetry.Logging,
			Level:   c.Telemetry.LogLevel,
		},
	}
}

// Validate checks internal consistency. It does not touch the network.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("config: at least one provider is required")
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return errors.New("config: provider with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("config: duplicate provider %q", p.Name)
		}
		seen[p.Name] = true

		if p.Kind != "licensed" && p.Kind != "community" {
			return fmt.Errorf("config: provider %q has unknown kind %q", p.Name, p.Kind)
		}
		if p.BaseURL == "" && len(p.Hosts) == 0 {
			return fmt.Errorf("config: provider %q has neither base_url nor hosts", p.Name)
		}
		if p.MinInterval < 0 || p.MaxFailures < 0 || p.ResetTimeout < 0 {
			return fmt.Errorf("config: provider %q has negative admission tuning", p.Name)
		}
	}

	if len(c.Priority) == 0 {
		return errors.New("config: priority order is required")
	}
	ordered := make(map[string]bool, len(c.Priority))
	for _, name := range c.Priority {
		if !seen[name] {
			return fmt.Errorf("config: priority references unknown provider %q", name)
		}
		if ordered[name] {
			return fmt.Errorf("config: provider %q appears twice in priority", name)
		}
		ordered[name] = true
	}

	for name := range c.Regions {
		if !seen[name] {
			return fmt.Errorf("config: regions references unknown provider %q", name)
		}
	}

	oc := c.ObserveConfig()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("config: telemetry: %w", err)
	}

	return nil
}

// expandCredentials resolves ${VAR} references in provider tokens.
func (c *Config) expandCredentials() error {
	for i := range c.Providers {
		if c.Providers[i].Token == "" {
			continue
		}
		expanded, err := ExpandEnvStrict(c.Providers[i].Token)
		if err != nil {
			return fmt.Errorf("config: provider %q token: %w", c.Providers[i].Name, err)
		}
		c.Providers[i].Token = expanded
	}
	return nil
}
