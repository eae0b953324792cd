package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Providers: []ProviderConfig{
			{Name: "bridge", Kind: "licensed", BaseURL: "https://bridge.internal", Token: "tok"},
			{Name: "backend", Kind: "community", Hosts: []string{"https://a.example-api.net"}},
		},
		Priority: []string{"bridge", "backend"},
		Regions:  map[string][]string{"bridge": {"US", "CA"}},
		Telemetry: TelemetryConfig{
			ServiceName: "streamgate",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no providers", func(c *Config) { c.Providers = nil }, "at least one provider"},
		{
			"duplicate provider",
			func(c *Config) { c.Providers = append(c.Providers, c.Providers[0]) },
			"duplicate provider",
		},
		{
			"unknown kind",
			func(c *Config) { c.Providers[0].Kind = "premium" },
			"unknown kind",
		},
		{
			"no endpoint",
			func(c *Config) { c.Providers[0].BaseURL = "" },
			"neither base_url nor hosts",
		},
		{
			"negative tuning",
			func(c *Config) { c.Providers[0].MinInterval = -time.Second },
			"negative admission tuning",
		},
		{"no priority", func(c *Config) { c.Priority = nil }, "priority order is required"},
		{
			"priority references unknown provider",
			func(c *Config) { c.Priority = []string{"bridge", "ghost"} },
			"unknown provider",
		},
		{
			"provider twice in priority",
			func(c *Config) { c.Priority = []string{"bridge", "bridge"} },
			"appears twice",
		},
		{
			"regions references unknown provider",
			func(c *Config) { c.Regions["ghost"] = []string{"US"} },
			"unknown provider",
		},
		{
			"bad telemetry",
			func(c *Config) { c.Telemetry.ServiceName = "" },
			"telemetry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Provider(t *testing.T) {
	cfg := validConfig()

	if p, ok := cfg.Provider("bridge"); !ok || p.Name != "bridge" {
		t.Errorf("Provider(bridge) = %+v, %v", p, ok)
	}
	if _, ok := cfg.Provider("ghost"); ok {
		t.Error("Provider(ghost) found a provider")
	}
}

func TestConfig_ObserveConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry = TelemetryConfig{
		ServiceName: "streamgate",
		Version:     "1.2.3",
		Tracing:     true,
		TraceExport: "stdout",
		SamplePct:   0.25,
		Logging:     true,
		LogLevel:    "debug",
	}

	oc := cfg.ObserveConfig()
	if oc.ServiceName != "streamgate" || oc.Version != "1.2.3" {
		t.Errorf("service identity = %q/%q", oc.ServiceName, oc.Version)
	}
	if !oc.Tracing.Enabled || oc.Tracing.Exporter != "stdout" || oc.Tracing.SamplePct != 0.25 {
		t.Errorf("tracing = %+v", oc.Tracing)
	}
	if !oc.Logging.Enabled || oc.Logging.Level != "debug" {
		t.Errorf("logging = %+v", oc.Logging)
	}
}

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING}")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("expected missing var name in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestConfig_ExpandCredentials(t *testing.T) {
	t.Setenv("BRIDGE_TOKEN", "tkn-123")

	cfg := validConfig()
	cfg.Providers[0].Token = "${BRIDGE_TOKEN}"

	if err := cfg.expandCredentials(); err != nil {
		t.Fatalf("expandCredentials() error = %v", err)
	}
	if cfg.Providers[0].Token != "tkn-123" {
		t.Errorf("Token = %q, want tkn-123", cfg.Providers[0].Token)
	}
}

func TestConfig_ExpandCredentials_MissingVar(t *testing.T) {
	cfg := validConfig()
	cfg.Providers[0].Token = "${STREAMGATE_NO_SUCH_VAR}"

	err := cfg.expandCredentials()
	if err == nil {
		t.Fatal("expandCredentials() succeeded with missing variable")
	}
	if !strings.Contains(err.Error(), "bridge") {
		t.Errorf("error %v does not name the provider", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("BRIDGE_TOKEN", "tkn-from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "streamgate.yaml")
	doc := `
providers:
  - name: bridge
    kind: licensed
    base_url: https://bridge.internal
    token: ${BRIDGE_TOKEN}
    min_interval: 200ms
    max_failures: 5
    reset_timeout: 30s
  - name: backend
    kind: community
    hosts:
      - https://a.example-api.net
      - https://b.example-api.net
priority:
  - bridge
  - backend
regions:
  bridge:
    - US
telemetry:
  service_name: streamgate
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("len(Providers) = %d, want 2", len(cfg.Providers))
	}
	if cfg.Providers[0].Token != "tkn-from-env" {
		t.Errorf("Token = %q, want expanded value", cfg.Providers[0].Token)
	}
	if cfg.Providers[0].MinInterval != 200*time.Millisecond {
		t.Errorf("MinInterval = %v, want 200ms", cfg.Providers[0].MinInterval)
	}
	if got := cfg.Providers[1].Hosts; len(got) != 2 {
		t.Errorf("Hosts = %v, want 2 entries", got)
	}

	// Defaults fill the unspecified sections.
	if cfg.Probe.Timeout != 5*time.Second {
		t.Errorf("Probe.Timeout = %v, want default 5s", cfg.Probe.Timeout)
	}
	if cfg.Resolve.MaxAttempts != 3 {
		t.Errorf("Resolve.MaxAttempts = %d, want default 3", cfg.Resolve.MaxAttempts)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q, want default :8080", cfg.Server.ListenAddr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() succeeded for a missing file")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streamgate.yaml")
	doc := `
providers:
  - name: bridge
    kind: licensed
    base_url: https://bridge.internal
priority:
  - ghost
telemetry:
  service_name: streamgate
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() accepted priority referencing an unknown provider")
	}
}
