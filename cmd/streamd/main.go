package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weanime/streamgate/cache"
	"github.com/weanime/streamgate/config"
	"github.com/weanime/streamgate/credentials"
	"github.com/weanime/streamgate/health"
	"github.com/weanime/streamgate/observe"
	"github.com/weanime/streamgate/provider"
	"github.com/weanime/streamgate/resilience"
	"github.com/weanime/streamgate/resolve"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "streamgate.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		log.Fatalf("setup telemetry: %v", err)
	}
	logger := obs.Logger()

	resolver, err := buildResolver(cfg, obs)
	if err != nil {
		log.Fatalf("build resolver: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           newMux(resolver),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "server listening",
			observe.Field{Key: "addr", Value: cfg.Server.ListenAddr},
			observe.Field{Key: "providers", Value: cfg.Priority},
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	logger.Info(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", observe.Field{Key: "error", Value: err.Error()})
		_ = srv.Close()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	logger.Info(ctx, "server stopped")
}

// buildResolver assembles the shared infrastructure and the provider chain
// in configured priority order.
func buildResolver(cfg *config.Config, obs observe.Observer) (*resolve.Resolver, error) {
	admission := resilience.NewAdmissionController(resilience.ProviderPolicy{})
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: cfg.Resolve.MaxAttempts,
		BaseDelay:   cfg.Resolve.BaseDelay,
		MaxDelay:    cfg.Resolve.MaxDelay,
		Backoff:     true,
		Jitter:      true,
		RetryIf:     provider.IsRetryable,
	})
	streamCache := cache.New[[]provider.StreamSource]()
	creds := credentials.NewStore()
	prober := health.NewProber(health.ProberConfig{
		Timeout:      cfg.Probe.Timeout,
		TTL:          cfg.Probe.TTL,
		LivenessPath: cfg.Probe.LivenessPath,
	})

	adapters := make([]provider.Adapter, 0, len(cfg.Priority))
	for _, name := range cfg.Priority {
		pc, _ := cfg.Provider(name)

		admission.SetPolicy(name, resilience.ProviderPolicy{
			MinInterval:  pc.MinInterval,
			MaxFailures:  pc.MaxFailures,
			ResetTimeout: pc.ResetTimeout,
		})
		if pc.Token != "" {
			creds.Set(name, credentials.Credential{
				Token:  pc.Token,
				Header: pc.TokenHeader,
				Scheme: pc.Scheme,
			})
		}

		deps := provider.Deps{
			Admission:    admission,
			Retry:        retry,
			Cache:        streamCache,
			Policy:       cachePolicy(pc),
			FetchTimeout: pc.FetchTimeout,
		}

		adapter, err := buildAdapter(pc, cfg.Regions[name], deps, creds, prober)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}

	return resolve.New(resolve.Config{
		Adapters:  adapters,
		Admission: admission,
		Cache:     streamCache,
		Observer:  obs,
	})
}

func buildAdapter(pc config.ProviderConfig, regions []string, deps provider.Deps, creds *credentials.Store, prober *health.Prober) (provider.Adapter, error) {
	switch pc.Name {
	case provider.BridgeName:
		return provider.NewBridge(provider.BridgeConfig{
			BaseURL:     pc.BaseURL,
			Regions:     regions,
			Credentials: creds,
			Deps:        deps,
		}), nil
	case provider.BackendName:
		return provider.NewBackend(provider.BackendConfig{
			Hosts:   pc.Hosts,
			Regions: regions,
			Prober:  prober,
			Deps:    deps,
		}), nil
	case provider.JikanName:
		return provider.NewJikan(provider.JikanConfig{
			BaseURL: pc.BaseURL,
			Deps:    deps,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", pc.Name)
	}
}

func cachePolicy(pc config.ProviderConfig) cache.Policy {
	if pc.CacheTTL > 0 {
		return cache.Policy{DefaultTTL: pc.CacheTTL, MaxTTL: pc.CacheTTL}
	}
	if pc.Kind == "community" {
		return cache.CatalogPolicy()
	}
	return cache.DefaultPolicy()
}
