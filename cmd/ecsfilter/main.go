// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thediveo/ecsfilter/config"
	"github.com/thediveo/ecsfilter/enricher"
	"github.com/thediveo/ecsfilter/enricher/containerd"
	"github.com/thediveo/ecsfilter/enricher/cri"
	"github.com/thediveo/ecsfilter/enricher/moby"
	"golang.org/x/exp/slog"
)

// readinessTimeout limits how long to wait for the container engine to answer
// pings at startup.
const readinessTimeout = 30 * time.Second

// newEnricher creates the Enricher for the configured container engine.
var newEnricher = func(cfg config.Config, opts ...enricher.Option) (*enricher.Enricher, error) {
	switch cfg.Engine {
	case config.EngineContainerd:
		return containerd.New(cfg.Endpoint, cfg.ContainerdNamespace, opts...)
	case config.EngineCRI:
		return cri.New(cfg.Endpoint, opts...)
	default:
		return moby.New(cfg.Endpoint, opts...)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			os.Exit(1)
		}
	}
}

// run parses the command line arguments, layers the configuration, and then
// filters the tagged JSON lines from in to out until in is exhausted or the
// context gets cancelled.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer, errout io.Writer) error {
	cfg, err := configure(args, errout)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.New(slog.NewTextHandler(errout, nil)).Error("invalid configuration",
				slog.String("err", err.Error()))
		}
		return err
	}
	log := newLogger(cfg, errout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	enr, err := newEnricher(cfg, append(cfg.Options(),
		enricher.WithLogger(log),
		enricher.WithRegisterer(reg))...)
	if err != nil {
		log.Error("cannot create enricher", slog.String("err", err.Error()))
		return err
	}
	defer enr.Close()
	log = log.With(slog.String("engine", enr.Type()), slog.String("api", enr.API()))

	if err := waitForEngine(ctx, enr, log); err != nil {
		log.Error("container engine not available", slog.String("err", err.Error()))
		return err
	}

	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, reg, log)
		if err != nil {
			log.Error("cannot serve metrics", slog.String("err", err.Error()))
			return err
		}
		defer stop()
	}

	log.Info("filtering",
		slog.Int("cache_size", cfg.CacheSize),
		slog.Int("cache_ttl", cfg.CacheTTL),
		slog.String("container_id_attr", cfg.ContainerIDAttr))
	if err := pump(ctx, enr, in, out, cfg.BatchSize, log); err != nil {
		log.Error("filtering failed", slog.String("err", err.Error()))
		return err
	}
	return nil
}

// configure returns the configuration layered from defaults, the optional
// configuration file, .env files, environment variables, and finally flags.
func configure(args []string, errout io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("ecsfilter", flag.ContinueOnError)
	fs.SetOutput(errout)
	configPath := fs.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to YAML configuration file")
	dotenvPath := fs.String("dotenv", ".env", "path to .env file with ECSFILTER_* settings")
	names := config.Names()
	sort.Strings(names)
	for _, name := range names {
		fs.String(flagName(name), "", "overrides the "+name+" setting")
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.LoadDotEnv(*dotenvPath); err != nil {
		return config.Config{}, err
	}
	cfg, err = config.FromEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if err != nil || f.Name == "config" || f.Name == "dotenv" {
			return
		}
		err = cfg.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})
	if err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

// flagName returns the command line flag name for a configuration setting.
func flagName(setting string) string {
	return strings.ReplaceAll(setting, "_", "-")
}

// newLogger returns a logger writing to w in the configured format and level.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// pinger checks that a container engine is responding.
type pinger interface {
	Ping(ctx context.Context) error
}

// waitForEngine waits for the container engine to answer pings, backing off
// exponentially between attempts, for at most readinessTimeout.
func waitForEngine(ctx context.Context, p pinger, log *slog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = readinessTimeout
	return backoff.RetryNotify(
		func() error { return p.Ping(ctx) },
		backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			log.Warn("waiting for container engine",
				slog.String("err", err.Error()),
				slog.Duration("retry", next))
		})
}

// serveMetrics serves the metrics from the specified registry at "/metrics" on
// the specified address in the background, returning a function to stop
// serving.
func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) (func(), error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot listen on '%s'", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", slog.String("err", err.Error()))
		}
	}()
	log.Info("serving metrics", slog.String("addr", l.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}
