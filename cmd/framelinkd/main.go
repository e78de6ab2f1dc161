package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/framelink/internal/config"
	"github.com/danmuck/framelink/internal/endpoint"
	"github.com/danmuck/framelink/internal/link"
	"github.com/danmuck/framelink/internal/logging"
	"github.com/danmuck/framelink/internal/observability"
	"github.com/danmuck/framelink/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "framelinkd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to TOML config (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logging.ConfigureRuntimeWithLevel(cfg.LogLevel)
	log := logging.New("framelinkd")
	observability.RegisterMetrics()

	tr, err := openTransport(cfg)
	if err != nil {
		return err
	}
	defer tr.Close()

	registry := endpoint.NewRegistry()
	if err := endpoint.RegisterBuiltins(registry, logging.New("endpoint")); err != nil {
		return err
	}

	lk := link.NewWithConfig(linkConfig(cfg), tr, registry, logging.New("link"))
	if err := lk.Start(); err != nil {
		return err
	}
	defer lk.Close()

	var admin *observability.AdminServer
	if cfg.Admin.Addr != "" {
		admin = observability.NewAdminServer(cfg.Name, cfg.Admin.Addr, func() []observability.EndpointInfo {
			list := registry.List()
			out := make([]observability.EndpointInfo, len(list))
			for i, d := range list {
				out[i] = observability.EndpointInfo{Protocol: d.Protocol, Name: d.Name}
			}
			return out
		}, logging.New("admin"))
		admin.Start()
		defer admin.Close()
	}

	log.Info().
		Str("name", cfg.Name).
		Str("transport", cfg.Transport.Kind).
		Str("addr", cfg.Transport.Addr).
		Msg("running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	return nil
}

func linkConfig(cfg config.Config) link.Config {
	lc := link.DefaultConfig()
	if cfg.Transport.ChunkSize > 0 {
		lc.ChunkSize = cfg.Transport.ChunkSize
	}
	return lc
}

func openTransport(cfg config.Config) (transport.Transport, error) {
	switch cfg.Transport.Kind {
	case "netpoll":
		return transport.DialNetpoll(cfg.Transport.Network, cfg.Transport.Addr, 5*time.Second, logging.New("transport"))
	default:
		return transport.DialSocket(cfg.Transport.Network, cfg.Transport.Addr, logging.New("transport"))
	}
}
