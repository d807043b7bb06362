package main

import (
	"context"
	"errors"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/momentics/webserv/config"
	"github.com/momentics/webserv/control"
	"github.com/momentics/webserv/poller"
	"github.com/momentics/webserv/reactor"
	"github.com/momentics/webserv/transport/tcp"
)

const controlShutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webserv",
		Short: "Single-threaded TCP readiness server",
		Long: `webserv listens on one TCP port and multiplexes every client over a
single poll loop. Each client is served once by the first readiness event
and then closed. SIGINT or SIGTERM drains all connections and exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cfg, cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringP("config", "c", "", "config file (yaml, json or toml)")
	fl.Int("port", 8080, "TCP port to listen on")
	fl.Int("backlog", 0, "listen backlog, 0 selects SOMAXCONN")
	fl.Duration("poll-timeout", reactor.DefaultPollTimeout, "readiness wait timeout")
	fl.String("backend", string(poller.BackendPoll), "readiness backend: poll or epoll")
	fl.String("control-addr", "", "address for /metrics, /healthz and /debug/state; empty disables")
	fl.String("log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(versionCmd())
	return cmd
}

// resolveConfig loads the config file and lets explicitly set flags win.
// Lookups cannot fail for flags registered by newRootCmd.
func resolveConfig(fl *pflag.FlagSet) (config.Config, error) {
	path, _ := fl.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if fl.Changed("port") {
		cfg.Port, _ = fl.GetInt("port")
	}
	if fl.Changed("backlog") {
		cfg.Backlog, _ = fl.GetInt("backlog")
	}
	if fl.Changed("poll-timeout") {
		cfg.PollTimeout, _ = fl.GetDuration("poll-timeout")
	}
	if fl.Changed("backend") {
		cfg.Backend, _ = fl.GetString("backend")
	}
	if fl.Changed("control-addr") {
		cfg.Control.Addr, _ = fl.GetString("control-addr")
	}
	if fl.Changed("log-level") {
		cfg.Log.Level, _ = fl.GetString("log-level")
	}
	// DEBUG still wins over an explicit level
	cfg.ApplyEnv()
	if err := cfg.Check(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func serve(cfg config.Config, logOut io.Writer) error {
	log, err := control.NewLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := control.NewMetrics(control.WithRegistry(reg))
	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)

	if cfg.Control.Addr != "" {
		srv, err := control.StartServer(cfg.Control.Addr, control.NewRouter(reg, probes), log)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), controlShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("control server shutdown")
			}
		}()
	}

	ln, err := listen(cfg, log)
	if err != nil {
		return err
	}
	p, err := poller.New(poller.Backend(cfg.Backend))
	if err != nil {
		_ = ln.Close()
		return err
	}

	r, err := reactor.New(ln, reactor.DrainHandler{Log: log},
		reactor.WithPoller(p),
		reactor.WithPollTimeout(cfg.PollTimeout),
		reactor.WithAcceptBatch(cfg.AcceptBatch),
		reactor.WithLogger(log),
		reactor.WithMetrics(metrics),
		reactor.WithProbes(probes),
	)
	if err != nil {
		_ = p.Close()
		_ = ln.Close()
		return err
	}

	stop := reactor.InstallSignalHandler(reactor.DefaultShutdownFlag)
	defer stop()

	log.Info().Int("port", ln.Port()).Str("backend", cfg.Backend).Int("pid", os.Getpid()).Msg("webserv running")
	if err := r.Run(); err != nil {
		log.Error().Err(err).Msg("reactor stopped with error")
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func listen(cfg config.Config, log zerolog.Logger) (*tcp.ListenSocket, error) {
	opts := []tcp.ListenOption{
		tcp.WithReuseAddr(cfg.ReuseAddr),
		tcp.WithLogger(log),
	}
	if cfg.BindAddr != "" {
		addr, err := netip.ParseAddr(cfg.BindAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tcp.WithBindAddr(addr))
	}
	ln, err := tcp.Listen(cfg.Port, opts...)
	if err != nil {
		return nil, err
	}
	if err := ln.StartListening(cfg.Backlog); err != nil {
		_ = ln.Close()
		return nil, err
	}
	return ln, nil
}
