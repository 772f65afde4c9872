package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/netwatch/internal/access"
	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/api"
	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/logging"
	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
	"github.com/good-yellow-bee/netwatch/internal/monitor"
	"github.com/good-yellow-bee/netwatch/internal/notifier"
	"github.com/good-yellow-bee/netwatch/internal/thresholds"
	"github.com/good-yellow-bee/netwatch/pkg/buildinfo"
)

var (
	configFile string
	httpAddr   string
	logLevel   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "netwatch-server",
	Short: "NetWatch Server - network device alerting service",
	Long: `NetWatch Server classifies metric samples from network pollers against
per-metric thresholds, keeps the alert ledger, and serves the dashboard API.`,
	SilenceUsage: true,
	RunE:         runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Get().String("netwatch-server"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path; .enc files need NETWATCH_CONFIG_PASSPHRASE")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile, []byte(os.Getenv("NETWATCH_CONFIG_PASSPHRASE")))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	cfg.Verbose = verbose
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	durations, err := cfg.durations()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, "netwatch-server")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	build := buildinfo.Get()
	metrics.SetBuildInfo(build.Version, build.Commit, build.BuildTime)

	seed := thresholds.Defaults()
	if cfg.Thresholds.File != "" {
		seed, err = thresholds.LoadFromFile(cfg.Thresholds.File)
		if err != nil {
			return fmt.Errorf("load thresholds: %w", err)
		}
	}
	store, err := thresholds.NewStore(seed...)
	if err != nil {
		return fmt.Errorf("seed thresholds: %w", err)
	}

	mode, _ := alerting.ParseDedupMode(cfg.Alerting.Dedup.Mode)
	ledger := alerting.NewLedger()
	pipeline := alerting.NewPipeline(store, ledger, &alerting.PipelineOptions{
		Mode:     mode,
		Cooldown: durations.Cooldown,
	})
	svc := monitor.NewService(access.NewGuard(logger), store, ledger, pipeline, logger)

	var dispatcher *notifier.Dispatcher
	if cfg.Notify.Enabled() {
		dispatcher, err = newDispatcher(cfg.Notify, durations.NotifyWindow, logger)
		if err != nil {
			return fmt.Errorf("create notifier: %w", err)
		}
		defer dispatcher.Close()
		svc.SetNotifier(dispatcher)
	}

	users, err := auth.NewDirectory(cfg.Auth.Users)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if users.Len() == 0 {
		logger.Warn("no dashboard users configured; login is disabled")
	}
	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("no API keys configured; sample ingestion is disabled")
	}

	srv, err := api.New(&api.Config{
		Address:          cfg.Server.HTTPAddress,
		JWTSecret:        []byte(cfg.Auth.JWTSecret),
		TLSEnabled:       cfg.Server.TLS.Enabled,
		TLSCertFile:      cfg.Server.TLS.CertFile,
		TLSKeyFile:       cfg.Server.TLS.KeyFile,
		TLSClientCAFile:  cfg.Server.TLS.ClientCA,
		AccessTokenTTL:   durations.AccessTokenTTL,
		RateLimitPerIP:   cfg.Server.RateLimitPerIP,
		RateLimitPerUser: cfg.Server.RateLimitPerUser,
		LockoutThreshold: cfg.Auth.LockoutThreshold,
		LockoutDuration:  durations.LockoutDuration,
		APIKeys:          cfg.Auth.APIKeys,
		Version:          build.Version,
		Verbose:          cfg.Verbose,
	}, svc, users, logger)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting netwatch-server",
		zap.String("version", build.Version),
		zap.String("commit", build.ShortCommit()),
		zap.Int("thresholds", store.Len()),
		zap.String("dedup_mode", string(mode)),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("run API server: %w", err)
		}
		return nil
	})

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Address, logger)
		g.Go(func() error { return metricsServer.Run(gctx) })
	}

	if dispatcher != nil {
		logger.Info("notifications enabled", zap.Strings("channels", dispatcher.Names()))
		g.Go(func() error { return dispatcher.Run(gctx) })
	}

	if cfg.Thresholds.Watch {
		watcher, err := thresholds.NewWatcher(cfg.Thresholds.File, svc.ReloadThresholds, logger)
		if err != nil {
			return fmt.Errorf("create threshold watcher: %w", err)
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	if mode == alerting.DedupCooldown {
		g.Go(func() error {
			ticker := time.NewTicker(durations.Cooldown)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := pipeline.PruneCooldowns(); n > 0 {
						logger.Debug("pruned expired cooldowns", zap.Int("count", n))
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newDispatcher builds a dispatcher with a notifier for each configured webhook.
func newDispatcher(cfg NotifyConfig, window time.Duration, logger *zap.Logger) (*notifier.Dispatcher, error) {
	minSeverity, _ := models.ParseSeverity(cfg.MinSeverity)
	d := notifier.NewDispatcher(notifier.Options{
		MinSeverity: minSeverity,
		QueueSize:   cfg.QueueSize,
		RateLimit: notifier.RateLimitConfig{
			MaxPerWindow: cfg.RateLimit,
			Window:       window,
		},
	}, logger)

	if cfg.SlackWebhookURL != "" {
		n, err := notifier.NewSlackNotifier(notifier.SlackConfig{WebhookURL: cfg.SlackWebhookURL})
		if err != nil {
			return nil, err
		}
		d.Register(n)
	}
	if cfg.TeamsWebhookURL != "" {
		n, err := notifier.NewTeamsNotifier(notifier.TeamsConfig{WebhookURL: cfg.TeamsWebhookURL})
		if err != nil {
			return nil, err
		}
		d.Register(n)
	}
	return d, nil
}
