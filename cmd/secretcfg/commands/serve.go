package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/internal/logging"
	"github.com/systmms/secretcfg/internal/metrics"
	"github.com/systmms/secretcfg/internal/server"
	"github.com/systmms/secretcfg/internal/startup"
)

// NewServeCommand creates the long-running service command.
func NewServeCommand(app *App) *cobra.Command {
	var (
		addr     string
		logLevel string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Resolve once and serve the status endpoint",
		Long: `Resolve the secret configuration once at startup, then serve /health, /status
and /metrics until interrupted.

The service refuses to start if resolution fails. Flags may also be set through
SECRETCFG_ADDR, SECRETCFG_LOG_LEVEL and SECRETCFG_TIMEOUT; server.addr and
server.log_level in the config file apply when neither is given.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindViper(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			metrics.InitMetrics()
			m := metrics.New()
			opts, err := app.resolveOptions(ctx, m)
			if err != nil {
				return err
			}
			def := app.Config.Definition

			if !cmd.Flags().Changed("log-level") && def.Server.LogLevel != "" {
				logLevel = def.Server.LogLevel
			}
			log, err := logging.NewService(logLevel)
			if err != nil {
				return dserrors.UserError{
					Message:    "Invalid log level",
					Details:    err.Error(),
					Suggestion: "Use one of debug, info, warn or error",
					Err:        err,
				}
			}
			defer func() { _ = log.Sync() }()

			if timeout > 0 {
				opts.FetchTimeout = timeout
			}
			opts.Log = log

			rt, err := startup.Bootstrap(ctx, opts)
			if err != nil {
				log.Error("refusing to start", zap.String("error_kind", dserrors.Kind(err)))
				return err
			}
			defer rt.Close()

			srvCfg := server.DefaultConfig()
			srvCfg.Addr = addr
			if !cmd.Flags().Changed("addr") && def.Server.Addr != "" {
				srvCfg.Addr = def.Server.Addr
			}
			srv := server.New(srvCfg, rt.Status, log)
			app.Config.Logger.Debug("Serving status on %s", srvCfg.Addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultConfig().Addr, "Address for the status server")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Service log level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Secret store fetch timeout (default 5s or store.timeout_ms)")
	return cmd
}
