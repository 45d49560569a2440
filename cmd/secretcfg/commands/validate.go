package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/secretcfg/internal/logging"
	"github.com/systmms/secretcfg/internal/sources"
	"github.com/systmms/secretcfg/internal/startup"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// NewValidateCommand creates the pre-deployment validation command.
func NewValidateCommand(app *App) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve the secret configuration and report problems",
		Long: `Resolve the secret configuration exactly as the service would at startup and
print the masked result.

On failure every problem found is listed together with a suggested fix, and the
command exits non-zero. Interrupting the command exits with status 130.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := app.Config.Logger

			opts, err := app.resolveOptions(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if timeout > 0 {
				opts.FetchTimeout = timeout
			}
			logCandidates(app, opts)

			outcome, err := startup.Resolve(cmd.Context(), opts)
			if err != nil {
				return err
			}

			cfg := outcome.Config
			log.Info("Secret configuration is valid (%s, from %s)", formatLabel(cfg), cfg.Origin)
			for _, w := range cfg.Warnings {
				log.Warn("%s", w)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), secretconfig.Mask(cfg))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Secret store fetch timeout (default 5s or store.timeout_ms)")
	return cmd
}

func formatLabel(cfg secretconfig.ResolvedSecretConfig) string {
	switch {
	case cfg.Provenance == secretconfig.LegacyDiscreteFields:
		return "discrete fields"
	case cfg.Format == secretconfig.FormatReference:
		return "secret store reference"
	default:
		return "inline JSON"
	}
}

func logCandidates(app *App, opts startup.Options) {
	log := app.Config.Logger
	if !log.IsDebug() {
		return
	}
	if app.Config.Found {
		log.Debug("Loaded %s", app.Config.Path)
	} else {
		log.Debug("No configuration file at %s", app.Config.Path)
	}
	if app.Override != "" {
		log.Debug("--%s: %s", sources.OverrideFlag, logging.Secret(app.Override))
	}
	log.Debug("Discoverers configured: %d", len(opts.Sources.Discoverers))
}
