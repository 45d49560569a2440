package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/secretcfg/internal/config"
	"github.com/systmms/secretcfg/internal/discovery"
	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/internal/logging"
	"github.com/systmms/secretcfg/internal/metrics"
	"github.com/systmms/secretcfg/internal/sources"
	"github.com/systmms/secretcfg/internal/startup"
	"github.com/systmms/secretcfg/internal/stores"
)

// App carries state shared by all commands. The client fields are nil in production,
// in which case real AWS clients are built on demand.
type App struct {
	Config *config.Config

	// Override is the --secret-config flag value.
	Override string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	SecretsManager stores.SecretsManagerClientAPI
	SSM            discovery.SSMClientAPI
	STS            stores.STSClientAPI
}

// NewApp returns an App with an empty configuration placeholder.
func NewApp() *App {
	return &App{Config: &config.Config{}}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App, version string) *cobra.Command {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "secretcfg",
		Short: "Resolve and validate the service secret configuration",
		Long: `secretcfg resolves the secret configuration a service needs at startup from
exactly one source: the --secret-config flag, the SECRET_CONFIG environment variable,
secret_config in secretcfg.yaml, the TENANT/CLIENT_ID/CLIENT_SECRET variables, or a
reference discovered in SSM or the OS keyring, in that order.

The value is either a Secrets Manager ARN or an inline JSON object.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Config.Path = configFile
			app.Config.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.Override, sources.OverrideFlag, "",
		"Explicit secret configuration (ARN or JSON); @path reads it from a file")

	rootCmd.AddCommand(
		NewValidateCommand(app),
		NewStatusCommand(app),
		NewServeCommand(app),
		NewDoctorCommand(app),
		NewCompletionCommand(app),
	)

	return rootCmd
}

func (a *App) getenv() func(string) string {
	if a.Getenv != nil {
		return a.Getenv
	}
	return os.Getenv
}

// Report renders err for the terminal. The legacy CLIENT_SECRET value is scrubbed,
// since an unrecognized candidate is echoed in the report.
func (a *App) Report(err error) string {
	return logging.Redact(dserrors.Report(err), []string{a.getenv()(sources.EnvClientSecret)})
}

// resolveOptions loads the configuration file and wires the sources, store and
// discoverers for one resolution.
func (a *App) resolveOptions(ctx context.Context, m *metrics.Metrics) (startup.Options, error) {
	if err := a.Config.Load(); err != nil {
		return startup.Options{}, err
	}
	def := a.Config.Definition

	discoverers, err := startup.Discoverers(ctx, def, a.SSM)
	if err != nil {
		return startup.Options{}, err
	}

	storeOpts := []stores.Option{}
	if a.SecretsManager != nil {
		storeOpts = append(storeOpts, stores.WithSecretsManagerClient(a.SecretsManager))
	}
	if m != nil {
		storeOpts = append(storeOpts, stores.WithObserver(m))
	}

	return startup.Options{
		Sources: sources.Options{
			Override:    a.Override,
			Config:      a.Config,
			Discoverers: discoverers,
			Getenv:      a.getenv(),
		},
		Store:        startup.LazyStore(def.Store, storeOpts...),
		FetchTimeout: def.Store.Timeout(),
		Metrics:      m,
	}, nil
}
