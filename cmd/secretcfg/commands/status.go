package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/secretcfg/internal/startup"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// NewStatusCommand creates the status command printing the value-free status projection.
func NewStatusCommand(app *App) *cobra.Command {
	var (
		asJSON   bool
		endpoint bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which source supplies the secret configuration",
		Long: `Resolve the secret configuration and print its status projection: whether it is
usable, which source supplied it and which fields are present. No values are printed.

The command exits zero even when the configuration is unusable; use 'validate' as
a deployment gate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := app.resolveOptions(cmd.Context(), nil)
			if err != nil {
				return err
			}

			outcome, resolveErr := startup.Resolve(cmd.Context(), opts)
			summary := outcome.Summary
			if errors.Is(resolveErr, secretconfig.ErrCancelled) {
				return resolveErr
			}
			if resolveErr != nil {
				app.Config.Logger.Debug("resolution failed: %s", summary.ErrorKind)
			}

			out := cmd.OutOrStdout()
			if asJSON || endpoint {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if endpoint {
					return enc.Encode(summary.Endpoint())
				}
				return enc.Encode(summary)
			}

			state := "healthy"
			if !summary.Healthy {
				state = "unhealthy"
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "STATUS\t%s\n", state)
			_, _ = fmt.Fprintf(w, "SOURCE\t%s\n", summary.SourceKind)
			if summary.Provenance != "" {
				_, _ = fmt.Fprintf(w, "PROVENANCE\t%s\n", summary.Provenance)
			}
			if len(summary.FieldsPresent) > 0 {
				_, _ = fmt.Fprintf(w, "FIELDS\t%s\n", strings.Join(summary.FieldsPresent, ", "))
			}
			if summary.ErrorKind != "" {
				_, _ = fmt.Fprintf(w, "ERROR\t%s\n", summary.ErrorKind)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status summary as JSON")
	cmd.Flags().BoolVar(&endpoint, "endpoint", false, "Print the health endpoint body as JSON")
	return cmd
}
