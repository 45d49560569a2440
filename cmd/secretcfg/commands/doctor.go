package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/internal/sources"
	"github.com/systmms/secretcfg/internal/startup"
	"github.com/systmms/secretcfg/internal/stores"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// CheckResult is one row of the doctor report.
type CheckResult struct {
	Name    string
	Status  string
	Details string
}

const (
	checkOK   = "ok"
	checkWarn = "warn"
	checkFail = "fail"
	checkSkip = "skip"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(app *App) *cobra.Command {
	var skipIdentity bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, sources and store access",
		Long: `Diagnose the secret configuration setup.

This command checks:
- Configuration file validity
- Which candidate sources are set
- Resolution of the effective secret configuration
- That the AWS caller identity can be determined and owns the referenced secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := app.Config.Logger
			log.Info("Checking secretcfg setup...")

			var results []CheckResult
			opts, err := app.resolveOptions(ctx, nil)
			if err != nil {
				results = append(results, CheckResult{"config file", checkFail, dserrors.SimplifyError(err).Error()})
				printChecks(cmd, results)
				return err
			}
			results = append(results, configCheck(app))

			candidates, gatherErr := sources.Gather(ctx, opts.Sources)
			results = append(results, sourcesCheck(candidates, gatherErr))

			var (
				outcome    startup.Outcome
				resolveErr error
			)
			if gatherErr != nil {
				resolveErr = gatherErr
			} else {
				outcome, resolveErr = startup.ResolveCandidates(ctx, opts, candidates)
			}
			if resolveErr != nil {
				results = append(results, CheckResult{"resolution", checkFail, dserrors.Kind(resolveErr)})
			} else {
				results = append(results, CheckResult{"resolution", checkOK, outcome.Summary.SourceKind + " via " + outcome.Summary.Provenance})
			}

			switch {
			case skipIdentity:
				results = append(results, CheckResult{"aws identity", checkSkip, "--skip-identity"})
			case resolveErr == nil && outcome.Config.Reference == nil:
				results = append(results, CheckResult{"aws identity", checkSkip, "no secret store reference in use"})
			default:
				results = append(results, app.identityCheck(ctx, outcome.Config.Reference))
			}

			printChecks(cmd, results)

			healthy := 0
			for _, r := range results {
				if r.Status != checkFail {
					healthy++
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d checks passed\n", healthy, len(results))

			if resolveErr != nil {
				return resolveErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipIdentity, "skip-identity", false, "Skip the AWS caller identity check")
	return cmd
}

func configCheck(app *App) CheckResult {
	if !app.Config.Found {
		return CheckResult{"config file", checkWarn, app.Config.Path + " not found (optional)"}
	}
	return CheckResult{"config file", checkOK, app.Config.Path}
}

func sourcesCheck(candidates []secretconfig.CandidateSource, err error) CheckResult {
	if err != nil {
		return CheckResult{"sources", checkFail, dserrors.Kind(err)}
	}
	var present []string
	for _, c := range candidates {
		if c.Present() {
			present = append(present, c.Kind.String())
		}
	}
	switch len(present) {
	case 0:
		return CheckResult{"sources", checkFail, "none set"}
	case 1:
		return CheckResult{"sources", checkOK, present[0]}
	default:
		return CheckResult{"sources", checkWarn, fmt.Sprintf("%s wins over %v", present[0], present[1:])}
	}
}

func (a *App) identityCheck(ctx context.Context, ref *secretconfig.StoreReference) CheckResult {
	checker, err := stores.NewIdentityChecker(ctx, a.Config.Definition.Store, a.STS)
	if err != nil {
		return CheckResult{"aws identity", checkFail, err.Error()}
	}
	if ref == nil {
		id, err := checker.CallerIdentity(ctx)
		if err != nil {
			return CheckResult{"aws identity", checkFail, err.Error()}
		}
		return CheckResult{"aws identity", checkOK, "account " + maskAccount(id.Account)}
	}

	owns, id, err := checker.CheckOwner(ctx, *ref)
	if err != nil {
		return CheckResult{"aws identity", checkFail, err.Error()}
	}
	if !owns {
		return CheckResult{"aws identity", checkWarn,
			"caller account " + maskAccount(id.Account) + " differs from secret owner " + maskAccount(ref.Owner)}
	}
	return CheckResult{"aws identity", checkOK, "caller owns " + secretconfig.MaskReference(*ref)}
}

func maskAccount(account string) string {
	return secretconfig.MaskValue(account)
}

func printChecks(cmd *cobra.Command, results []CheckResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHECK\tSTATUS\tDETAILS")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.Details)
	}
	_ = w.Flush()
}
