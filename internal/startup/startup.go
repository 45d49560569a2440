// Package startup performs the one-shot resolution a process runs before doing any work.
package startup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/systmms/secretcfg/internal/metrics"
	"github.com/systmms/secretcfg/internal/secure"
	"github.com/systmms/secretcfg/internal/sources"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// Options configures a resolution run.
type Options struct {
	Sources      sources.Options
	Store        secretconfig.StoreClient
	FetchTimeout time.Duration
	Metrics      *metrics.Metrics
	Log          *zap.Logger
}

// Outcome is the result of Resolve. Summary is always set, also on failure.
type Outcome struct {
	Config  secretconfig.ResolvedSecretConfig
	Summary secretconfig.StatusSummary
}

// Runtime is what a service holds after a successful start. Config has its client
// secret and raw input cleared; the secret is only reachable through Credentials.
type Runtime struct {
	Config      secretconfig.ResolvedSecretConfig
	Summary     secretconfig.StatusSummary
	Credentials *secure.Credentials
}

// Status returns the summary; it never changes after Bootstrap.
func (r *Runtime) Status() secretconfig.StatusSummary {
	return r.Summary
}

// Close drops the sealed credentials.
func (r *Runtime) Close() {
	if r.Credentials != nil {
		r.Credentials.Destroy()
	}
}

// Resolve gathers candidates and resolves them once, recording the outcome in metrics
// and the service log. Log fields carry only the error kind and provenance.
func Resolve(ctx context.Context, opts Options) (Outcome, error) {
	candidates, err := sources.Gather(ctx, opts.Sources)
	if err != nil {
		log, m := opts.observers()
		return failed(log, m, err)
	}
	return ResolveCandidates(ctx, opts, candidates)
}

// ResolveCandidates resolves already gathered candidates; opts.Sources is not consulted.
func ResolveCandidates(ctx context.Context, opts Options, candidates []secretconfig.CandidateSource) (Outcome, error) {
	log, m := opts.observers()

	var resolverOpts []secretconfig.ResolverOption
	if opts.FetchTimeout > 0 {
		resolverOpts = append(resolverOpts, secretconfig.WithFetchTimeout(opts.FetchTimeout))
	}
	cfg, err := secretconfig.NewResolver(opts.Store, resolverOpts...).Resolve(ctx, candidates)
	if err != nil {
		return failed(log, m, err)
	}

	summary := secretconfig.Project(&cfg, nil)
	m.RecordResolution(summary.Provenance, "")
	log.Info("secret configuration resolved",
		zap.String("provenance", summary.Provenance),
		zap.String("source", summary.SourceKind),
		zap.Int("warnings", len(cfg.Warnings)),
	)
	return Outcome{Config: cfg, Summary: summary}, nil
}

func (o Options) observers() (*zap.Logger, *metrics.Metrics) {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := o.Metrics
	if m == nil {
		m = metrics.New()
	}
	return log, m
}

func failed(log *zap.Logger, m *metrics.Metrics, err error) (Outcome, error) {
	summary := secretconfig.Project(nil, err)
	kind := summary.ErrorKind
	if kind == "" {
		kind = "internal"
	}
	m.RecordResolution(provenanceLabel(summary), kind)

	var re *secretconfig.ResolutionError
	if errors.As(err, &re) {
		log.Error("secret configuration resolution failed",
			zap.String("error_kind", kind),
			zap.String("provenance", summary.Provenance),
		)
	} else {
		log.Error("secret configuration resolution failed", zap.String("error_kind", kind))
	}
	return Outcome{Summary: summary}, err
}

func provenanceLabel(s secretconfig.StatusSummary) string {
	if s.Provenance == "" {
		return "none"
	}
	return s.Provenance
}

// Bootstrap resolves once and seals the credentials. Any error means the service must
// not start; there is no partially configured Runtime.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	outcome, err := Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	cfg := outcome.Config
	cfg.RawInputEcho = ""
	rt := &Runtime{Summary: outcome.Summary}
	if cfg.Payload != nil {
		p := *cfg.Payload
		rt.Credentials = secure.NewCredentials(p)
		p.ClientSecret = ""
		cfg.Payload = &p
	}
	rt.Config = cfg
	return rt, nil
}
