package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that mirror command flags, e.g.
// SECRETCFG_ADDR for serve --addr.
const EnvPrefix = "SECRETCFG"

// bindViper fills every local flag of cmd the user did not set from its SECRETCFG_*
// environment variable. Inherited flags such as --secret-config are not bound.
func bindViper(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	flags := cmd.LocalFlags()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	var setErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || setErr != nil {
			return
		}
		// An unchanged flag is only "set" for viper when its variable exists.
		if !v.IsSet(f.Name) {
			return
		}
		val := fmt.Sprintf("%v", v.Get(f.Name))
		if val == "" {
			return
		}
		if err := f.Value.Set(val); err != nil {
			setErr = fmt.Errorf("invalid value %q for %s_%s: %w", val, EnvPrefix, envKey(f.Name), err)
			return
		}
		f.Changed = true
	})
	return setErr
}

func envKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
