// Package secretconfig resolves the effective credential configuration for an application
// from a set of candidate sources.
//
// A caller supplies zero or more candidate sources (an explicit override, an environment
// variable, a config-file value, a set of legacy discrete fields, and a value discovered in
// a remote system). Exactly one effective configuration is produced, or a typed
// *ResolutionError explains why none could be.
//
// # Formats
//
// A raw candidate value is either a Reference to a secret held in AWS Secrets Manager:
//
//	arn:aws:secretsmanager:us-east-1:123456789012:secret:prod/app-credentials
//
// or an Inline payload carrying the credentials directly:
//
//	{"tenant":"acme","clientId":"abc123","clientSecret":"shh-secret-999"}
//
// # Precedence
//
// Sources are evaluated in a fixed order:
//
//	ExplicitOverride > EnvironmentVariable > ConfigFile > LegacyDiscreteFields > RemoteDiscovery
//
// The resolver commits to the first source that is present. A present but invalid source
// is a terminal error; the resolver never falls through to a lower-precedence source.
//
// # Example
//
//	resolver := secretconfig.NewResolver(storeClient)
//	cfg, err := resolver.Resolve(ctx, []secretconfig.CandidateSource{
//	    secretconfig.Override(flagValue),
//	    secretconfig.FromEnv("SECRET_CONFIG", os.Getenv("SECRET_CONFIG")),
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(secretconfig.Mask(cfg))
//
// # Security Considerations
//
// Nothing in this package logs. Use Mask for display and Project for health reporting;
// neither ever returns a clientSecret or a full account id.
package secretconfig
