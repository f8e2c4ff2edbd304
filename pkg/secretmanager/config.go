package secretmanager

// Library defaults, the lowest-precedence configuration layer.
const (
	// DefaultEndpoint is the Secret Manager REST base URL.
	DefaultEndpoint = "https://secretmanager.googleapis.com/v1"

	// DefaultVersion is the version used when none is configured. "latest"
	// is an alias the API resolves to the newest enabled version.
	DefaultVersion = "latest"
)

// Config is one layer of client configuration. Layers are overlaid
// left-to-right: library defaults, then the handle's config, then any
// call-time overrides. A zero Config is a valid layer that contributes
// nothing.
type Config struct {
	// Project is the GCP project ID. Required by the time a request is
	// made; there is no library default.
	Project string

	// Version selects the secret version for reads ("latest", "3", ...).
	// It is the literal path segment of the REST URL.
	Version string

	// Endpoint overrides the API base URL. Mostly useful for tests.
	Endpoint string
}

func defaultConfig() Config {
	return Config{
		Version:  DefaultVersion,
		Endpoint: DefaultEndpoint,
	}
}

// mergeConfigs overlays layers left-to-right: for each field the right-most
// non-empty value wins. Empty fields never clear a value from an earlier
// layer. Pure function, inputs are not mutated.
func mergeConfigs(layers ...Config) Config {
	var merged Config
	for _, layer := range layers {
		if layer.Project != "" {
			merged.Project = layer.Project
		}
		if layer.Version != "" {
			merged.Version = layer.Version
		}
		if layer.Endpoint != "" {
			merged.Endpoint = layer.Endpoint
		}
	}
	return merged
}

// resolveConfig produces the effective config for one operation: defaults,
// then the handle's instance config, then call-time overrides. Validation
// runs on the merged result, so a project supplied by any layer satisfies
// it. Called at request time, never at handle construction.
func resolveConfig(instance Config, overrides ...Config) (Config, error) {
	layers := make([]Config, 0, len(overrides)+2)
	layers = append(layers, defaultConfig(), instance)
	layers = append(layers, overrides...)

	merged := mergeConfigs(layers...)
	if merged.Project == "" {
		return Config{}, &ConfigurationError{Message: "project is required"}
	}
	return merged, nil
}
