package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Config represents the docnav client configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	HTTP     HTTPConfig     `yaml:"http"`
	Retry    RetryConfig    `yaml:"retry"`
	Versions VersionsConfig `yaml:"versions"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
}

// SourceConfig selects where JSON resources are fetched from. Exactly one of
// BaseURL (a deployed site) or Dir (a local static build output) is used.
type SourceConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// HTTPConfig configures the HTTP fetcher.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// RetryConfig configures fetcher-level retries. The navigation core never retries
// on its own; MaxRetries defaults to 0.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries"`
}

// VersionsConfig describes the documentation versions known to the site.
type VersionsConfig struct {
	Latest string   `yaml:"latest"`
	Next   string   `yaml:"next"`
	List   []string `yaml:"list,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// WatchConfig controls live reload. Enabled watches Source.Dir for changes;
// Refresh, when positive, reloads the current page on that interval for any source.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Refresh  time.Duration `yaml:"refresh,omitempty"`
}

// Load reads configuration from path, expanding ${VAR} references after loading
// .env files. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	_ = loadEnvFile()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
				Fatal().
				WithContext("path", path).
				Build()
		}
	case os.IsNotExist(err):
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

const exampleConfig = `# docnav configuration
source:
  # Fetch JSON resources from a deployed site...
  base_url: "https://sycamore.dev"
  # ...or from a local static build output (contains static/docs, static/posts).
  # dir: "./dist"

http:
  timeout: 15s
  user_agent: "docnav"

retry:
  mode: linear
  initial: 500ms
  max: 5s
  max_retries: 0

versions:
  latest: "v0.8"
  next: "next"
  list: ["next", "v0.8"]

metrics:
  enabled: false
  listen: ":9464"
  path: "/metrics"

watch:
  enabled: false
  debounce: 250ms
  # Reload the current page periodically; 0 disables.
  refresh: 0s
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
