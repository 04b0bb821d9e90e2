package perfsync

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-perfsync/internal/merge"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPageSize        = 25
	DefaultPolicyCacheSize = 128
)

// Config is the file-backed configuration shared by both stores and the
// Policy.
type Config struct {
	PageSize int            `yaml:"page_size"`
	Activity ActivityConfig `yaml:"activity"`
	Policy   PolicyConfig   `yaml:"policy"`
	// Messages overrides the fallback failure message per action name.
	Messages map[string]string `yaml:"messages"`
}

// ActivityConfig controls activity emission.
type ActivityConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Channel string `yaml:"channel"`
}

func (a ActivityConfig) enabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// PolicyConfig selects the rule engine and overrides individual rules.
type PolicyConfig struct {
	Engine    string            `yaml:"engine"`
	CacheSize int               `yaml:"cache_size"`
	Rules     map[string]string `yaml:"rules"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	enabled := true
	return Config{
		PageSize: DefaultPageSize,
		Activity: ActivityConfig{Enabled: &enabled, Channel: "performance"},
		Policy: PolicyConfig{
			Engine:    EngineExpr,
			CacheSize: DefaultPolicyCacheSize,
		},
	}
}

// ParseConfig decodes YAML and fills unset fields from DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("perfsync: parse config: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("perfsync: load config: %w", err)
	}
	return ParseConfig(data)
}

func (c Config) withDefaults() Config {
	return merge.Defaults(c, DefaultConfig())
}

// Validate reports every problem in the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	switch strings.ToLower(c.Policy.Engine) {
	case "", EngineExpr, EngineCEL, EngineJS:
	default:
		errs = append(errs, fmt.Errorf("policy.engine %q is not supported", c.Policy.Engine))
	}
	if c.Policy.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("policy.cache_size must not be negative, got %d", c.Policy.CacheSize))
	}
	for _, key := range sortedKeys(c.Policy.Rules) {
		if !Action(key).Known() {
			errs = append(errs, fmt.Errorf("policy.rules: %w %q", ErrUnknownAction, key))
		}
	}
	for _, key := range sortedKeys(c.Messages) {
		if !Action(key).Known() {
			errs = append(errs, fmt.Errorf("messages: %w %q", ErrUnknownAction, key))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("perfsync: invalid config: %w", errors.Join(errs...))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
