package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// Environment variables that take precedence over config file secrets.
const (
	EnvBugzillaAPIKey = "BUGZILLA_API_KEY"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitLabToken    = "GITLAB_TOKEN"
)

// Config represents the application configuration
type Config struct {
	Bugzilla    BugzillaConfig    `yaml:"bugzilla,omitempty"`
	Destination DestinationConfig `yaml:"destination,omitempty"`
	Import      ImportConfig      `yaml:"import,omitempty"`

	// Taxonomy is an optional fixed product/component list used instead of
	// asking Bugzilla when provisioning labels.
	Taxonomy []model.Product `yaml:"taxonomy,omitempty"`
}

// BugzillaConfig - source tracker settings
type BugzillaConfig struct {
	URL    string `yaml:"url,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
}

// DestinationConfig - issue host settings
type DestinationConfig struct {
	Host    string `yaml:"host,omitempty"`
	Repo    string `yaml:"repo,omitempty"`
	Token   string `yaml:"token,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ImportConfig - placeholder and label settings
type ImportConfig struct {
	SentinelLabel  string `yaml:"sentinel_label,omitempty"`
	LabelSeparator string `yaml:"label_separator,omitempty"`
	LockReason     string `yaml:"lock_reason,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".bzmigrate"
	}
	return filepath.Join(configDir, "bzmigrate")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".bzmigrate.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .bzmigrate.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the config files at globalPath and localPath.
// Missing files are ignored.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{
		Bugzilla: BugzillaConfig{
			URL:    pick(local.Bugzilla.URL, global.Bugzilla.URL),
			APIKey: pick(local.Bugzilla.APIKey, global.Bugzilla.APIKey),
		},
		Destination: DestinationConfig{
			Host:    pick(local.Destination.Host, global.Destination.Host),
			Repo:    pick(local.Destination.Repo, global.Destination.Repo),
			Token:   pick(local.Destination.Token, global.Destination.Token),
			BaseURL: pick(local.Destination.BaseURL, global.Destination.BaseURL),
		},
		Import: ImportConfig{
			SentinelLabel:  pick(local.Import.SentinelLabel, global.Import.SentinelLabel),
			LabelSeparator: pick(local.Import.LabelSeparator, global.Import.LabelSeparator),
			LockReason:     pick(local.Import.LockReason, global.Import.LockReason),
		},
	}

	// Local replaces if non-empty
	if len(local.Taxonomy) > 0 {
		result.Taxonomy = local.Taxonomy
	} else {
		result.Taxonomy = global.Taxonomy
	}

	return result
}

func pick(local, global string) string {
	if local != "" {
		return local
	}
	return global
}

// Validate reports every setting the migration cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.Bugzilla.URL == "" {
		errs = append(errs, errors.New("bugzilla.url is not set"))
	} else if u, err := url.Parse(c.Bugzilla.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("bugzilla.url %q is not an absolute URL", c.Bugzilla.URL))
	}

	switch c.HostName() {
	case constants.HostGitHub, constants.HostGitLab:
	default:
		errs = append(errs, fmt.Errorf("destination.host %q must be %q or %q",
			c.Destination.Host, constants.HostGitHub, constants.HostGitLab))
	}

	if c.Destination.Repo == "" {
		errs = append(errs, errors.New("destination.repo is not set"))
	} else if !strings.Contains(strings.Trim(c.Destination.Repo, "/"), "/") {
		errs = append(errs, fmt.Errorf("destination.repo %q must look like owner/name", c.Destination.Repo))
	}

	if strings.TrimSpace(c.SentinelLabel()) == "" {
		errs = append(errs, errors.New("import.sentinel_label must not be blank"))
	}

	return errors.Join(errs...)
}

// HostName returns the destination host kind, github unless configured.
func (c *Config) HostName() string {
	if c.Destination.Host == "" {
		return constants.HostGitHub
	}
	return strings.ToLower(c.Destination.Host)
}

// BugzillaAPIKey returns the Bugzilla API key, preferring the environment.
func (c *Config) BugzillaAPIKey() string {
	if key := os.Getenv(EnvBugzillaAPIKey); key != "" {
		return key
	}
	return c.Bugzilla.APIKey
}

// DestinationToken returns the token for the configured host, preferring
// GITHUB_TOKEN or GITLAB_TOKEN from the environment.
func (c *Config) DestinationToken() string {
	env := EnvGitHubToken
	if c.HostName() == constants.HostGitLab {
		env = EnvGitLabToken
	}
	if token := os.Getenv(env); token != "" {
		return token
	}
	return c.Destination.Token
}

// SentinelLabel returns the label every placeholder carries.
func (c *Config) SentinelLabel() string {
	if c.Import.SentinelLabel != "" {
		return c.Import.SentinelLabel
	}
	return constants.DefaultSentinelLabel
}

// LabelSeparator returns the string joining product and component.
func (c *Config) LabelSeparator() string {
	if c.Import.LabelSeparator != "" {
		return c.Import.LabelSeparator
	}
	return constants.DefaultLabelSeparator
}

// LockReason returns the reason placeholders are locked with.
func (c *Config) LockReason() string {
	if c.Import.LockReason != "" {
		return c.Import.LockReason
	}
	return constants.DefaultLockReason
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	content, err := c.ToYAML()
	if err != nil {
		return err
	}
	return SaveTo(ConfigPath(), content)
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	return &Config{
		Bugzilla: BugzillaConfig{
			URL: "https://bugs.example.org",
		},
		Destination: DestinationConfig{
			Host: constants.HostGitHub,
			Repo: "owner/name",
		},
		Import: ImportConfig{
			SentinelLabel:  constants.DefaultSentinelLabel,
			LabelSeparator: constants.DefaultLabelSeparator,
			LockReason:     constants.DefaultLockReason,
		},
		Taxonomy: []model.Product{
			{
				Name:        "tools",
				Description: "Command line tools",
				Components:  []model.Component{{Name: "cli"}, {Name: "docs"}},
			},
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Bugzilla.APIKey != "" {
		out.Bugzilla.APIKey = "********"
	}
	if out.Destination.Token != "" {
		out.Destination.Token = "********"
	}
	return &out
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# bzmigrate configuration file
# See: bzmigrate config defaults  (for all available options)

bugzilla:
  url: https://bugs.example.org
  # api_key is read from BUGZILLA_API_KEY when set

destination:
  # github or gitlab
  host: github
  repo: owner/name
  # token is read from GITHUB_TOKEN or GITLAB_TOKEN when set
  # base_url: https://gitlab.example.org

# import:
#   sentinel_label: dummy import from bugzilla
#   label_separator: /
#   lock_reason: too heated

# Provision labels from a fixed list instead of asking Bugzilla (optional)
# taxonomy:
#   - name: tools
#     components:
#       - name: cli
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
