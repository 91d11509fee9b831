package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/fetch"
	"github.com/urpagin/dynwall-setup/internal/script"
	"github.com/urpagin/dynwall-setup/internal/systemd"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood in the config file, as DYNWALL_<KEY> env vars and as flags.
const (
	KeyInstallDirName  = "install_dir_name"
	KeyServicePath     = "service_path"
	KeyServiceName     = "service_name"
	KeyRepoURL         = "repo_url"
	KeyGitHubRepo      = "github_repo"
	KeySuggestRelease  = "suggest_release"
	KeyClone           = "clone"
	KeySetter          = "setter"
	KeyDisplay         = "display"
	KeyProbeTimeout    = "probe_timeout"
	KeyDownloadTimeout = "download_timeout"
	KeyMinRelease      = "min_release"
	KeyLogLevel        = "log_level"
	KeyAnswers         = "answers"
)

// Keys lists every known key in file order.
func Keys() []string {
	return []string{
		KeyInstallDirName, KeyServicePath, KeyServiceName, KeyRepoURL, KeyGitHubRepo,
		KeySuggestRelease, KeyClone, KeySetter, KeyDisplay, KeyProbeTimeout,
		KeyDownloadTimeout, KeyMinRelease, KeyLogLevel, KeyAnswers,
	}
}

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	return slices.Contains(Keys(), key)
}

// Config is the resolved installer configuration.
type Config struct {
	// InstallDirName is the directory created in the invoking user's home.
	InstallDirName string
	// ServicePath is the full path of the unit file. Empty means
	// systemd.DefaultUnitDir joined with ServiceName.
	ServicePath string
	ServiceName string
	RepoURL     string
	Clone       bool
	// GitHubRepo is the "owner/name" whose latest release is suggested
	// before the release URL prompt when SuggestRelease is set.
	GitHubRepo     string
	SuggestRelease bool
	// Setter is the wallpaper-setting command, split on whitespace.
	Setter  string
	Display string

	ProbeTimeout    time.Duration
	DownloadTimeout time.Duration

	// MinRelease is an optional semver floor for the release URL tag.
	MinRelease string
	LogLevel   string
	// Answers names a YAML answers file for unattended installs.
	Answers string
}

// Dir returns the system-wide config directory (/etc/dynwall-setup).
func Dir() string {
	return filepath.Join("/etc", branding.CLIName())
}

// FilePath returns the default config file path.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyInstallDirName, branding.InstallDir())
	v.SetDefault(KeyServicePath, "")
	v.SetDefault(KeyServiceName, branding.ServiceName())
	v.SetDefault(KeyRepoURL, branding.RepoURL())
	v.SetDefault(KeyClone, false)
	v.SetDefault(KeyGitHubRepo, branding.GitHubRepo())
	v.SetDefault(KeySuggestRelease, true)
	v.SetDefault(KeySetter, script.DefaultSetter)
	v.SetDefault(KeyDisplay, systemd.DefaultDisplay)
	v.SetDefault(KeyProbeTimeout, fetch.DefaultProbeTimeout)
	v.SetDefault(KeyDownloadTimeout, fetch.DefaultDownloadTimeout)
	v.SetDefault(KeyMinRelease, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAnswers, "")

	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and returns the resolved Config.
// When path is empty the default file is used if present; an explicitly
// named file must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := Read(v, path, path != ""); err != nil {
		return nil, err
	}
	return Resolve(v)
}

// Read merges the config file at path (the default file when empty) into v.
// A missing file is an error only when mustExist is set.
func Read(v *viper.Viper, path string, mustExist bool) error {
	if path == "" {
		path = FilePath()
	}

	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if mustExist || !missing {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return nil
}

// Resolve builds and validates a Config from the settings in v.
func Resolve(v *viper.Viper) (*Config, error) {
	var result *multierror.Error

	duration := func(key string) time.Duration {
		d, err := cast.ToDurationE(v.Get(key))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	cfg := &Config{
		InstallDirName:  v.GetString(KeyInstallDirName),
		ServicePath:     v.GetString(KeyServicePath),
		ServiceName:     v.GetString(KeyServiceName),
		RepoURL:         v.GetString(KeyRepoURL),
		Clone:           v.GetBool(KeyClone),
		GitHubRepo:      v.GetString(KeyGitHubRepo),
		SuggestRelease:  v.GetBool(KeySuggestRelease),
		Setter:          v.GetString(KeySetter),
		Display:         v.GetString(KeyDisplay),
		ProbeTimeout:    duration(KeyProbeTimeout),
		DownloadTimeout: duration(KeyDownloadTimeout),
		MinRelease:      v.GetString(KeyMinRelease),
		LogLevel:        v.GetString(KeyLogLevel),
		Answers:         v.GetString(KeyAnswers),
	}
	if err := cfg.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.InstallDirName {
	case "", ".", "..":
		result = multierror.Append(result, fmt.Errorf("%s must be a plain directory name, got %q", KeyInstallDirName, c.InstallDirName))
	default:
		if strings.ContainsRune(c.InstallDirName, filepath.Separator) {
			result = multierror.Append(result, fmt.Errorf("%s must be a plain directory name, got %q", KeyInstallDirName, c.InstallDirName))
		}
	}
	if c.ServicePath != "" && !filepath.IsAbs(c.ServicePath) {
		result = multierror.Append(result, fmt.Errorf("%s must be an absolute path, got %q", KeyServicePath, c.ServicePath))
	}
	if !strings.HasSuffix(c.ServiceName, ".service") || strings.ContainsRune(c.ServiceName, filepath.Separator) {
		result = multierror.Append(result, fmt.Errorf("%s must be a unit file name ending in .service, got %q", KeyServiceName, c.ServiceName))
	}
	if strings.TrimSpace(c.Setter) == "" {
		result = multierror.Append(result, fmt.Errorf("%s must not be empty", KeySetter))
	}
	if c.Clone && c.RepoURL == "" {
		result = multierror.Append(result, fmt.Errorf("%s is required when %s is set", KeyRepoURL, KeyClone))
	}
	if c.ProbeTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive, got %s", KeyProbeTimeout, c.ProbeTimeout))
	}
	if c.DownloadTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive, got %s", KeyDownloadTimeout, c.DownloadTimeout))
	}
	if c.MinRelease != "" {
		if _, err := fetch.MinReleaseConstraint(c.MinRelease); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", KeyMinRelease, err))
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}

	return result.ErrorOrNil()
}

// UnitPath returns the full path of the unit file.
func (c *Config) UnitPath() string {
	if c.ServicePath != "" {
		return c.ServicePath
	}
	return filepath.Join(systemd.DefaultUnitDir, c.ServiceName)
}

// Set writes a key-value pair to the config file at path, creating it if
// needed. The value is checked against the defaults first so a bad value
// never reaches the file.
func Set(v *viper.Viper, path, key, value string) error {
	if path == "" {
		path = FilePath()
	}

	candidate := New()
	candidate.Set(key, value)
	if _, err := Resolve(candidate); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(path), err)
	}

	v.Set(key, value)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", path, err)
		}
		f.Close()
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
