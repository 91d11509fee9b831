// Package branding provides compile-time identity values for the installer.
//
// Values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults cover a missing or empty file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName            string `yaml:"cli_name"`
	DisplayName        string `yaml:"display_name"`
	Description        string `yaml:"description"`
	InstallDir         string `yaml:"install_dir"`
	EnvPrefix          string `yaml:"env_prefix"`
	GitHubRepo         string `yaml:"github_repo"`
	RepoURL            string `yaml:"repo_url"`
	ScriptName         string `yaml:"script_name"`
	ServiceName        string `yaml:"service_name"`
	ServiceDescription string `yaml:"service_description"`
	UserAgent          string `yaml:"user_agent"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:            "dynwall-setup",
			DisplayName:        "DynamicWallpaper",
			Description:        "Installer for the DynamicWallpaper client",
			InstallDir:         "dyn_wallpapers",
			EnvPrefix:          "DYNWALL",
			GitHubRepo:         "Urpagin/DynamicWallpaper",
			RepoURL:            "https://github.com/Urpagin/DynamicWallpaper.git",
			ScriptName:         "update_wallpapers.sh",
			ServiceName:        "update-wallpaper.service",
			ServiceDescription: "Update and set wallpaper by Urpagin",
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "dynwall-setup").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// InstallDir returns the directory name created under the user's home.
func InstallDir() string { load(); return defaults.InstallDir }

// EnvPrefix returns the environment variable prefix (e.g., "DYNWALL").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string of the client project.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// RepoURL returns the default git URL cloned by --clone.
func RepoURL() string { load(); return defaults.RepoURL }

// ScriptName returns the file name of the generated update script.
func ScriptName() string { load(); return defaults.ScriptName }

// ServiceName returns the systemd unit name, including the .service suffix.
func ServiceName() string { load(); return defaults.ServiceName }

// ServiceDescription returns the Description= line of the unit.
func ServiceDescription() string { load(); return defaults.ServiceDescription }

// UserAgent returns the browser-like User-Agent sent by the URL probe.
func UserAgent() string { load(); return defaults.UserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("clone") → "DYNWALL_CLONE".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
