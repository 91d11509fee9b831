package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urpagin/dynwall-setup/internal/branding"
)

// DefaultGitHubAPI is the base URL of the GitHub REST API.
const DefaultGitHubAPI = "https://api.github.com"

// ErrNoRelease is returned when GitHub has no matching release.
var ErrNoRelease = errors.New("release not found")

// Release is a GitHub release of the client.
type Release struct {
	TagName   string    `json:"tag_name"`
	Assets    []Asset   `json:"assets"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
}

// LatestRelease fetches the latest release of repo ("owner/name").
func (c *Client) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	return c.fetchRelease(ctx, fmt.Sprintf("%s/repos/%s/releases/latest", c.githubAPI, repo))
}

// ReleaseByTag fetches the release of repo tagged tag. A missing "v" prefix is added.
func (c *Client) ReleaseByTag(ctx context.Context, repo, tag string) (*Release, error) {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return c.fetchRelease(ctx, fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.githubAPI, repo, tag))
}

func (c *Client) fetchRelease(ctx context.Context, url string) (*Release, error) {
	if c.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
	}

	req := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json")
	if token := githubToken(); token != "" {
		req.SetHeader("Authorization", "token "+token)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNoRelease
	case http.StatusForbidden:
		return nil, fmt.Errorf("GitHub API rate limit exceeded. Set %s or GITHUB_TOKEN for higher limits", branding.EnvVar("github_token"))
	default:
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode())
	}

	var release Release
	if err := json.Unmarshal(resp.Body(), &release); err != nil {
		return nil, fmt.Errorf("parsing release JSON: %w", err)
	}
	return &release, nil
}

var archAliases = map[string][]string{
	"amd64": {"amd64", "x86_64", "x64"},
	"arm64": {"arm64", "aarch64"},
	"386":   {"386", "i386", "i686"},
	"arm":   {"armv7", "arm"},
}

// SelectAsset finds the asset built for goos/goarch. Checksum and signature
// files are never selected. A release with a single candidate returns it.
func SelectAsset(assets []Asset, goos, goarch string) (*Asset, error) {
	var candidates []int
	for i, a := range assets {
		if !isChecksum(a.Name) {
			candidates = append(candidates, i)
		}
	}

	aliases := archAliases[goarch]
	if len(aliases) == 0 {
		aliases = []string{goarch}
	}
	for _, i := range candidates {
		name := strings.ToLower(assets[i].Name)
		if !strings.Contains(name, goos) {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return &assets[i], nil
			}
		}
	}

	if len(candidates) == 1 {
		return &assets[candidates[0]], nil
	}
	return nil, fmt.Errorf("no asset found for %s/%s among %d file(s)", goos, goarch, len(assets))
}

func isChecksum(name string) bool {
	name = strings.ToLower(name)
	for _, suffix := range []string{".sha256", ".sha256sum", ".sha512", ".sig", ".asc", ".txt"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// githubToken returns the optional API token, preferring the installer's own
// variable over the generic GITHUB_TOKEN.
func githubToken() string {
	if token := os.Getenv(branding.EnvVar("github_token")); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}
