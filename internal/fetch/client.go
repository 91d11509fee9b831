package fetch

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/urpagin/dynwall-setup/internal/branding"
)

const (
	// DefaultProbeTimeout bounds a single liveness probe.
	DefaultProbeTimeout = 15 * time.Second
	// DefaultDownloadTimeout bounds a whole artifact download.
	DefaultDownloadTimeout = 10 * time.Minute
)

// Client probes and downloads URLs.
type Client struct {
	rc              *resty.Client
	userAgent       string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	progress        io.Writer
	log             *logrus.Logger
	githubAPI       string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.rc = resty.NewWithClient(c)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithProbeTimeout sets the timeout of a single probe. Zero disables it.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.probeTimeout = d
	}
}

// WithDownloadTimeout sets the timeout of a whole download. Zero disables it.
func WithDownloadTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.downloadTimeout = d
	}
}

// WithProgress sets where download progress is printed. Nil disables it.
func WithProgress(w io.Writer) Option {
	return func(c *Client) {
		c.progress = w
	}
}

// WithGitHubAPI overrides the GitHub API base URL (useful for testing).
func WithGitHubAPI(base string) Option {
	return func(c *Client) {
		c.githubAPI = strings.TrimRight(base, "/")
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a Client with the browser user agent from branding.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent:       branding.UserAgent(),
		probeTimeout:    DefaultProbeTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		githubAPI:       DefaultGitHubAPI,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rc == nil {
		c.rc = resty.New()
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	c.rc.SetLogger(c.log)
	c.rc.SetHeader("User-Agent", c.userAgent)
	return c
}
