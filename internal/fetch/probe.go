package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadScheme is returned for URLs that do not start with http:// or https://.
	ErrBadScheme = errors.New("URL must start with 'https://' or 'http://'")
	// ErrUnreachable is returned when no HTTP response could be obtained.
	ErrUnreachable = errors.New("server unreachable")
)

// ValidateScheme checks the URL prefix. It never touches the network.
func ValidateScheme(url string) error {
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBadScheme, url)
}

// Probe sends a HEAD request to url and returns the status code of whatever
// answered. Any HTTP response counts as reachable, error statuses included;
// only transport failures (DNS, refused connection, timeout) are errors.
func (c *Client) Probe(ctx context.Context, url string) (int, error) {
	if c.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
	}

	resp, err := c.rc.R().SetContext(ctx).Head(url)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnreachable, url, err)
	}

	c.log.WithField("url", url).WithField("status", resp.StatusCode()).Debug("probe answered")
	return resp.StatusCode(), nil
}

// Validate runs ValidateScheme then Probe.
func (c *Client) Validate(ctx context.Context, url string) (int, error) {
	if err := ValidateScheme(url); err != nil {
		return 0, err
	}
	return c.Probe(ctx, url)
}
