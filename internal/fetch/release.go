package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNoReleaseTag is returned when a URL is not a GitHub release asset URL.
	ErrNoReleaseTag = errors.New("URL does not contain a release tag")
	// ErrReleaseTooOld is returned when the release tag is below the configured minimum.
	ErrReleaseTooOld = errors.New("release is older than the minimum supported version")
)

// ReleaseTag extracts the version from a GitHub release download URL of the
// form .../releases/download/<tag>/<asset>.
func ReleaseTag(rawURL string) (*semver.Version, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(segments); i++ {
		if segments[i] == "releases" && segments[i+1] == "download" {
			tag := strings.TrimPrefix(segments[i+2], "v")
			v, err := semver.NewVersion(tag)
			if err != nil {
				return nil, fmt.Errorf("parsing release tag %q: %w", segments[i+2], err)
			}
			return v, nil
		}
	}
	return nil, ErrNoReleaseTag
}

// MinReleaseConstraint parses minVersion into a ">= minVersion" constraint.
func MinReleaseConstraint(minVersion string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(">= " + strings.TrimPrefix(minVersion, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing minimum release %q: %w", minVersion, err)
	}
	return c, nil
}

// CheckMinRelease rejects release URLs whose tag is below minVersion.
// An empty minVersion accepts everything.
func CheckMinRelease(rawURL, minVersion string) error {
	if minVersion == "" {
		return nil
	}

	c, err := MinReleaseConstraint(minVersion)
	if err != nil {
		return err
	}

	v, err := ReleaseTag(rawURL)
	if err != nil {
		return fmt.Errorf("checking minimum release %s: %w", minVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s < %s", ErrReleaseTooOld, v, minVersion)
	}
	return nil
}
