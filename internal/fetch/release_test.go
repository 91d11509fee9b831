package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseTag(t *testing.T) {
	v, err := ReleaseTag("https://github.com/Urpagin/DynamicWallpaper/releases/download/v1.4.2/client")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", v.String())

	v, err = ReleaseTag("https://github.com/o/r/releases/download/2.0/client")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v.String())

	_, err = ReleaseTag("https://example.com/files/client")
	assert.ErrorIs(t, err, ErrNoReleaseTag)

	_, err = ReleaseTag("https://github.com/o/r/releases/download/latest-build/client")
	assert.Error(t, err)
}

func TestCheckMinRelease(t *testing.T) {
	const url = "https://github.com/o/r/releases/download/v1.2.0/client"

	assert.NoError(t, CheckMinRelease(url, ""))
	assert.NoError(t, CheckMinRelease(url, "1.2.0"))
	assert.NoError(t, CheckMinRelease(url, "v1.1.9"))
	assert.ErrorIs(t, CheckMinRelease(url, "1.3.0"), ErrReleaseTooOld)
	assert.ErrorIs(t, CheckMinRelease("https://example.com/client", "1.0.0"), ErrNoReleaseTag)
	assert.Error(t, CheckMinRelease(url, "not-a-version"))
}
