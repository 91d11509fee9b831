package script

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParams() Params {
	return Params{
		Binary:    "/home/u/dyn_wallpapers/client",
		Endpoint:  "https://ex.com/e",
		Directory: "/tmp/w",
		User:      "u",
		Password:  "p",
	}
}

func TestRenderInvocation(t *testing.T) {
	out, err := Render(sampleParams())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "#!/bin/bash\n"))

	var invocations, setters []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if strings.Contains(line, "--endpoint") {
			invocations = append(invocations, line)
		}
		if strings.HasPrefix(line, "feh ") {
			setters = append(setters, line)
		}
	}

	require.Len(t, invocations, 1)
	for _, flag := range []string{"--endpoint", "--directory", "--user", "--password"} {
		assert.Equal(t, 1, strings.Count(invocations[0], flag), "flag %s", flag)
	}

	require.Len(t, setters, 1)
	assert.Equal(t, `feh --bg-fill --randomize "$WALLPAPERS_PATH"/*`, setters[0])

	assert.Contains(t, text, "ENDPOINT=https://ex.com/e\n")
	assert.Contains(t, text, "WALLPAPERS_PATH=/tmp/w\n")
	assert.Contains(t, text, "USER_NAME=u\n")
	assert.Contains(t, text, "PASSWORD=p\n")
	assert.Contains(t, text, "BINARY_FILE_NAME=/home/u/dyn_wallpapers/client\n")
}

func TestRenderQuotesHostileValues(t *testing.T) {
	p := sampleParams()
	p.Password = "p; rm -rf /"
	p.User = "it's me"

	out, err := Render(p)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "PASSWORD='p; rm -rf /'\n")
	assert.NotContains(t, text, "PASSWORD=p; rm")
	assert.Contains(t, text, `USER_NAME='it'"'"'s me'`)
}

func TestRenderCustomSetter(t *testing.T) {
	p := sampleParams()
	p.Setter = "  nitrogen   --set-zoom-fill --random "

	out, err := Render(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `nitrogen --set-zoom-fill --random "$WALLPAPERS_PATH"/*`)
}

func TestRenderRejectsEmptyValues(t *testing.T) {
	p := sampleParams()
	p.User = ""
	p.Password = ""

	_, err := Render(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user is empty")
	assert.Contains(t, err.Error(), "password is empty")
}

func TestRenderRejectsNUL(t *testing.T) {
	p := sampleParams()
	p.Endpoint = "https://ex.com/\x00"

	_, err := Render(p)
	assert.Error(t, err)
}

func TestPreviewRedactsPassword(t *testing.T) {
	p := sampleParams()
	p.Password = "hunter2"

	out, err := Preview(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), Redacted)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update_wallpapers.sh")
	require.NoError(t, Write(path, sampleParams()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

// TestGeneratedScriptPassesValuesVerbatim runs the script with a stub client
// that prints its arguments, proving hostile values arrive as single words.
func TestGeneratedScriptPassesValuesVerbatim(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "pwned")
	stub := filepath.Join(dir, "client stub")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\nfor a in \"$@\"; do printf '%s\\n' \"$a\"; done\n"), 0755))

	wallpapers := filepath.Join(dir, "wall papers")
	require.NoError(t, os.Mkdir(wallpapers, 0755))

	p := Params{
		Binary:    stub,
		Endpoint:  "https://ex.com/e?a=1&b=$(touch " + marker + ")",
		Directory: wallpapers,
		User:      "`touch " + marker + "`",
		Password:  "p'; touch " + marker + "; echo '",
		Setter:    "true",
	}
	path := filepath.Join(dir, "update_wallpapers.sh")
	require.NoError(t, Write(path, p))

	out, err := exec.Command("bash", path).CombinedOutput()
	require.NoError(t, err, string(out))

	want := strings.Join([]string{
		"--endpoint", p.Endpoint,
		"--directory", p.Directory,
		"--user", p.User,
		"--password", p.Password,
	}, "\n") + "\n"
	assert.Equal(t, want, string(out))

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "embedded value was executed")
}
