//go:build integration

package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/urpagin/dynwall-setup/internal/execx"
	"github.com/urpagin/dynwall-setup/internal/identity"
)

const releasePath = "/releases/download/v1.0.0/dynwall-client"

// fakeClient is served as the release binary. It records its arguments and
// drops one wallpaper into the --directory it was given.
const fakeClient = `#!/bin/bash
set -e
dir=
while [ $# -gt 0 ]; do
  if [ "$1" = "--directory" ]; then dir=$2; fi
  printf '%s\n' "$1" >> "$(dirname "$0")/args.txt"
  shift
done
: > "$dir/wallpaper.jpg"
`

// testEnv holds paths to isolated test directories.
type testEnv struct {
	User     *identity.User
	UnitPath string
	Server   *httptest.Server
}

// setupTestEnv creates a fake home for the current account and an HTTP
// server offering the fake client at releasePath.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not installed")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == releasePath {
			w.Write([]byte(fakeClient))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	return &testEnv{
		User: &identity.User{
			Name:    "integration",
			UID:     os.Getuid(),
			GID:     os.Getgid(),
			HomeDir: t.TempDir(),
		},
		UnitPath: filepath.Join(t.TempDir(), "update-wallpaper.service"),
		Server:   srv,
	}
}

// localRunner runs the test run for real, without switching users, and
// records systemctl calls instead of touching the host's systemd.
type localRunner struct {
	exec     *execx.Exec
	recorder *execx.Recorder
}

func newLocalRunner() *localRunner {
	return &localRunner{exec: execx.NewExec(nil), recorder: execx.NewRecorder()}
}

func (r *localRunner) Run(ctx context.Context, c execx.Command) (*execx.Result, error) {
	if c.Name == "runuser" {
		// runuser -u <name> -- <script>
		c.Name = c.Args[len(c.Args)-1]
		c.Args = nil
		return r.exec.Run(ctx, c)
	}
	return r.recorder.Run(ctx, c)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}
