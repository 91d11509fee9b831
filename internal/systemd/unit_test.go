package systemd

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urpagin/dynwall-setup/internal/execx"
)

func sampleSpec() Spec {
	return Spec{
		Description: "Update and set wallpaper",
		Script:      "/home/alice/dyn_wallpapers/update_wallpapers.sh",
		WorkingDir:  "/home/alice/dyn_wallpapers",
		User:        "alice",
		XAuthority:  "/home/alice/.Xauthority",
	}
}

func optionValues(t *testing.T, data []byte) map[string][]string {
	t.Helper()
	opts, err := unit.DeserializeOptions(bytes.NewReader(data))
	require.NoError(t, err)

	values := make(map[string][]string)
	for _, o := range opts {
		key := o.Section + "." + o.Name
		values[key] = append(values[key], o.Value)
	}
	return values
}

func TestRender(t *testing.T) {
	data, err := Render(sampleSpec())
	require.NoError(t, err)

	v := optionValues(t, data)
	assert.Equal(t, []string{"oneshot"}, v["Service.Type"])
	assert.Equal(t, []string{"/home/alice/dyn_wallpapers/update_wallpapers.sh"}, v["Service.ExecStart"])
	assert.Equal(t, []string{"/home/alice/dyn_wallpapers"}, v["Service.WorkingDirectory"])
	assert.Equal(t, []string{"alice"}, v["Service.User"])
	assert.Equal(t, []string{"DISPLAY=:0", "XAUTHORITY=/home/alice/.Xauthority"}, v["Service.Environment"])
	assert.Equal(t, []string{"network-online.target"}, v["Unit.After"])
	assert.Equal(t, []string{"network-online.target"}, v["Unit.Wants"])
	assert.Equal(t, []string{"multi-user.target"}, v["Install.WantedBy"])
}

func TestRenderQuotesPathsWithSpaces(t *testing.T) {
	s := sampleSpec()
	s.Script = "/home/a b/dyn_wallpapers/update_wallpapers.sh"
	s.WorkingDir = "/home/a b/dyn_wallpapers"
	s.XAuthority = "/home/a b/.Xauthority"
	s.Display = ":1"

	data, err := Render(s)
	require.NoError(t, err)

	v := optionValues(t, data)
	assert.Equal(t, []string{`"/home/a b/dyn_wallpapers/update_wallpapers.sh"`}, v["Service.ExecStart"])
	assert.Equal(t, []string{"/home/a b/dyn_wallpapers"}, v["Service.WorkingDirectory"])
	assert.Equal(t, []string{"DISPLAY=:1", `"XAUTHORITY=/home/a b/.Xauthority"`}, v["Service.Environment"])
}

func TestRenderEscapesSpecifiers(t *testing.T) {
	s := sampleSpec()
	s.Script = "/home/50%off/dyn_wallpapers/update_wallpapers.sh"
	s.WorkingDir = "/home/50%off/dyn_wallpapers"
	s.XAuthority = "/home/50%off/.Xauthority"

	data, err := Render(s)
	require.NoError(t, err)

	v := optionValues(t, data)
	assert.Equal(t, []string{"/home/50%%off/dyn_wallpapers/update_wallpapers.sh"}, v["Service.ExecStart"])
	assert.Equal(t, []string{"/home/50%%off/dyn_wallpapers"}, v["Service.WorkingDirectory"])
	assert.Equal(t, []string{"DISPLAY=:0", "XAUTHORITY=/home/50%%off/.Xauthority"}, v["Service.Environment"])
}

func TestRenderRejectsIncompleteSpec(t *testing.T) {
	s := sampleSpec()
	s.User = ""
	_, err := Render(s)
	assert.Error(t, err)
}

func TestWriteUnitOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update-wallpaper.service")
	require.NoError(t, os.WriteFile(path, []byte("[Unit]\nDescription=old\n"), 0644))

	require.NoError(t, WriteUnit(path, sampleSpec()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Description=old")
	assert.Contains(t, string(data), "ExecStart=/home/alice/dyn_wallpapers/update_wallpapers.sh")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteUnitPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(dir, 0555))

	err := WriteUnit(filepath.Join(dir, "x.service"), sampleSpec())
	assert.True(t, errors.Is(err, fs.ErrPermission), "got %v", err)
}

func TestRegister(t *testing.T) {
	rec := execx.NewRecorder()
	require.NoError(t, Register(context.Background(), rec, "update-wallpaper.service"))
	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable update-wallpaper.service",
	}, rec.Names())
}

func TestRegisterStopsOnReloadFailure(t *testing.T) {
	rec := execx.NewRecorder().On("systemctl", execx.Response{Err: errors.New("no systemd")})

	err := Register(context.Background(), rec, "update-wallpaper.service")
	require.Error(t, err)
	assert.Len(t, rec.Calls(), 1)
}

func TestIsEnabled(t *testing.T) {
	assert.True(t, IsEnabled(context.Background(), execx.NewRecorder(), "x.service"))

	rec := execx.NewRecorder().On("systemctl", execx.Response{Err: errors.New("disabled")})
	assert.False(t, IsEnabled(context.Background(), rec, "x.service"))
}
