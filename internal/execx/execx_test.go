package execx

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecCapturesOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	res, err := NewExec(nil).Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecNonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	res, err := NewExec(nil).Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo boom >&2; exit 3"},
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecEnvIsAppended(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	res, err := NewExec(nil).Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf %s \"$DYNWALL_TEST_VALUE\""},
		Env:  []string{"DYNWALL_TEST_VALUE=hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Stdout)
}

func TestExecMissingProgram(t *testing.T) {
	_, err := NewExec(nil).Run(context.Background(), Command{Name: "definitely-not-a-real-program-xyz"})
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestRecorder(t *testing.T) {
	boom := errors.New("boom")
	hooked := false

	r := NewRecorder().
		On("systemctl", Response{Err: boom}).
		On("git", Response{Hook: func(Command) { hooked = true }})

	_, err := r.Run(context.Background(), Command{Name: "systemctl", Args: []string{"daemon-reload"}})
	assert.ErrorIs(t, err, boom)

	_, err = r.Run(context.Background(), Command{Name: "git", Args: []string{"clone"}})
	assert.NoError(t, err)
	assert.True(t, hooked)

	res, err := r.Run(context.Background(), Command{Name: "true"})
	require.NoError(t, err)
	assert.NotNil(t, res)

	assert.Equal(t, []string{"systemctl daemon-reload", "git clone", "true"}, r.Names())
}

func TestRecorderHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecorder().Run(ctx, Command{Name: "true"})
	assert.ErrorIs(t, err, context.Canceled)
}
