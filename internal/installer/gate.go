package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/urpagin/dynwall-setup/internal/execx"
	"github.com/urpagin/dynwall-setup/internal/identity"
	"github.com/urpagin/dynwall-setup/internal/prompt"
)

// ErrTestRejected is returned when the test run was not confirmed.
var ErrTestRejected = errors.New("test run was not confirmed, cannot continue installation if the program did not work")

// GateState is the position of a Gate in the test-run protocol.
type GateState int

const (
	AwaitingConfirmation GateState = iota
	Running
	AwaitingResult
	Confirmed
	Aborted
)

func (s GateState) String() string {
	switch s {
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Running:
		return "running"
	case AwaitingResult:
		return "awaiting-result"
	case Confirmed:
		return "confirmed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

const (
	gateIntro = "Program installation is completed.\n\n" +
		"Press [ENTER] to make a test run, and verify that your wallpaper changed.\n\n" +
		"If your wallpaper did not change, the installation cannot continue further."
	gateEnter    = "\nPRESS ENTER TO MAKE A TEST RUN..."
	gateQuestion = "Did your wallpaper change? (N/y)"
)

// Gate runs the generated script once and asks whether it worked. Nothing
// irreversible may happen unless the gate ends Confirmed.
type Gate struct {
	Script  string
	Dir     string
	User    *identity.User
	Display string

	// Unattended replaces the human with AutoConfirm: the gate confirms only
	// when AutoConfirm is set and the script exits successfully.
	Unattended  bool
	AutoConfirm bool

	runner execx.Runner
	prompt *prompt.Prompter
	log    *logrus.Logger
	state  GateState
}

// NewGate returns a gate in the AwaitingConfirmation state.
func NewGate(runner execx.Runner, p *prompt.Prompter, log *logrus.Logger) *Gate {
	return &Gate{runner: runner, prompt: p, log: log, state: AwaitingConfirmation}
}

// State returns the current state.
func (g *Gate) State() GateState {
	return g.state
}

// Run drives the gate to Confirmed or Aborted. Aborted is reported as
// ErrTestRejected; input errors leave the gate where it stopped.
func (g *Gate) Run(ctx context.Context) error {
	if g.state != AwaitingConfirmation {
		return fmt.Errorf("gate already %s", g.state)
	}

	if !g.Unattended {
		g.prompt.Banner(gateIntro)
		if err := g.prompt.WaitEnter(gateEnter); err != nil {
			return fmt.Errorf("waiting for confirmation: %w", err)
		}
	}

	g.state = Running
	fmt.Fprintf(g.prompt.Writer(), "Running script '%s'...\nThis may take a few seconds...\n", g.Script)
	runErr := g.runScript(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if runErr != nil {
		g.log.WithField("step", "test-run").WithError(runErr).Warn("script exited with an error")
	}

	g.state = AwaitingResult
	if g.Unattended {
		if runErr != nil || !g.AutoConfirm {
			return g.abort()
		}
		g.state = Confirmed
		return nil
	}

	fmt.Fprint(g.prompt.Writer(), "\n\n")
	ok, err := g.prompt.Confirm(gateQuestion)
	if err != nil {
		return fmt.Errorf("reading test result: %w", err)
	}
	if !ok {
		return g.abort()
	}
	g.state = Confirmed
	fmt.Fprintln(g.prompt.Writer(), "Continuing installation. Installing program at computer startup.")
	return nil
}

func (g *Gate) abort() error {
	g.state = Aborted
	return ErrTestRejected
}

// runScript runs the script as the invoking user with the X session
// environment the service will also get.
func (g *Gate) runScript(ctx context.Context) error {
	cmd := execx.Command{
		Name: "runuser",
		Args: []string{"-u", g.User.Name, "--", g.Script},
		Dir:  g.Dir,
		Env: []string{
			"DISPLAY=" + g.Display,
			"XAUTHORITY=" + xauthority(g.User),
		},
	}
	_, err := g.runner.Run(ctx, cmd)
	return err
}

func xauthority(u *identity.User) string {
	return filepath.Join(u.HomeDir, ".Xauthority")
}
