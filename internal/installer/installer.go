package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/urpagin/dynwall-setup/internal/answers"
	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/config"
	"github.com/urpagin/dynwall-setup/internal/execx"
	"github.com/urpagin/dynwall-setup/internal/fetch"
	"github.com/urpagin/dynwall-setup/internal/identity"
	"github.com/urpagin/dynwall-setup/internal/platform"
	"github.com/urpagin/dynwall-setup/internal/prompt"
	"github.com/urpagin/dynwall-setup/internal/script"
	"github.com/urpagin/dynwall-setup/internal/source"
	"github.com/urpagin/dynwall-setup/internal/systemd"
)

// ErrNonInteractive is returned when there is neither a terminal nor an
// answers file to take the installer's questions.
var ErrNonInteractive = errors.New("stdin is not a terminal, pass --answers to install unattended")

const (
	askRelease  = "Go in the GitHub releases for this repo, right click on the right release file and copy the download link, paste it here"
	askEndpoint = "Provide the server endpoint URL (https://...)"
	askUser     = "Provide the NGINX username"
	askPassword = "Provide the NGINX password"
)

// Credentials authenticate the client against the wallpaper endpoint.
type Credentials struct {
	User     string
	Password string
}

// String never reveals the password.
func (c Credentials) String() string {
	return c.User + ":" + script.Redacted
}

// Plan records what an installation produced.
type Plan struct {
	Layout      Layout
	Binary      string
	ReleaseURL  string
	Endpoint    string
	Credentials Credentials
	UnitPath    string
}

// Installer performs one installation for one user.
type Installer struct {
	cfg     *config.Config
	user    *identity.User
	prompt  *prompt.Prompter
	answers *answers.File
	fetch   *fetch.Client
	runner  execx.Runner
	log     *logrus.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithAnswers takes every answer from a instead of prompting.
func WithAnswers(a *answers.File) Option {
	return func(in *Installer) {
		in.answers = a
	}
}

// WithFetchClient sets the client used to probe and download URLs.
func WithFetchClient(c *fetch.Client) Option {
	return func(in *Installer) {
		in.fetch = c
	}
}

// WithRunner sets the runner for external commands (useful for testing).
func WithRunner(r execx.Runner) Option {
	return func(in *Installer) {
		in.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(in *Installer) {
		in.log = l
	}
}

// New creates an Installer for u. Questions are asked through p unless an
// answers file is supplied.
func New(cfg *config.Config, u *identity.User, p *prompt.Prompter, opts ...Option) *Installer {
	in := &Installer{cfg: cfg, user: u, prompt: p}
	for _, opt := range opts {
		opt(in)
	}
	if in.log == nil {
		in.log = logrus.New()
		in.log.SetOutput(io.Discard)
	}
	if in.runner == nil {
		in.runner = execx.NewExec(in.log)
	}
	if in.fetch == nil {
		in.fetch = fetch.New(
			fetch.WithProbeTimeout(cfg.ProbeTimeout),
			fetch.WithDownloadTimeout(cfg.DownloadTimeout),
			fetch.WithProgress(p.Writer()),
			fetch.WithLogger(in.log),
		)
	}
	return in
}

// RequireInput fails with ErrNonInteractive when p is not a terminal and no
// answers file was given.
func RequireInput(p *prompt.Prompter, a *answers.File) error {
	if a == nil && !p.Interactive() {
		return ErrNonInteractive
	}
	return nil
}

// Run executes the installation. Any error leaves whatever was already
// created in place.
func (in *Installer) Run(ctx context.Context) (*Plan, error) {
	out := in.prompt.Writer()
	layout := NewLayout(in.user.HomeDir, in.cfg.InstallDirName, branding.ScriptName())
	plan := &Plan{Layout: layout, UnitPath: in.cfg.UnitPath()}

	if err := layout.Provision(); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Created directory '%s'.\n", layout.Root)
	in.step("provision").WithField("root", layout.Root).Info("install directory created")

	if in.cfg.Clone {
		if err := source.Clone(ctx, in.runner, in.cfg.RepoURL, layout.Source); err != nil {
			return nil, err
		}
		in.step("clone").WithField("repo", in.cfg.RepoURL).Info("source cloned")
	}

	if in.answers == nil && in.cfg.SuggestRelease {
		in.suggestRelease(ctx)
	}
	releaseURL, err := in.askURL(ctx, askRelease, in.answer(func(a *answers.File) string { return a.ReleaseURL }))
	if err != nil {
		return nil, fmt.Errorf("release URL: %w", err)
	}
	plan.ReleaseURL = releaseURL
	if in.cfg.MinRelease != "" {
		if err := fetch.CheckMinRelease(releaseURL, in.cfg.MinRelease); err != nil {
			return nil, err
		}
	}
	if name, err := fetch.FileName(releaseURL); err == nil && layout.Reserved(name) {
		return nil, fmt.Errorf("%w: %s", ErrReservedName, name)
	}

	binary, err := in.fetch.Download(ctx, releaseURL, layout.Root)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "File successfully downloaded to: %s\n", binary)
	if err := platform.MakeExecutable(binary); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Added execution permissions to the program binary.")
	plan.Binary = binary

	plan.Endpoint, err = in.askURL(ctx, askEndpoint, in.answer(func(a *answers.File) string { return a.Endpoint }))
	if err != nil {
		return nil, fmt.Errorf("endpoint URL: %w", err)
	}

	plan.Credentials, err = in.credentials()
	if err != nil {
		return nil, err
	}

	params := script.Params{
		Binary:    plan.Binary,
		Endpoint:  plan.Endpoint,
		Directory: layout.Wallpapers,
		User:      plan.Credentials.User,
		Password:  plan.Credentials.Password,
		Setter:    in.cfg.Setter,
	}
	if err := script.Write(layout.Script, params); err != nil {
		return nil, err
	}
	if preview, err := script.Preview(params); err == nil {
		fmt.Fprintf(out, "File content: \n\n%s\n", preview)
	}
	fmt.Fprintf(out, "Wrote script file at '%s'.\n", layout.Script)
	in.step("script").WithField("path", layout.Script).WithField("credentials", plan.Credentials.String()).Info("update script written")

	fmt.Fprintf(out, "Adding permissions for user '%s' to directory '%s'\n", in.user.Name, layout.Root)
	if err := platform.ChownTree(layout.Root, in.user.UID, in.user.GID); err != nil {
		return nil, err
	}

	gate := NewGate(in.runner, in.prompt, in.log)
	gate.Script = layout.Script
	gate.Dir = layout.Root
	gate.User = in.user
	gate.Display = in.cfg.Display
	if in.answers != nil {
		gate.Unattended = true
		gate.AutoConfirm = in.answers.ConfirmTestRun
	}
	if err := gate.Run(ctx); err != nil {
		return nil, err
	}
	in.step("gate").WithField("state", gate.State()).Info("test run confirmed")

	if err := in.registerService(ctx); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Service file created at %s\n", plan.UnitPath)
	return plan, nil
}

// UnitSpec returns the boot-time service definition for u's installation.
func UnitSpec(cfg *config.Config, u *identity.User) systemd.Spec {
	layout := NewLayout(u.HomeDir, cfg.InstallDirName, branding.ScriptName())
	return systemd.Spec{
		Description: branding.ServiceDescription(),
		Script:      layout.Script,
		WorkingDir:  layout.Root,
		User:        u.Name,
		Display:     cfg.Display,
		XAuthority:  xauthority(u),
	}
}

func (in *Installer) registerService(ctx context.Context) error {
	if err := systemd.WriteUnit(in.cfg.UnitPath(), UnitSpec(in.cfg, in.user)); err != nil {
		return err
	}
	if err := systemd.Register(ctx, in.runner, in.cfg.ServiceName); err != nil {
		return err
	}
	in.step("service").WithField("unit", in.cfg.ServiceName).Info("service enabled")
	return nil
}

// askURL takes preset or asks label, then validates the scheme and probes
// the URL. Validation failures are fatal, never re-asked.
func (in *Installer) askURL(ctx context.Context, label, preset string) (string, error) {
	url := preset
	if url == "" {
		var err error
		if url, err = in.prompt.Ask(label); err != nil {
			return "", err
		}
	}

	out := in.prompt.Writer()
	if err := fetch.ValidateScheme(url); err != nil {
		return "", err
	}
	fmt.Fprintln(out, "Checking provided URL...")
	status, err := in.fetch.Probe(ctx, url)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Server responded with status code: %d\nURL successfully validated.\n", status)
	return url, nil
}

// suggestRelease prints the download link of the latest release built for
// this machine. Failures only cost the hint.
func (in *Installer) suggestRelease(ctx context.Context) {
	rel, err := in.fetch.LatestRelease(ctx, in.cfg.GitHubRepo)
	if err != nil {
		in.step("release").WithError(err).Debug("latest release lookup failed")
		return
	}
	asset, err := fetch.SelectAsset(rel.Assets, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		in.step("release").WithError(err).Debug("no asset for this platform")
		return
	}
	fmt.Fprintf(in.prompt.Writer(), "Latest release %s for this machine:\n  %s\n\n", rel.TagName, asset.DownloadURL)
}

func (in *Installer) credentials() (Credentials, error) {
	if in.answers != nil {
		return Credentials{User: in.answers.User, Password: in.answers.Password}, nil
	}
	user, err := in.prompt.Ask(askUser)
	if err != nil {
		return Credentials{}, fmt.Errorf("username: %w", err)
	}
	password, err := in.prompt.AskSecret(askPassword)
	if err != nil {
		return Credentials{}, fmt.Errorf("password: %w", err)
	}
	return Credentials{User: user, Password: password}, nil
}

func (in *Installer) answer(pick func(*answers.File) string) string {
	if in.answers == nil {
		return ""
	}
	return pick(in.answers)
}

func (in *Installer) step(name string) *logrus.Entry {
	return in.log.WithField("step", name)
}
