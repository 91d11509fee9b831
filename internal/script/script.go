package script

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/alessio/shellescape"
	"github.com/hashicorp/go-multierror"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/platform"
)

// DefaultSetter is the wallpaper-setting command run over the downloaded images.
const DefaultSetter = "feh --bg-fill --randomize"

// Redacted replaces the password in previews.
const Redacted = "********"

//go:embed update_wallpapers.sh.tmpl
var rawTemplate string

var tmpl = template.Must(template.New("update_wallpapers.sh").Funcs(template.FuncMap{
	"quote":  shellescape.Quote,
	"setter": quoteFields,
}).Parse(rawTemplate))

// Params are the values baked into the script.
type Params struct {
	Binary    string // absolute path of the downloaded client
	Endpoint  string // wallpaper server URL
	Directory string // where images are saved
	User      string
	Password  string
	Setter    string // command line, split on whitespace; DefaultSetter when empty
}

type templateData struct {
	Params
	Generator string
}

// Validate rejects values that cannot be represented in a shell script.
func (p Params) Validate() error {
	var result *multierror.Error
	fields := []struct{ name, value string }{
		{"binary", p.Binary},
		{"endpoint", p.Endpoint},
		{"directory", p.Directory},
		{"user", p.User},
		{"password", p.Password},
	}
	for _, f := range fields {
		if f.value == "" {
			result = multierror.Append(result, fmt.Errorf("%s is empty", f.name))
		}
		if strings.ContainsRune(f.value, 0) {
			result = multierror.Append(result, fmt.Errorf("%s contains a NUL byte", f.name))
		}
	}
	if strings.ContainsRune(p.Setter, 0) {
		result = multierror.Append(result, fmt.Errorf("setter contains a NUL byte"))
	}
	return result.ErrorOrNil()
}

// Render returns the script text.
func Render(p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script parameters: %w", err)
	}
	if strings.TrimSpace(p.Setter) == "" {
		p.Setter = DefaultSetter
	}

	var buf bytes.Buffer
	data := templateData{Params: p, Generator: branding.CLIName()}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing script template: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview renders the script with the password redacted.
func Preview(p Params) ([]byte, error) {
	p.Password = Redacted
	return Render(p)
}

// Write renders the script to path, owner-only and executable. An existing
// file is replaced atomically.
func Write(path string, p Params) error {
	data, err := Render(p)
	if err != nil {
		return err
	}
	if err := platform.WriteFileAtomic(path, data, platform.PrivateExecPerm); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return nil
}

// quoteFields quotes each word of a command line separately.
func quoteFields(cmdline string) string {
	return shellescape.QuoteCommand(strings.Fields(cmdline))
}
