package answers

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// File holds pre-supplied answers to every installer question.
type File struct {
	ReleaseURL string `yaml:"release_url" json:"release_url"`
	Endpoint   string `yaml:"endpoint" json:"endpoint"`
	User       string `yaml:"user" json:"user"`
	Password   string `yaml:"password" json:"password"`
	// ConfirmTestRun accepts the test run without asking, provided the
	// script exits successfully.
	ConfirmTestRun bool `yaml:"confirm_test_run,omitempty" json:"confirm_test_run,omitempty"`
}

// InvalidError reports schema violations in an answers file.
type InvalidError struct {
	Path   string
	Issues []Issue
}

func (e *InvalidError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := issue.Path
		if loc == "" {
			loc = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, issue.Message))
	}
	return fmt.Sprintf("invalid answers file %s: %s", e.Path, strings.Join(parts, "; "))
}

// Load reads, validates and parses an answers file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse validates and decodes answers file content. name is used in errors.
func Parse(name string, data []byte) (*File, error) {
	issues, err := check(data)
	if err != nil {
		return nil, fmt.Errorf("parsing answers file %s: %w", name, err)
	}
	if len(issues) > 0 {
		return nil, &InvalidError{Path: name, Issues: issues}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing answers file %s: %w", name, err)
	}

	f.ReleaseURL = strings.TrimSpace(f.ReleaseURL)
	f.Endpoint = strings.TrimSpace(f.Endpoint)
	f.User = strings.TrimSpace(f.User)
	f.Password = strings.TrimSpace(f.Password)
	return &f, nil
}
