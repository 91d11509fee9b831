package answers

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaName = "answers.schema.json"

//go:embed schema/answers.schema.json
var schemaJSON []byte

var english = message.NewPrinter(language.English)

var answersSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", schemaName, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaName, doc); err != nil {
		return nil, fmt.Errorf("loading %s: %w", schemaName, err)
	}
	s, err := c.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", schemaName, err)
	}
	return s, nil
})

// Issue is one schema violation in an answers file.
type Issue struct {
	Path    string // JSON pointer to the offending value, "" for the document
	Keyword string // failing schema keyword, e.g. "required"
	Message string
}

// check returns the schema violations of YAML answers content. The error is
// reserved for content that is not YAML at all.
func check(data []byte) ([]Issue, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	// The validator wants JSON-decoded values, not yaml.v3's.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	schema, err := answersSchema()
	if err != nil {
		return nil, err
	}
	err = schema.Validate(inst)
	var verr *jsonschema.ValidationError
	switch {
	case err == nil:
		return nil, nil
	case !errors.As(err, &verr):
		return nil, err
	}

	issues := leafIssues(verr, nil)
	if len(issues) == 0 {
		issues = []Issue{{Message: verr.Error()}}
	}
	return issues, nil
}

func leafIssues(ve *jsonschema.ValidationError, issues []Issue) []Issue {
	for _, cause := range ve.Causes {
		issues = leafIssues(cause, issues)
	}
	if len(ve.Causes) > 0 || ve.ErrorKind == nil {
		return issues
	}

	issue := Issue{Message: ve.ErrorKind.LocalizedString(english)}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		issue.Keyword = kw[len(kw)-1]
	}
	// A pattern message quotes the value, which for the password is a secret.
	if issue.Path == "/password" && issue.Keyword == "pattern" {
		issue.Message = "password must not be blank"
	}
	return append(issues, issue)
}
