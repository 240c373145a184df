package template

import (
	"encoding/json"
	"regexp"
)

// FormatVersion is the CloudFormation template format version stamped on
// every rendered document.
const FormatVersion = "2010-09-09"

var whitespaceRuns = regexp.MustCompile(`\s+`)

type document struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion"`
	Description              string               `json:"Description,omitempty"`
	Parameters               map[string]Parameter `json:"Parameters,omitempty"`
	Mappings                 map[string]Mapping   `json:"Mappings,omitempty"`
	Resources                map[string]Resource  `json:"Resources"`
	Outputs                  map[string]Output    `json:"Outputs,omitempty"`
}

// MarshalJSON renders the template as a CloudFormation JSON document.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              t.Description,
		Parameters:               t.Parameters,
		Mappings:                 t.Mappings,
		Resources:                t.Resources,
		Outputs:                  t.Outputs,
	})
}

// Render serializes the template to indented JSON. The document is re-parsed
// into plain maps before the final encode so nested keys come out in a
// stable sorted order regardless of how the graph was built.
func (t *Template) Render() ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "    ")
}

// CollapseWhitespace replaces every run of whitespace in a rendered template
// body with a single space. Bodies are collapsed before upload.
func CollapseWhitespace(body []byte) []byte {
	return whitespaceRuns.ReplaceAll(body, []byte(" "))
}
