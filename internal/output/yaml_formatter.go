package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter serializes the report as YAML, in the same layout the rules
// and return files use.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string      { return "yaml" }
func (y YAMLFormatter) Extension() string { return "yaml" }

func (y YAMLFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
