package app

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/edctrack/exposure/internal/errors"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.ValidationError("output", "output must be json or yaml, got "+s)
	}
}

// Render writes v as indented JSON or as YAML. YAML output keeps the JSON
// field names and ordering.
func Render(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return renderError(err, format)
	}

	if format != FormatYAML {
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return renderError(err, format)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return renderError(err, format)
	}
	if err := enc.Close(); err != nil {
		return renderError(err, format)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// blockStyle drops the flow and quoting styles inherited from the JSON source.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func renderError(err error, format string) error {
	return errors.New(err).
		Component("app").
		Category(errors.CategoryProcessing).
		Context("format", format).
		Build()
}
