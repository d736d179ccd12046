package changelog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// record is the structured form of an entry for json and yaml output
type record struct {
	Version string   `json:"version" yaml:"version"`
	Date    string   `json:"date" yaml:"date"`
	Entries []string `json:"entries" yaml:"entries"`
}

// Format renders the entry as markdown, json or yaml
func (e Entry) Format(format string) (string, error) {
	switch format {
	case "", "markdown", "md":
		return e.String(), nil
	case "json":
		return e.formatJSON()
	case "yaml", "yml":
		return e.formatYAML()
	default:
		return "", fmt.Errorf("unsupported changelog format: %s", format)
	}
}

func (e Entry) record() record {
	return record{Version: e.version, Date: e.date, Entries: e.Lines()}
}

// formatJSON formats the entry as JSON
func (e Entry) formatJSON() (string, error) {
	data, err := json.MarshalIndent(e.record(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatYAML formats the entry as YAML
func (e Entry) formatYAML() (string, error) {
	data, err := yaml.Marshal(e.record())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
