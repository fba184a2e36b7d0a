package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v in the selected format. text produces the plain text form.
func (a *App) render(v interface{}, text func() string) error {
	switch strings.ToLower(a.format) {
	case formatText, "":
		_, err := fmt.Fprint(a.stdout, text())
		return err
	case formatJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", a.format)
	}
}

func (a *App) checkFormat() error {
	switch strings.ToLower(a.format) {
	case formatText, formatJSON, formatYAML, "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", a.format)
	}
}
