package message

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presentation is how a state or notification-type label is rendered:
// an emoji glyph and an optional HTML color hint.
type Presentation struct {
	Emoji string `yaml:"emoji"`
	Color string `yaml:"color,omitempty"`
}

// defaultPresentation is used for any label the table does not know.
// Formatting never fails on an unrecognized state.
var defaultPresentation = Presentation{Emoji: "ℹ️"}

// builtinStates maps CheckMK short states and notification types to
// their presentation.
var builtinStates = map[string]Presentation{
	// Service states
	"OK":      {Emoji: "✅", Color: "#00cc00"},
	"WARN":    {Emoji: "⚠️", Color: "#ff9900"},
	"CRIT":    {Emoji: "🚨", Color: "#cc0000"},
	"UNKNOWN": {Emoji: "❔", Color: "#888888"},

	// Host states
	"UP":      {Emoji: "✅", Color: "#00cc00"},
	"DOWN":    {Emoji: "🚨", Color: "#cc0000"},
	"UNREACH": {Emoji: "❔", Color: "#888888"},

	// Notification types
	"PROBLEM":         {Emoji: "🚨", Color: "#cc0000"},
	"RECOVERY":        {Emoji: "✅", Color: "#00cc00"},
	"ACKNOWLEDGEMENT": {Emoji: "👍"},
	"FLAPPING":        {Emoji: "🔁", Color: "#ff9900"},
	"DOWNTIME":        {Emoji: "🔧"},
}

// Table resolves state labels to presentations.
type Table struct {
	states map[string]Presentation
}

// DefaultTable returns the built-in state table.
func DefaultTable() *Table {
	states := make(map[string]Presentation, len(builtinStates))
	for k, v := range builtinStates {
		states[k] = v
	}
	return &Table{states: states}
}

// LoadTable reads a YAML file of state overrides and merges it over the
// built-in table. The file maps labels to {emoji, color} pairs; labels
// not present in the file keep their defaults.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read states file %s: %w", path, err)
	}

	var overrides map[string]Presentation
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse states file %s: %w", path, err)
	}

	t := DefaultTable()
	for label, p := range overrides {
		if p.Emoji == "" {
			return nil, fmt.Errorf("states file %s: label %q has no emoji", path, label)
		}
		t.states[label] = p
	}
	return t, nil
}

// Lookup returns the presentation for a state label, falling back to a
// neutral default for labels the table does not know.
func (t *Table) Lookup(label string) Presentation {
	if p, ok := t.states[label]; ok {
		return p
	}
	return defaultPresentation
}
