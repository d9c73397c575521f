// Package diff compares a locally authored stack definition against the
// stack's live state and renders the result as plain text, colored text, or
// HTML.
package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"sigs.k8s.io/yaml"
)

// Format selects a diff rendering.
type Format string

const (
	FormatText  Format = "text"
	FormatColor Format = "color"
	FormatHTML  Format = "html"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatColor, FormatHTML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown diff format %q (expected text, color, or html)", s)
	}
}

// View is one side of a comparison. A nil section is absent: absent sections
// on the planned side are not compared at all.
type View struct {
	Template   any
	Parameters map[string]string
	Tags       map[string]string
}

func (v View) empty() bool {
	return v.Template == nil && v.Parameters == nil && v.Tags == nil
}

// Section is the named unified diff of one view component.
type Section struct {
	Name    string
	Unified string
}

// Changed reports whether the section's serializations differ.
func (s Section) Changed() bool {
	return s.Unified != ""
}

// Compare serializes both sides of each section present in planned and
// returns the per-section unified diffs. An entirely absent planned view is
// a usage error, not an empty diff.
func Compare(current, planned View) ([]Section, error) {
	if planned.empty() {
		return nil, errors.New("nothing to diff: specify a template, parameters, or tags")
	}
	var sections []Section
	if planned.Template != nil {
		section, err := compareSection("template", current.Template, planned.Template)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if planned.Parameters != nil {
		section, err := compareSection("parameters", current.Parameters, planned.Parameters)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if planned.Tags != nil {
		section, err := compareSection("tags", current.Tags, planned.Tags)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func compareSection(name string, current, planned any) (Section, error) {
	currentText, err := canonical(current)
	if err != nil {
		return Section{}, fmt.Errorf("serialize current %s: %w", name, err)
	}
	plannedText, err := canonical(planned)
	if err != nil {
		return Section{}, fmt.Errorf("serialize planned %s: %w", name, err)
	}
	if currentText == plannedText {
		return Section{Name: name}, nil
	}
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(currentText),
		B:        difflib.SplitLines(plannedText),
		FromFile: "current/" + name,
		ToFile:   "planned/" + name,
		Context:  3,
	})
	if err != nil {
		return Section{}, fmt.Errorf("diff %s: %w", name, err)
	}
	return Section{Name: name, Unified: unified}, nil
}

// canonical pretty-prints a value as YAML with map keys sorted, so the diff
// is independent of input key order.
func canonical(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	// Marshalling routes through encoding/json, which sorts map keys.
	data, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render compares the views and renders the sections in the given format.
func Render(current, planned View, format Format) (string, error) {
	sections, err := Compare(current, planned)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatHTML:
		return renderHTML(sections)
	case FormatColor:
		return renderText(sections, true), nil
	default:
		return renderText(sections, false), nil
	}
}

func renderText(sections []Section, colored bool) string {
	var sb strings.Builder
	changes := 0
	for _, section := range sections {
		if !section.Changed() {
			continue
		}
		changes++
		sb.WriteString(section.Unified)
		sb.WriteString("\n")
	}
	if changes == 0 {
		return "No differences.\n"
	}
	out := sb.String()
	if colored && !color.NoColor {
		out = colorizeUnified(out)
	}
	return out
}

func colorizeUnified(unified string) string {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	meta := color.New(color.FgCyan)
	lines := strings.Split(unified, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			lines[i] = meta.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = added.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removed.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
