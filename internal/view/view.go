// Package view provides output formatting for md2conf commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ValidFormats returns the accepted --output values.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidateFormat checks an --output value. Empty selects the default table
// format.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range ValidFormats() {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q: must be one of %s", format, strings.Join(ValidFormats(), ", "))
}

// Renderer renders command output in a specific format.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a new renderer writing to stdout.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	if format == "" {
		format = FormatTable
	}
	return &Renderer{format: format, out: os.Stdout}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.out = w
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// RenderTable renders rows under the given headers. JSON output is a list of
// objects keyed by lower-cased header; plain output is tab separated without
// headers.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	switch r.format {
	case FormatJSON:
		r.renderTableAsJSON(headers, rows)
		return
	case FormatPlain:
		for _, row := range rows {
			fmt.Fprintln(r.out, strings.Join(row, "\t"))
		}
		return
	}

	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(r.out, strings.Join(headers, "  "))
	for _, row := range rows {
		fmt.Fprintln(r.out, strings.Join(row, "  "))
	}
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.out, string(data))
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.out, text)
}

// RenderKeyValue renders a key-value pair.
func (r *Renderer) RenderKeyValue(key, value string) {
	if r.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{key: value})
		fmt.Fprintln(r.out, string(data))
		return
	}
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(r.out, "%s: ", key)
	fmt.Fprintln(r.out, value)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	_, _ = color.New(color.FgGreen).Fprintln(r.out, "✓ "+msg)
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(r.out, "! "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	_, _ = color.New(color.FgRed).Fprintln(r.out, "✗ "+msg)
}
