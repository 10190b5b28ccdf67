package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output.
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatTable is a rendered table.
	FormatTable OutputFormat = "table"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, table)", s)
	}
}

// DefaultFormat returns FormatTable when w is a terminal and FormatJSON
// otherwise, so piped output stays machine readable.
func DefaultFormat(w io.Writer) OutputFormat {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// Tabular is implemented by results that render as a table.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// RightAligned is optionally implemented by Tabular values to right-align
// numeric columns (zero-based indexes).
type RightAligned interface {
	RightAligned() []int
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// TableFormatter renders Tabular data with go-pretty. Other values fall back
// to text output.
type TableFormatter struct {
	Style table.Style
}

// Format renders data as a table.
func (f *TableFormatter) Format(data interface{}) ([]byte, error) {
	tab, ok := data.(Tabular)
	if !ok {
		return (&TextFormatter{}).Format(data)
	}
	return []byte(f.render(tab) + "\n"), nil
}

// FormatTo writes data to writer as a table.
func (f *TableFormatter) FormatTo(w io.Writer, data interface{}) error {
	out, err := f.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (f *TableFormatter) render(tab Tabular) string {
	headers := tab.Header()
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(f.Style)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range tab.Rows() {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	right := map[int]bool{}
	if ra, ok := tab.(RightAligned); ok {
		for _, i := range ra.RightAligned() {
			right[i] = true
		}
	}
	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatTable:
		return &TableFormatter{Style: table.StyleRounded}
	default:
		return &TextFormatter{}
	}
}
