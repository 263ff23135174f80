package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/readability"
)

// Result is the output of a command.  Data is encoded for json and yaml
// output; Text renders the human form; Headers and Rows back the table form.
type Result struct {
	Data    interface{}
	Text    func(w *Writer)
	Headers []string
	Rows    [][]string
}

// Writer accumulates human-readable output and remembers the first write
// error.
type Writer struct {
	out io.Writer
	err error
}

// Line writes s followed by a newline.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.out, s)
}

// Linef formats and writes a line.
func (w *Writer) Linef(format string, args ...interface{}) {
	w.Line(fmt.Sprintf(format, args...))
}

// Heading writes a bold section title.
func (w *Writer) Heading(title string) {
	w.Line(color.New(color.Bold).Sprint(title))
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.Line("")
}

// PrintResult outputs r in the format selected by --output.
func PrintResult(cmd *cobra.Command, r Result) error {
	format := "json"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(out, r.Data)
	case "yaml":
		return printYAML(out, r.Data)
	case "table":
		if len(r.Headers) > 0 {
			_, err := fmt.Fprint(out, FormatTable(r.Headers, r.Rows))
			return err
		}
		return printText(out, r)
	default:
		return printText(out, r)
	}
}

func printJSON(out io.Writer, data interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(out io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func printText(out io.Writer, r Result) error {
	if r.Text == nil {
		return printJSON(out, r.Data)
	}
	w := &Writer{out: out}
	r.Text(w)
	return w.err
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// FormatTable renders headers and rows as a bordered table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

// scoreString renders a readability score with its label, colored by band.
func scoreString(score int) string {
	s := fmt.Sprintf("%d (%s)", score, readability.Label(score))
	switch {
	case score >= readability.ScoreReadable:
		return color.GreenString(s)
	case score >= readability.ScoreSomewhatReadable:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
