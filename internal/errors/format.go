package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiWhite  = "\033[37m"
	ansiGray   = "\033[90m"
)

// detailWidth is the column at which details are wrapped.
const detailWidth = 70

var colorEnabled = true

// DisableColors makes every formatter emit plain text.
func DisableColors() {
	colorEnabled = false
}

// EnableColors turns ANSI output back on.
func EnableColors() {
	colorEnabled = true
}

func paint(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + ansiReset
}

func red(text string) string    { return paint(ansiRed, text) }
func yellow(text string) string { return paint(ansiYellow, text) }
func cyan(text string) string   { return paint(ansiCyan, text) }
func white(text string) string  { return paint(ansiWhite, text) }
func gray(text string) string   { return paint(ansiGray, text) }
func bold(text string) string   { return paint(ansiBold, text) }

// Format renders the diagnostic for a terminal: a WARNING or ERROR
// header, the source excerpt with a caret under the column, then the
// detail, cause and hint.
func (e *ReactiveError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeader(&b)
	e.writeExcerpt(&b)

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, detailWidth) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", gray("Cause: "), e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", cyan("Hint: "), e.Suggestion)
	}
	return b.String()
}

func (e *ReactiveError) writeHeader(b *strings.Builder) {
	label := red(bold("ERROR"))
	if e.Category == CategoryStructure {
		label = yellow(bold("WARNING"))
	}
	sep := ": "
	if e.Code != "" {
		sep = " " + e.Code + ": "
	}
	fmt.Fprintf(b, "%s%s%s\n\n", label, white(bold(sep)), white(e.Message))
}

func (e *ReactiveError) writeExcerpt(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	fmt.Fprintf(b, "  %s\n\n", cyan(e.Location.String()))
	if len(e.Context) == 0 {
		return
	}

	first := excerptStart(e.Location.Line)
	for i, line := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gray(" │ "), line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", red("→ "), n, gray(" │ "), line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", gray("│ "), strings.Repeat(" ", e.Location.Column-1), red("^"))
		}
	}
	b.WriteString("\n")
}

// FormatCompact renders the diagnostic on one line, compiler style:
// file:line:col: CODE: message.
func (e *ReactiveError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonDiagnostic struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON renders the diagnostic as a JSON object for tooling.
func (e *ReactiveError) FormatJSON() string {
	d := jsonDiagnostic{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		d.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		d.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText breaks text into lines of at most width columns. A word longer
// than width gets a line of its own.
func wrapText(text string, width int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes err to w. A ReactiveError anywhere in the chain is
// printed with Format, preceded by the outer message when err wraps it.
func FprintError(w io.Writer, err error) {
	var re *ReactiveError
	if !stderrors.As(err, &re) {
		fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
		return
	}
	if outer := err.Error(); outer != re.Error() {
		fmt.Fprintf(w, "\n%s\n", gray(strings.TrimSuffix(outer, ": "+re.Error())))
	}
	fmt.Fprint(w, re.Format())
}
