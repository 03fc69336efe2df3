package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of diagnostic.
type Category string

const (
	CategoryStructure Category = "structure"
	CategoryRuntime   Category = "runtime"
	CategoryConfig    Category = "config"
	CategoryDocument  Category = "document"
	CategoryCLI       Category = "cli"
)

// Location represents a position inside a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ReactiveError is a coded diagnostic with optional location and hint.
type ReactiveError struct {
	// Code is a unique identifier (e.g., "W001").
	Code string

	// Category is the diagnostic type.
	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location is the source position the diagnostic refers to, if any.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactiveError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReactiveError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location and reads the surrounding lines.
func (e *ReactiveError) WithLocation(file string, line, column int) *ReactiveError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readExcerpt(file, line)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *ReactiveError) WithSuggestion(s string) *ReactiveError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *ReactiveError) WithDetail(d string) *ReactiveError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ReactiveError) Wrap(err error) *ReactiveError {
	e.Wrapped = err
	return e
}

// excerptRadius is how many lines on each side of a location are kept.
const excerptRadius = 2

// readExcerpt returns the lines of filename from line-excerptRadius to
// line+excerptRadius, clipped to the file.
func readExcerpt(filename string, line int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	first, last := excerptStart(line), line+excerptRadius
	var lines []string
	scanner := bufio.NewScanner(file)
	for n := 1; n <= last && scanner.Scan(); n++ {
		if n >= first {
			lines = append(lines, scanner.Text())
		}
	}
	return lines
}

func excerptStart(line int) int {
	return max(1, line-excerptRadius)
}

// New creates a ReactiveError from a registered code.
func New(code string) *ReactiveError {
	template, ok := registry[code]
	if !ok {
		return &ReactiveError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactiveError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates an uncoded ReactiveError with a formatted message.
func Newf(category Category, format string, args ...any) *ReactiveError {
	return &ReactiveError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under the given code.
// ReactiveError values are returned unchanged.
func FromError(err error, code string) *ReactiveError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReactiveError); ok {
		return re
	}
	return New(code).Wrap(err)
}

// Message returns the registered message for code, or "" if unknown.
func Message(code string) string {
	return registry[code].Message
}
