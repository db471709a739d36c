// Package output selects the output destination and format for a run and
// renders results through internal/output.
package output

import (
	"bytes"
	"io"
	"os"

	"github.com/panbanda/gdcf/internal/output"
)

// Format represents output format.
type Format = output.Format

// Supported formats (re-exported for convenience).
const (
	FormatText     = output.FormatText
	FormatJSON     = output.FormatJSON
	FormatMarkdown = output.FormatMarkdown
	FormatTOON     = output.FormatTOON
)

// Service handles output formatting.
type Service struct {
	format    Format
	writer    io.Writer
	colored   bool
	filePath  string
	formatter *output.Formatter
}

// Option configures a Service.
type Option func(*Service)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) Option {
	return func(s *Service) {
		s.colored = enabled
	}
}

// WithFile sets output to a file.
func WithFile(path string) Option {
	return func(s *Service) {
		s.filePath = path
	}
}

// New creates a new output service.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		format:  FormatText,
		writer:  os.Stdout,
		colored: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.filePath != "" {
		f, err := output.NewFormatter(s.format, s.filePath, false)
		if err != nil {
			return nil, err
		}
		s.formatter = f
		s.writer = f.Writer()
		s.colored = false
		return s, nil
	}

	s.formatter = output.NewWriterFormatter(s.format, s.writer, s.colored)
	return s, nil
}

// Close closes the output service and any open files.
func (s *Service) Close() error {
	return s.formatter.Close()
}

// Format returns the current format.
func (s *Service) Format() Format {
	return s.format
}

// Writer returns the current writer.
func (s *Service) Writer() io.Writer {
	return s.writer
}

// Colored returns whether output should be colored.
func (s *Service) Colored() bool {
	return s.colored
}

// Formatter returns the formatter used by Output, for status messages.
func (s *Service) Formatter() *output.Formatter {
	return s.formatter
}

// Output writes data to the writer in the service's format.
func (s *Service) Output(data any) error {
	return s.formatter.Output(data)
}

// FormatData renders data in format f without color and returns the text.
func FormatData(f Format, data any) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(f, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseFormat parses a format string into a Format.
func ParseFormat(s string) (Format, error) {
	return output.ParseFormat(s)
}
