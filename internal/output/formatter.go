package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned when a format name matches no registered formatter.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(r *Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
	// Extension is the file extension used when the output is written to disk.
	Extension() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID  string
	Ext string
	F   func(*Report) ([]byte, error)
}

func (ff FormatterFunc) Format(r *Report) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                     { return ff.ID }
func (ff FormatterFunc) Extension() string                { return ff.Ext }

// WriteFormatted runs a formatter and writes the output into dir, named after
// the return and the report's generation time. It returns the written path.
func WriteFormatted(f Formatter, r *Report, dir string) (string, error) {
	data, err := f.Format(r)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	name := "tax_report_" + r.slug()
	// Formatters sharing an extension get their name in the file name.
	if NormalizeFormatName(f.Extension()) != f.Name() {
		name += "_" + f.Name()
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, r.GeneratedAt.Format("20060102_150405"), f.Extension()))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	JSONFormatter{},
	YAMLFormatter{},
	PDFFormatter{},
}

// GetFormatterByName fetches a registered formatter, resolving aliases.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// LookupFormatter is GetFormatterByName with an ErrUnsupportedFormat error
// listing the valid names.
func LookupFormatter(name string) (Formatter, error) {
	if f := GetFormatterByName(name); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, name,
		strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"":             "console",
	"text":         "console",
	"txt":          "console",
	"csv-summary":  "csv",
	"csv-detailed": "detailed-csv",
	"brackets":     "detailed-csv",
	"json-pretty":  "json",
	"yml":          "yaml",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
