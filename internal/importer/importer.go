// Package importer reads OCR'd passbook CSV files into transactions.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// Metadata is account identity found in the file itself.
type Metadata struct {
	Bank   string
	Branch string
	Number string
}

// Statement is one parsed passbook file. Rows carry date, description,
// amounts and balance only; account identity is assigned by the caller.
type Statement struct {
	Meta Metadata
	Rows []model.Transaction
}

// Parser converts a passbook CSV into a Statement.
type Parser interface {
	Parse(r io.Reader) (*Statement, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultFormat is the format used when none is given.
const DefaultFormat = "passbook"

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PassbookParser{})
	return r
}

// ParseFile parses the CSV file at path with the named format.
func (r *Registry) ParseFile(format, path string) (*Statement, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("%s: not a CSV file", path)
	}
	if format == "" {
		format = DefaultFormat
	}
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown import format %q (known: %s)", format, strings.Join(r.Formats(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	st, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return st, nil
}
