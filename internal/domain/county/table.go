// Package county provides the read-only county code lookup used for
// multiplier checks and reporting.
package county

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps a two-letter county code to its country/region name.
// A nil *Table knows no codes and is treated as "no table configured".
type Table struct {
	names map[string]string
}

// New builds a table from code -> name pairs.
func New(codes map[string]string) *Table {
	t := &Table{names: make(map[string]string, len(codes))}
	for code, name := range codes {
		t.names[strings.ToUpper(strings.TrimSpace(code))] = name
	}
	return t
}

// Name returns the country/region name for code.
func (t *Table) Name(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	n, ok := t.names[strings.ToUpper(code)]
	return n, ok
}

// Known reports whether code is in the table.
func (t *Table) Known(code string) bool {
	_, ok := t.Name(code)
	return ok
}

// Configured reports whether the table holds any codes.
func (t *Table) Configured() bool { return t != nil && len(t.names) > 0 }

// Len returns the number of codes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Codes returns all codes in sorted order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.names))
	for c := range t.names {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Decode reads a table in either of two shapes (YAML or JSON):
//
//	code: name              # flat mapping
//	name: [code, code, ...] # country -> county codes
func Decode(r io.Reader) (*Table, error) {
	var raw map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return New(nil), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	codes := make(map[string]string)
	for key, node := range raw {
		switch node.Kind {
		case yaml.ScalarNode:
			codes[key] = node.Value
		case yaml.SequenceNode:
			var list []string
			if err := node.Decode(&list); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrDecode, key, err)
			}
			for _, code := range list {
				codes[code] = key
			}
		default:
			return nil, fmt.Errorf("%w: %s: unsupported value", ErrDecode, key)
		}
	}
	return New(codes), nil
}

// Load reads a table file. An empty path yields an unconfigured table.
func Load(path string) (*Table, error) {
	if path == "" {
		return New(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
