// Package search defines the module-path model shared by the resolver
// and its configuration layer: tagged search-path entries
// and dotted module names.
package search

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind tags a search path with its role in the resolution order.
type Kind int

const (
	ExtraPath Kind = iota
	FirstParty
	Editable
	SitePackages
	StdlibVendored
	StdlibCustom
	StdlibReal
)

var kindNames = map[Kind]string{
	ExtraPath:      "extra-path",
	FirstParty:     "first-party",
	Editable:       "editable",
	SitePackages:   "site-packages",
	StdlibVendored: "stdlib-vendored",
	StdlibCustom:   "stdlib-custom",
	StdlibReal:     "stdlib-real",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Path is one search-path entry: a Kind plus a filesystem root. A
// StdlibVendored entry carries an empty Root — it is the marker for
// the bundled archive, which has its own filesystem.
type Path struct {
	Kind Kind
	Root string
}

// IsStdlib reports whether this entry serves standard-library modules,
// which are excluded from legacy-namespace-package detection and from stub-package shadowing.
func (p Path) IsStdlib() bool {
	return p.Kind == StdlibVendored || p.Kind == StdlibCustom || p.Kind == StdlibReal
}

func (p Path) String() string {
	if p.Kind == StdlibVendored && p.Root == "" {
		return "stdlib-vendored:<archive>"
	}
	return p.Kind.String() + ":" + p.Root
}

// ErrInvalidModuleName is returned by ParseModuleName for names that
// are empty or contain a non-identifier component.
var ErrInvalidModuleName = errors.New("search: invalid module name")

// ModuleName is a non-empty dotted identifier sequence.
type ModuleName struct {
	parts []string
}

// ParseModuleName validates and splits a dotted module name.
func ParseModuleName(name string) (ModuleName, error) {
	if name == "" {
		return ModuleName{}, ErrInvalidModuleName
	}
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if !isIdentifier(part) {
			return ModuleName{}, fmt.Errorf("%w: %q", ErrInvalidModuleName, name)
		}
	}
	return ModuleName{parts: parts}, nil
}

// MustModuleName is ParseModuleName for test fixtures and constants
// known to be valid.
func MustModuleName(name string) ModuleName {
	m, err := ParseModuleName(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Components returns the dotted components in order. The caller must
// not mutate the returned slice.
func (m ModuleName) Components() []string {
	return m.parts
}

// Parent returns all components but the last; ok is false for a
// single-component name.
func (m ModuleName) Parent() (ModuleName, bool) {
	if len(m.parts) <= 1 {
		return ModuleName{}, false
	}
	return ModuleName{parts: m.parts[:len(m.parts)-1]}, true
}

// Final returns the last component.
func (m ModuleName) Final() string {
	return m.parts[len(m.parts)-1]
}

// Head returns the first component.
func (m ModuleName) Head() string {
	return m.parts[0]
}

// Len returns the number of components.
func (m ModuleName) Len() int {
	return len(m.parts)
}

func (m ModuleName) String() string {
	return strings.Join(m.parts, ".")
}

// IsZero reports whether m is the invalid zero value.
func (m ModuleName) IsZero() bool {
	return len(m.parts) == 0
}

// WithStubSuffix returns the name with its head component replaced by
// the `head-stubs` form used by stub-only distributions.
// Stub package directories are not importable module names themselves,
// so the result is returned as raw components.
func (m ModuleName) WithStubSuffix() []string {
	out := make([]string, len(m.parts))
	copy(out, m.parts)
	out[0] = out[0] + "-stubs"
	return out
}

// FileToModuleName recovers the module name a file provides relative
// to its search root: `root/a/b/c.py` -> `a.b.c`, `root/a/__init__.py`
// -> `a`. ok is false when the path
// is outside root or does not map onto a valid name.
func FileToModuleName(root, filePath string) (ModuleName, bool) {
	root = strings.TrimSuffix(root, "/")
	filePath = strings.TrimPrefix(filePath, "./")
	if root != "" && !strings.HasPrefix(filePath, root+"/") {
		return ModuleName{}, false
	}
	rel := filePath
	if root != "" {
		rel = filePath[len(root)+1:]
	}
	rel = strings.TrimSuffix(rel, ".pyi")
	rel = strings.TrimSuffix(rel, ".py")
	parts := strings.Split(rel, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return ModuleName{}, false
	}
	for _, part := range parts {
		if !isIdentifier(part) {
			return ModuleName{}, false
		}
	}
	return ModuleName{parts: parts}, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
