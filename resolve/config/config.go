// Package config validates user-supplied search-path roots and
// computes the static search order the resolver walks.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/resolve/pth"
	"github.com/Tangerg/pyflow/resolve/search"
)

// MisconfigurationMode selects what happens to malformed paths during
// validation: skipped, or escalated to a validation error.
type MisconfigurationMode int

const (
	UseDefault MisconfigurationMode = iota
	Strict
)

// UnmarshalYAML accepts the two spellings used in settings files.
func (m *MisconfigurationMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "", "use-default", "use_default", "default":
		*m = UseDefault
	case "strict":
		*m = Strict
	default:
		return fmt.Errorf("config: unknown misconfiguration mode %q", s)
	}
	return nil
}

// SearchPathSettings is the user-facing configuration record. Zero values mean "not configured".
type SearchPathSettings struct {
	ExtraPaths        []string             `yaml:"extra_paths"`
	SrcRoots          []string             `yaml:"src_roots"`
	CustomTypeshed    string               `yaml:"custom_typeshed"`
	SitePackagesPaths []string             `yaml:"site_packages_paths"`
	RealStdlibPath    string               `yaml:"real_stdlib_path"`
	Misconfiguration  MisconfigurationMode `yaml:"misconfiguration_mode"`
}

// Load reads settings from a YAML document.
func Load(r io.Reader) (*SearchPathSettings, error) {
	var s SearchPathSettings
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode settings: %w", err)
	}
	return &s, nil
}

// ErrInvalidSearchPath is returned (wrapped) from Validate in Strict
// mode when a configured path does not exist or is not a directory.
// It is never returned from resolver queries.
var ErrInvalidSearchPath = errors.New("config: invalid search path")

// Validated holds the settings after path validation. Editable-install
// discovery is deliberately NOT folded in here: `.pth` contents are
// read per-query so the resolver can register them as cache
// dependencies.
type Validated struct {
	ExtraPaths     []search.Path
	SrcRoots       []search.Path
	CustomTypeshed string // "" when the vendored archive is in use
	RealStdlibPath string // "" when no on-disk stdlib is configured
	SitePackages   []search.Path
}

// Validate checks every configured root against fs, applying the
// misconfiguration mode.
func (s *SearchPathSettings) Validate(fs fsabs.FS) (*Validated, error) {
	v := &Validated{}

	keep := func(raw string, kind search.Kind, dst *[]search.Path) error {
		root := strings.TrimSuffix(raw, "/")
		if !fs.IsDirectory(root) {
			if s.Misconfiguration == Strict {
				return fmt.Errorf("%w: %s %q is not a directory", ErrInvalidSearchPath, kind, raw)
			}
			return nil
		}
		*dst = append(*dst, search.Path{Kind: kind, Root: root})
		return nil
	}

	for _, p := range s.ExtraPaths {
		if err := keep(p, search.ExtraPath, &v.ExtraPaths); err != nil {
			return nil, err
		}
	}
	for _, p := range s.SrcRoots {
		if err := keep(p, search.FirstParty, &v.SrcRoots); err != nil {
			return nil, err
		}
	}
	for _, p := range s.SitePackagesPaths {
		if err := keep(p, search.SitePackages, &v.SitePackages); err != nil {
			return nil, err
		}
	}

	if s.CustomTypeshed != "" {
		root := strings.TrimSuffix(s.CustomTypeshed, "/")
		if fs.IsDirectory(root) {
			v.CustomTypeshed = root
		} else if s.Misconfiguration == Strict {
			return nil, fmt.Errorf("%w: custom typeshed %q is not a directory", ErrInvalidSearchPath, s.CustomTypeshed)
		}
	}
	if s.RealStdlibPath != "" {
		root := strings.TrimSuffix(s.RealStdlibPath, "/")
		if fs.IsDirectory(root) {
			v.RealStdlibPath = root
		} else if s.Misconfiguration == Strict {
			return nil, fmt.Errorf("%w: real stdlib path %q is not a directory", ErrInvalidSearchPath, s.RealStdlibPath)
		}
	}
	return v, nil
}

// Stdlib returns the stdlib search-path entry for the given stub
// preference: the custom typeshed if configured, else the vendored
// archive when stubs are wanted, else the real on-disk stdlib.
func (v *Validated) Stdlib(stubsAllowed bool) search.Path {
	if v.CustomTypeshed != "" {
		return search.Path{Kind: search.StdlibCustom, Root: v.CustomTypeshed}
	}
	if stubsAllowed || v.RealStdlibPath == "" {
		return search.Path{Kind: search.StdlibVendored}
	}
	return search.Path{Kind: search.StdlibReal, Root: v.RealStdlibPath}
}

// Order assembles the full static search order: extra
// paths, first-party roots, the stdlib entry, then each site-packages
// path followed immediately by its editable-install paths. Duplicates
// by canonical path are removed keeping the first occurrence, and
// non-stdlib entries that coincide with the stdlib path are dropped to
// avoid double-listing. fs is consulted for `.pth` discovery and
// canonicalization; passing the resolver's recording filesystem
// registers the `.pth` directory listings, file reads and editable
// directory probes as cache dependencies, while canonicalization is not
// recorded.
func (v *Validated) Order(fs fsabs.FS, stdlib search.Path) []search.Path {
	var raw []search.Path
	raw = append(raw, v.ExtraPaths...)
	raw = append(raw, v.SrcRoots...)
	raw = append(raw, stdlib)
	for _, site := range v.SitePackages {
		raw = append(raw, site)
		for _, editable := range pth.Discover(fs, site.Root) {
			if fs.IsDirectory(editable) {
				raw = append(raw, search.Path{Kind: search.Editable, Root: editable})
			}
		}
	}

	canon := func(p search.Path) string {
		if p.Kind == search.StdlibVendored && p.Root == "" {
			return "\x00vendored-stdlib"
		}
		if c, err := fs.CanonicalizePath(p.Root); err == nil {
			return c
		}
		return p.Root
	}

	stdlibKey := canon(stdlib)
	ordered := orderedmap.New[string, search.Path]()
	for _, p := range raw {
		key := canon(p)
		if key == stdlibKey && !p.IsStdlib() {
			continue
		}
		if _, exists := ordered.Get(key); exists {
			continue
		}
		ordered.Set(key, p)
	}

	out := make([]search.Path, 0, ordered.Len())
	for pair := ordered.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
