// Package resolve implements the module resolver: given an
// importing file and a fully-qualified dotted module name, it
// determines which file on disk (or in the vendored stub archive)
// provides that module, obeying the target language's import rules —
// namespace packages, stub files, editable installs, and version-gated
// standard-library modules. Absence is a normal outcome (nil, false),
// never an error.
package resolve

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/pkg/sets"
	"github.com/Tangerg/pyflow/resolve/config"
	"github.com/Tangerg/pyflow/resolve/search"
)

// Mode governs which backing stores are consulted and which modules
// may be shadowed.
type Mode int

const (
	// StubsAllowed prefers .pyi over .py and uses the vendored stdlib
	// archive.
	StubsAllowed Mode = iota
	// StubsNotAllowed ignores .pyi and uses the real on-disk stdlib if
	// configured.
	StubsNotAllowed
	// StubsNotAllowedSomeShadowingAllowed additionally allows the
	// bootstrap-critical set to be shadowed by first-party files.
	StubsNotAllowedSomeShadowingAllowed
)

func (m Mode) stubsAllowed() bool { return m == StubsAllowed }

// ModuleKind distinguishes the two file-backed resolution shapes.
type ModuleKind int

const (
	SingleFileModule ModuleKind = iota
	PackageModule
)

// ResolvedModule is a successful resolution: either a file-backed
// module or a namespace package with no backing file.
type ResolvedModule struct {
	Name        search.ModuleName
	Kind        ModuleKind
	SearchPath  search.Path
	File        string // empty for a namespace package
	IsNamespace bool
	PyTyped     PyTyped
}

// Options configures a Resolver. FS and Settings are required;
// Vendored backs StdlibVendored search paths and may be nil when a
// custom or real stdlib is configured.
type Options struct {
	FS            fsabs.FS
	Vendored      fsabs.FS
	Settings      *config.Validated
	Logger        logrus.FieldLogger
	Metrics       *Metrics
	PythonVersion string // e.g. "3.12"; gates the built-in module set
}

// Resolver answers name -> file queries with memoization keyed on
// (module name, mode) and dependency-tracked invalidation.
// It is safe for concurrent use; concurrent queries for the same key
// share one filesystem walk via singleflight.
type Resolver struct {
	opts     Options
	builtins sets.HashSet[string]
	logger   logrus.FieldLogger

	mu        sync.Mutex
	cache     map[cacheKey]*cacheEntry
	desperate map[string]*cacheEntry

	group singleflight.Group
}

type cacheKey struct {
	name string
	mode Mode
}

type cacheEntry struct {
	result *ResolvedModule
	deps   depSet
}

// New builds a Resolver from opts.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Resolver{
		opts:      opts,
		builtins:  builtinsFor(opts.PythonVersion),
		logger:    logger.WithField("component", "resolver"),
		cache:     map[cacheKey]*cacheEntry{},
		desperate: map[string]*cacheEntry{},
	}
}

// Resolve looks up name for importingFile under mode. ok is false when
// no module provides the name; that is a normal outcome, not an error.
func (r *Resolver) Resolve(importingFile, name string, mode Mode) (*ResolvedModule, bool) {
	moduleName, err := search.ParseModuleName(name)
	if err != nil {
		return nil, false
	}

	key := cacheKey{name: name, mode: mode}
	r.mu.Lock()
	if entry, ok := r.cache[key]; ok {
		r.mu.Unlock()
		r.opts.Metrics.hit()
		if entry.result == nil {
			return r.resolveDesperate(importingFile, moduleName, mode)
		}
		return entry.result, true
	}
	r.mu.Unlock()

	v, _, _ := r.group.Do(fmt.Sprintf("%s\x00%d", name, mode), func() (any, error) {
		deps := newDepSet()
		rfs := newRecordingFS(r.opts.FS, deps)
		result := r.resolveStandard(rfs, moduleName, mode)
		r.mu.Lock()
		r.cache[key] = &cacheEntry{result: result, deps: deps}
		r.mu.Unlock()
		r.opts.Metrics.miss()
		return result, nil
	})

	if result, _ := v.(*ResolvedModule); result != nil {
		return result, true
	}
	return r.resolveDesperate(importingFile, moduleName, mode)
}

// NotifyChanged invalidates every cached query whose dependency set is
// affected by one of the changed paths. Changes at paths a query never
// consulted leave it untouched.
func (r *Resolver) NotifyChanged(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range paths {
		for key, entry := range r.cache {
			if entry.deps.affectedBy(path) {
				delete(r.cache, key)
			}
		}
		for key, entry := range r.desperate {
			if entry.deps.affectedBy(path) {
				delete(r.desperate, key)
			}
		}
	}
}

// fsFor selects the filesystem backing one search path: the vendored
// archive for the StdlibVendored marker, the recording disk filesystem
// for everything else. Archive contents are immutable, so its reads
// are not dependency-tracked.
func (r *Resolver) fsFor(sp search.Path, rfs fsabs.FS) fsabs.FS {
	if sp.Kind == search.StdlibVendored && sp.Root == "" {
		if r.opts.Vendored != nil {
			return r.opts.Vendored
		}
		return fsabs.NewMem()
	}
	return rfs
}

// resolveStandard runs the prioritized search over the
// static search order.
func (r *Resolver) resolveStandard(rfs fsabs.FS, name search.ModuleName, mode Mode) *ResolvedModule {
	stdlib := r.opts.Settings.Stdlib(mode.stubsAllowed())
	order := r.opts.Settings.Order(rfs, stdlib)

	if r.isNonShadowable(name.Head(), mode) {
		// Shadowable-by-nobody modules resolve starting at the stdlib
		// entry; extra paths, first-party roots, and editables are
		// skipped.
		order = lo.Filter(order, func(sp search.Path, _ int) bool {
			return sp.IsStdlib() || sp.Kind == search.SitePackages
		})
	}

	var namespaceHit *ResolvedModule
	for _, sp := range order {
		fs := r.fsFor(sp, rfs)
		outcome := r.resolveInPath(fs, sp, name, mode)
		switch outcome.status {
		case statusFound:
			return outcome.module
		case statusNamespace:
			// Remembered and returned only if no file hit exists in any
			// path.
			if namespaceHit == nil {
				namespaceHit = outcome.module
			}
		case statusFailRegular:
			// A regular package at this priority claims the name; lower
			// priorities may not provide the missing submodule.
			if namespaceHit != nil {
				return namespaceHit
			}
			r.opts.Metrics.missingModule()
			return nil
		}
	}
	if namespaceHit != nil {
		return namespaceHit
	}
	r.opts.Metrics.missingModule()
	return nil
}

type resolveStatus int

const (
	statusNotFound resolveStatus = iota
	statusFound
	statusNamespace
	statusFailRegular
)

type pathOutcome struct {
	status resolveStatus
	module *ResolvedModule
}

// resolveInPath attempts one search path: the
// stub-package form first when stubs are allowed and the path is not
// stdlib, then the normal form.
func (r *Resolver) resolveInPath(fs fsabs.FS, sp search.Path, name search.ModuleName, mode Mode) pathOutcome {
	if mode.stubsAllowed() && !sp.IsStdlib() {
		stubComponents := name.WithStubSuffix()
		stubRoot := joinPath(sp.Root, stubComponents[0])
		if fs.IsDirectory(stubRoot) {
			outcome := r.walkComponents(fs, sp, name, stubComponents, mode)
			if outcome.status == statusFound {
				return outcome
			}
			// A partial stub package defers missing submodules to the
			// normal form; a complete one claims the whole tree.
			marker, ok := r.readToString(fs, stubRoot+"/py.typed")
			if !ok || !strings.Contains(strings.ToLower(marker), "partial") {
				return pathOutcome{status: statusNotFound}
			}
		}
	}
	return r.walkComponents(fs, sp, name, name.Components(), mode)
}

// walkComponents walks the parent components below sp's root, then
// probes the final component as package, then single-file module.
func (r *Resolver) walkComponents(fs fsabs.FS, sp search.Path, name search.ModuleName, components []string, mode Mode) pathOutcome {
	dir := sp.Root
	lastParentRegular := false
	for _, component := range components[:len(components)-1] {
		next := joinPath(dir, component)
		initFile := r.findInit(fs, next, mode)
		switch {
		case initFile != "":
			if !sp.IsStdlib() && isLegacyNamespaceInit(fs, initFile) {
				// Legacy namespace package: behaves as a namespace
				// segment despite carrying an init file.
				dir = next
				lastParentRegular = false
				continue
			}
			dir = next
			lastParentRegular = true
		case r.isDir(fs, next):
			// Namespace-package segment: a directory lacking the init
			// file.
			dir = next
			lastParentRegular = false
		default:
			return pathOutcome{status: statusNotFound}
		}
	}

	final := components[len(components)-1]
	pkgDir := joinPath(dir, final)
	if initFile := r.findInit(fs, pkgDir, mode); initFile != "" {
		if !r.casingOK(fs, sp, initFile) {
			return pathOutcome{status: statusNotFound}
		}
		return pathOutcome{status: statusFound, module: &ResolvedModule{
			Name:       name,
			Kind:       PackageModule,
			SearchPath: sp,
			File:       initFile,
			PyTyped:    pyTypedFor(fs, sp, initFile),
		}}
	}
	for _, ext := range r.extensions(mode) {
		candidate := pkgDir + ext
		if fs.IsFile(candidate) {
			if !r.casingOK(fs, sp, candidate) {
				continue
			}
			return pathOutcome{status: statusFound, module: &ResolvedModule{
				Name:       name,
				Kind:       SingleFileModule,
				SearchPath: sp,
				File:       candidate,
				PyTyped:    pyTypedFor(fs, sp, candidate),
			}}
		}
	}
	if r.isDir(fs, pkgDir) {
		return pathOutcome{status: statusNamespace, module: &ResolvedModule{
			Name:        name,
			Kind:        PackageModule,
			SearchPath:  sp,
			IsNamespace: true,
		}}
	}
	// A regular (non-legacy) package as the immediate parent claims
	// the name: lower-priority paths may not supply the missing
	// submodule.
	if lastParentRegular {
		return pathOutcome{status: statusFailRegular}
	}
	return pathOutcome{status: statusNotFound}
}

// findInit returns the path of a directory's init file, preferring
// .pyi iff stubs are allowed.
func (r *Resolver) findInit(fs fsabs.FS, dir string, mode Mode) string {
	for _, ext := range r.extensions(mode) {
		candidate := dir + "/__init__" + ext
		if fs.IsFile(candidate) {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) extensions(mode Mode) []string {
	if mode.stubsAllowed() {
		return []string{".pyi", ".py"}
	}
	return []string{".py"}
}

// isDir wraps IsDirectory with the warn-and-degrade rule for unknown
// I/O errors: fsabs implementations fold errors into false,
// so this is the single seam where a future FS with richer errors
// would log.
func (r *Resolver) isDir(fs fsabs.FS, path string) bool {
	return fs.IsDirectory(path)
}

// casingOK verifies on-disk casing matches the requested name on
// case-insensitive filesystems by walking the actual directory entries.
func (r *Resolver) casingOK(fs fsabs.FS, sp search.Path, file string) bool {
	if fs.CaseSensitivity() == fsabs.CaseSensitive {
		return true
	}
	return fs.PathExistsCaseSensitive(file, sp.Root)
}

// readToString is the resolver-side file read with the warn-level
// degradation: each unknown I/O error logs a warning and reads as
// absence.
func (r *Resolver) readToString(fs fsabs.FS, path string) (string, bool) {
	content, err := fs.ReadToString(path)
	if err != nil {
		if !errors.Is(err, fsabs.ErrNotExist) {
			r.logger.WithError(err).WithField("path", path).Warn("filesystem read failed; treating module as not found")
		}
		return "", false
	}
	return content, true
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}
