package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/resolve"
	"github.com/Tangerg/pyflow/resolve/config"
	"github.com/Tangerg/pyflow/resolve/search"
)

func newResolver(t *testing.T, fs *fsabs.MemFilesystem, settings *config.SearchPathSettings) *resolve.Resolver {
	t.Helper()
	validated, err := settings.Validate(fs)
	require.NoError(t, err)
	r := resolve.New(resolve.Options{
		FS:            fs,
		Settings:      validated,
		PythonVersion: "3.12",
	})
	fs.OnChange(func(path string) { r.NotifyChanged(path) })
	return r
}

func TestFirstPartyShadowsSitePackages(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"src/foo.py":  "",
		"site/foo.py": "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{
		SrcRoots:          []string{"src"},
		SitePackagesPaths: []string{"site"},
	})

	module, ok := r.Resolve("", "foo", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "src/foo.py", module.File)
	assert.Equal(t, search.FirstParty, module.SearchPath.Kind)

	// Repeated query is answered from the cache and stays identical.
	again, ok := r.Resolve("", "foo", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, module.File, again.File)

	// Deleting the first-party file invalidates the cached resolution
	// and the re-query falls through to site-packages.
	fs.RemoveFile("src/foo.py")
	module, ok = r.Resolve("", "foo", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "site/foo.py", module.File)
	assert.Equal(t, search.SitePackages, module.SearchPath.Kind)
}

func TestLowerPriorityChangeDoesNotInvalidate(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"src/foo.py":    "",
		"site/keep.txt": "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{
		SrcRoots:          []string{"src"},
		SitePackagesPaths: []string{"site"},
	})

	first, ok := r.Resolve("", "foo", resolve.StubsNotAllowed)
	require.True(t, ok)

	// A file appearing at the lower-priority path must not change a
	// query that already resolved at src.
	fs.WriteFile("site/foo.py", "")
	second, ok := r.Resolve("", "foo", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, first.File, second.File)
}

func TestLegacyNamespacePackage(t *testing.T) {
	legacyInit := `__path__ = __import__("pkgutil").extend_path(__path__, __name__)` + "\n"
	fs := fsabs.NewMemWith(map[string]string{
		"one/pkg/__init__.py": legacyInit,
		"one/pkg/a.py":        "",
		"two/pkg/b.py":        "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{
		ExtraPaths: []string{"one", "two"},
	})

	b, ok := r.Resolve("", "pkg.b", resolve.StubsNotAllowed)
	require.True(t, ok, "pkg.b must resolve through the legacy namespace package")
	assert.Equal(t, "two/pkg/b.py", b.File)

	a, ok := r.Resolve("", "pkg.a", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "one/pkg/a.py", a.File)
}

func TestRegularPackageClaimsItsSubmodules(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"one/pkg/__init__.py": "",
		"two/pkg/b.py":        "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{
		ExtraPaths: []string{"one", "two"},
	})

	_, ok := r.Resolve("", "pkg.b", resolve.StubsNotAllowed)
	assert.False(t, ok, "a regular (non-legacy) package shadows lower-priority providers")
}

func TestNamespacePackageReturnedOnlyWithoutFileHit(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"one/ns/mod.py": "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{
		ExtraPaths: []string{"one"},
	})

	ns, ok := r.Resolve("", "ns", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.True(t, ns.IsNamespace)
	assert.Empty(t, ns.File)

	mod, ok := r.Resolve("", "ns.mod", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.False(t, mod.IsNamespace)
	assert.Equal(t, "one/ns/mod.py", mod.File)
}

func TestStubPreference(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/mod.py":  "",
		"site/mod.pyi": "",
	})
	settings := &config.SearchPathSettings{SitePackagesPaths: []string{"site"}}

	r := newResolver(t, fs, settings)
	withStubs, ok := r.Resolve("", "mod", resolve.StubsAllowed)
	require.True(t, ok)
	assert.Equal(t, "site/mod.pyi", withStubs.File, ".pyi beats .py iff stubs are allowed")

	noStubs, ok := r.Resolve("", "mod", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "site/mod.py", noStubs.File)
}

func TestStubOnlyPackage(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/pkg-stubs/__init__.pyi": "",
		"site/pkg/__init__.py":        "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SitePackagesPaths: []string{"site"}})

	module, ok := r.Resolve("", "pkg", resolve.StubsAllowed)
	require.True(t, ok)
	assert.Equal(t, "site/pkg-stubs/__init__.pyi", module.File,
		"the stub-package form is tried before the normal form")
}

func TestPartialStubPackageFallsThrough(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/pkg-stubs/__init__.pyi": "",
		"site/pkg-stubs/py.typed":     "partial\n",
		"site/pkg/__init__.py":        "",
		"site/pkg/extra.py":           "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SitePackagesPaths: []string{"site"}})

	module, ok := r.Resolve("", "pkg.extra", resolve.StubsAllowed)
	require.True(t, ok, "a partial stub package defers missing submodules to the runtime package")
	assert.Equal(t, "site/pkg/extra.py", module.File)
}

func TestNonShadowableModules(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"src/types.py":             "",
		"src/typing_extensions.py": "",
		"src/ordinary.py":          "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"src"}})

	_, ok := r.Resolve("", "types", resolve.StubsNotAllowed)
	assert.False(t, ok, "types is never shadowable by first-party files")

	_, ok = r.Resolve("", "typing_extensions", resolve.StubsNotAllowed)
	assert.False(t, ok)

	shadowed, ok := r.Resolve("", "typing_extensions", resolve.StubsNotAllowedSomeShadowingAllowed)
	require.True(t, ok, "mode 3 relaxes typing_extensions shadowing")
	assert.Equal(t, "src/typing_extensions.py", shadowed.File)

	ordinary, ok := r.Resolve("", "ordinary", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "src/ordinary.py", ordinary.File)
}

func TestCaseInsensitiveFilesystemRejectsWrongCasing(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"src/Foo.py": "",
	})
	fs.SetCaseInsensitive()
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"src"}})

	_, ok := r.Resolve("", "foo", resolve.StubsNotAllowed)
	assert.False(t, ok, "on-disk casing must match the requested name")

	module, ok := r.Resolve("", "Foo", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, "src/Foo.py", module.File)
}

func TestDesperateFallback(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"proj/sub/mod.py":  "",
		"proj/sub/util.py": "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"proj"}})

	module, ok := r.Resolve("proj/sub/mod.py", "util", resolve.StubsNotAllowed)
	require.True(t, ok, "ancestor directories of the importing file are searched desperately")
	assert.Equal(t, "proj/sub/util.py", module.File)

	// Without an importing file there is nothing to be desperate about.
	_, ok = r.Resolve("", "util", resolve.StubsNotAllowed)
	assert.False(t, ok)
}

func TestDesperateRelativeRoot(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"proj/pyproject.toml": "",
		"proj/pkg/mod.py":     "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"proj"}})

	root, ok := r.DesperateRelativeRoot("proj/pkg/mod.py")
	require.True(t, ok)
	assert.Equal(t, "proj", root)
}

func TestPyTypedMarker(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/full/__init__.py":        "",
		"site/full/py.typed":           "",
		"site/part/__init__.py":        "",
		"site/part/py.typed":           "partial\n",
		"site/bare/__init__.py":        "",
		"site/part/sub/__init__.py":    "",
		"site/part/sub/py.typed":       "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SitePackagesPaths: []string{"site"}})

	full, ok := r.Resolve("", "full", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, resolve.Full, full.PyTyped)

	part, ok := r.Resolve("", "part", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, resolve.Partial, part.PyTyped)

	bare, ok := r.Resolve("", "bare", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, resolve.Untyped, bare.PyTyped)

	// A child may tighten Partial to Full but the tree never reverts to
	// Untyped.
	sub, ok := r.Resolve("", "part.sub", resolve.StubsNotAllowed)
	require.True(t, ok)
	assert.Equal(t, resolve.Full, sub.PyTyped)
}

func TestVendoredArchiveBacksStdlib(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{"src/app.py": ""})
	vendored := fsabs.NewArchiveFromMap(map[string]string{
		"os/__init__.pyi": "",
		"sys.pyi":         "",
	})
	validated, err := (&config.SearchPathSettings{SrcRoots: []string{"src"}}).Validate(fs)
	require.NoError(t, err)
	r := resolve.New(resolve.Options{FS: fs, Vendored: vendored, Settings: validated, PythonVersion: "3.12"})

	module, ok := r.Resolve("", "os", resolve.StubsAllowed)
	require.True(t, ok)
	assert.Equal(t, search.StdlibVendored, module.SearchPath.Kind)
	assert.Equal(t, "os/__init__.pyi", module.File)
	assert.Equal(t, resolve.Full, module.PyTyped)
}

func TestInvalidModuleName(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{"src/a.py": ""})
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"src"}})

	for _, name := range []string{"", ".", "a..b", "1bad", "a.b-c"} {
		_, ok := r.Resolve("", name, resolve.StubsNotAllowed)
		assert.False(t, ok, "name %q must not resolve", name)
	}
}

func TestEditableInstallFromPthFile(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/easy-install.pth": "../editable\nimport sys; sys.path.insert(0)\n",
		"editable/dev.py":       "",
	})
	r := newResolver(t, fs, &config.SearchPathSettings{SitePackagesPaths: []string{"site"}})

	module, ok := r.Resolve("", "dev", resolve.StubsNotAllowed)
	require.True(t, ok, ".pth path lines extend the search order")
	assert.Equal(t, search.Editable, module.SearchPath.Kind)
	assert.Equal(t, "editable/dev.py", module.File)
}

func TestResolveAsync(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{"src/foo.py": ""})
	r := newResolver(t, fs, &config.SearchPathSettings{SrcRoots: []string{"src"}})

	future := r.ResolveAsync("", "foo", resolve.StubsNotAllowed)
	module, err := future.Get()
	require.NoError(t, err)
	require.NotNil(t, module)
	assert.Equal(t, "src/foo.py", module.File)
}
