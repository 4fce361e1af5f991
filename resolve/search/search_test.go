package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/resolve/search"
)

func TestParseModuleName(t *testing.T) {
	name, err := search.ParseModuleName("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, name.Components())
	assert.Equal(t, "a", name.Head())
	assert.Equal(t, "c", name.Final())
	assert.Equal(t, "a.b.c", name.String())

	parent, ok := name.Parent()
	require.True(t, ok)
	assert.Equal(t, "a.b", parent.String())

	single := search.MustModuleName("solo")
	_, ok = single.Parent()
	assert.False(t, ok)
}

func TestParseModuleNameRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", ".", "a.", ".a", "a..b", "1x", "a.b-c", "a b"} {
		_, err := search.ParseModuleName(bad)
		assert.Error(t, err, "name %q must be rejected", bad)
	}
}

func TestWithStubSuffix(t *testing.T) {
	name := search.MustModuleName("pkg.sub")
	assert.Equal(t, []string{"pkg-stubs", "sub"}, name.WithStubSuffix())
	// The original name is untouched.
	assert.Equal(t, "pkg.sub", name.String())
}

func TestFileToModuleNameRoundTrip(t *testing.T) {
	// Round trip: file_to_module(resolve(m).file).name == m.
	cases := []struct {
		root string
		file string
		want string
	}{
		{"src", "src/a/b/c.py", "a.b.c"},
		{"src", "src/a/__init__.py", "a"},
		{"src", "src/mod.pyi", "mod"},
		{"", "top.py", "top"},
	}
	for _, tc := range cases {
		name, ok := search.FileToModuleName(tc.root, tc.file)
		require.True(t, ok, "%s under %s", tc.file, tc.root)
		assert.Equal(t, tc.want, name.String())
	}
}

func TestFileToModuleNameRejectsOutsideRoot(t *testing.T) {
	_, ok := search.FileToModuleName("src", "elsewhere/mod.py")
	assert.False(t, ok)
	_, ok = search.FileToModuleName("src", "src/not-an-ident.py")
	assert.False(t, ok)
}

func TestSearchPathStdlibTagging(t *testing.T) {
	assert.True(t, search.Path{Kind: search.StdlibVendored}.IsStdlib())
	assert.True(t, search.Path{Kind: search.StdlibReal, Root: "/usr/lib"}.IsStdlib())
	assert.False(t, search.Path{Kind: search.SitePackages, Root: "site"}.IsStdlib())
}
