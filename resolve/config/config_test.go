package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/resolve/config"
	"github.com/Tangerg/pyflow/resolve/search"
)

func TestLoadYAML(t *testing.T) {
	doc := `
extra_paths:
  - vendor
src_roots:
  - src
site_packages_paths:
  - site
misconfiguration_mode: strict
`
	settings, err := config.Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor"}, settings.ExtraPaths)
	assert.Equal(t, []string{"src"}, settings.SrcRoots)
	assert.Equal(t, config.Strict, settings.Misconfiguration)
}

func TestValidateSkipsMissingPathsByDefault(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{"src/a.py": ""})
	settings := &config.SearchPathSettings{
		SrcRoots:   []string{"src", "missing"},
		ExtraPaths: []string{"also-missing"},
	}
	validated, err := settings.Validate(fs)
	require.NoError(t, err)
	require.Len(t, validated.SrcRoots, 1)
	assert.Empty(t, validated.ExtraPaths)
}

func TestValidateStrictEscalates(t *testing.T) {
	fs := fsabs.NewMem()
	settings := &config.SearchPathSettings{
		SrcRoots:         []string{"missing"},
		Misconfiguration: config.Strict,
	}
	_, err := settings.Validate(fs)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidSearchPath)
}

func TestOrderPriorityAndDedup(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"vendor/v.py": "",
		"src/a.py":    "",
		"site/s.py":   "",
	})
	settings := &config.SearchPathSettings{
		ExtraPaths:        []string{"vendor", "src"},
		SrcRoots:          []string{"src"},
		SitePackagesPaths: []string{"site"},
	}
	validated, err := settings.Validate(fs)
	require.NoError(t, err)

	order := validated.Order(fs, validated.Stdlib(true))
	require.Len(t, order, 4, "the duplicated src entry keeps only its first occurrence")
	assert.Equal(t, search.ExtraPath, order[0].Kind)
	assert.Equal(t, "vendor", order[0].Root)
	assert.Equal(t, search.ExtraPath, order[1].Kind, "first occurrence wins, so src stays an extra path")
	assert.Equal(t, "src", order[1].Root)
	assert.Equal(t, search.StdlibVendored, order[2].Kind)
	assert.Equal(t, search.SitePackages, order[3].Kind)
}

func TestStdlibSelection(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"typeshed/x.pyi": "",
		"stdlib/os.py":   "",
	})

	custom := &config.SearchPathSettings{CustomTypeshed: "typeshed"}
	validated, err := custom.Validate(fs)
	require.NoError(t, err)
	assert.Equal(t, search.StdlibCustom, validated.Stdlib(true).Kind)

	real := &config.SearchPathSettings{RealStdlibPath: "stdlib"}
	validated, err = real.Validate(fs)
	require.NoError(t, err)
	assert.Equal(t, search.StdlibVendored, validated.Stdlib(true).Kind,
		"stub resolution prefers the vendored archive over the real stdlib")
	assert.Equal(t, search.StdlibReal, validated.Stdlib(false).Kind)
}

func TestOrderAppendsEditablesAfterTheirSite(t *testing.T) {
	fs := fsabs.NewMemWith(map[string]string{
		"site/dev.pth":    "/work/checkout\n",
		"site/pkg.py":     "",
		"/work/checkout/m.py": "",
	})
	settings := &config.SearchPathSettings{SitePackagesPaths: []string{"site"}}
	validated, err := settings.Validate(fs)
	require.NoError(t, err)

	order := validated.Order(fs, validated.Stdlib(false))
	require.Len(t, order, 3)
	assert.Equal(t, search.SitePackages, order[1].Kind)
	assert.Equal(t, search.Editable, order[2].Kind)
	assert.Equal(t, "/work/checkout", order[2].Root)
}
