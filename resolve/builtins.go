package resolve

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/Tangerg/pyflow/pkg/sets"
)

// builtinSince maps the host language's built-in (C-level) modules to
// the interpreter version that introduced them; an empty string means
// the module has always existed. The set is version-gated with
// golang.org/x/mod/semver so that e.g. `tomllib` is only treated as a
// built-in when resolving against 3.11+.
var builtinSince = map[string]string{
	"builtins":        "",
	"sys":             "",
	"types":           "",
	"marshal":         "",
	"gc":              "",
	"time":            "",
	"math":            "",
	"cmath":           "",
	"array":           "",
	"itertools":       "",
	"errno":           "",
	"posix":           "",
	"atexit":          "",
	"faulthandler":    "",
	"zoneinfo":        "3.9",
	"graphlib":        "3.9",
	"tomllib":         "3.11",
}

// builtinsFor returns the built-in module set active at the given
// interpreter version (e.g. "3.12").
func builtinsFor(version string) sets.HashSet[string] {
	v := canonicalVersion(version)
	out := sets.NewHashSet[string](len(builtinSince))
	for name, since := range builtinSince {
		if since == "" {
			out.Add(name)
			continue
		}
		if v != "" && semver.Compare(v, canonicalVersion(since)) >= 0 {
			out.Add(name)
		}
	}
	return out
}

func canonicalVersion(version string) string {
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return ""
	}
	return version
}

// isNonShadowable reports whether name may not be shadowed by
// first-party files under the given mode: the built-in
// modules plus `types` (always) and `typing_extensions` — all three
// sets relaxed by StubsNotAllowedSomeShadowingAllowed except `types`,
// which stays non-shadowable in every mode.
func (r *Resolver) isNonShadowable(head string, mode Mode) bool {
	if head == "types" {
		return true
	}
	if mode == StubsNotAllowedSomeShadowingAllowed {
		return false
	}
	if head == "typing_extensions" {
		return true
	}
	return r.builtins.Contains(head)
}
