package resolve

import (
	"strings"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/resolve/search"
)

// PyTyped is the tri-state typing marker inherited down a package tree
//: children may override to Full/Partial but cannot revert
// to Untyped.
type PyTyped int

const (
	Untyped PyTyped = iota
	Partial
	Full
)

func (p PyTyped) String() string {
	switch p {
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return "untyped"
	}
}

// pyTypedFor computes the marker for a module resolved at file within
// sp, walking the package directories from the search root down to the
// module's directory and folding each level's `py.typed` file: an
// empty marker file means Full, a body containing "partial" means
// Partial. Deeper markers override shallower ones;
// absence at a deeper level keeps the inherited value.
func pyTypedFor(fs fsabs.FS, sp search.Path, file string) PyTyped {
	if sp.IsStdlib() {
		// Stdlib modules and their vendored stubs always ship types.
		return Full
	}
	rel := strings.TrimPrefix(file, sp.Root+"/")
	if rel == file && sp.Root != "" {
		return Untyped
	}
	components := strings.Split(rel, "/")
	state := Untyped
	dir := sp.Root
	for _, component := range components[:max(0, len(components)-1)] {
		dir = joinPath(dir, component)
		marker, err := fs.ReadToString(dir + "/py.typed")
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(marker), "partial") {
			state = Partial
		} else {
			state = Full
		}
	}
	return state
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
