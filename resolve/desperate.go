package resolve

import (
	"fmt"

	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/resolve/search"
)

// projectMarkers are the files whose presence marks a directory as a
// project root for desperate resolution.
var projectMarkers = []string{"pyproject.toml", "setup.py", "setup.cfg"}

// resolveDesperate retries name resolution over ancestor-based search
// paths computed from the importing file's directory when the standard
// search failed. The fallback is cached per importing
// file with its own dependency set.
func (r *Resolver) resolveDesperate(importingFile string, name search.ModuleName, mode Mode) (*ResolvedModule, bool) {
	if importingFile == "" {
		r.opts.Metrics.missingModule()
		return nil, false
	}

	key := fmt.Sprintf("%s\x00%s\x00%d", importingFile, name, mode)
	r.mu.Lock()
	if entry, ok := r.desperate[key]; ok {
		r.mu.Unlock()
		return entry.result, entry.result != nil
	}
	r.mu.Unlock()

	r.opts.Metrics.desperate()
	deps := newDepSet()
	rfs := newRecordingFS(r.opts.FS, deps)

	var result *ResolvedModule
	for _, sp := range r.desperatePaths(rfs, importingFile) {
		outcome := r.resolveInPath(rfs, sp, name, mode)
		if outcome.status == statusFound || outcome.status == statusNamespace {
			result = outcome.module
			break
		}
		if outcome.status == statusFailRegular {
			break
		}
	}

	r.mu.Lock()
	r.desperate[key] = &cacheEntry{result: result, deps: deps}
	r.mu.Unlock()

	if result == nil {
		r.opts.Metrics.missingModule()
		return nil, false
	}
	return result, true
}

// desperatePaths computes the absolute-import desperate search paths:
// every ancestor of the importing file's directory that is not a
// regular package (or that carries a project marker), walking upward
// and stopping at the first-party root.
func (r *Resolver) desperatePaths(fs fsabs.FS, importingFile string) []search.Path {
	root := r.firstPartyRootOf(importingFile)
	var out []search.Path
	for dir := parentDir(importingFile); dir != ""; dir = parentDir(dir) {
		if !r.isRegularPackageDir(fs, dir) || r.hasProjectMarker(fs, dir) {
			out = append(out, search.Path{Kind: search.FirstParty, Root: dir})
		}
		if dir == root {
			break
		}
	}
	return out
}

// DesperateRelativeRoot returns the search root relative imports fall
// back to for importingFile: the closest ancestor containing a project
// marker. ok is false when no marked ancestor exists
// inside the first-party root.
func (r *Resolver) DesperateRelativeRoot(importingFile string) (string, bool) {
	root := r.firstPartyRootOf(importingFile)
	for dir := parentDir(importingFile); dir != ""; dir = parentDir(dir) {
		if r.hasProjectMarker(r.opts.FS, dir) {
			return dir, true
		}
		if dir == root {
			break
		}
	}
	return "", false
}

func (r *Resolver) firstPartyRootOf(file string) string {
	for _, sp := range r.opts.Settings.SrcRoots {
		if sp.Root != "" && (file == sp.Root || hasPathPrefix(file, sp.Root)) {
			return sp.Root
		}
	}
	return ""
}

func (r *Resolver) isRegularPackageDir(fs fsabs.FS, dir string) bool {
	return fs.IsFile(dir+"/__init__.py") || fs.IsFile(dir+"/__init__.pyi")
}

func (r *Resolver) hasProjectMarker(fs fsabs.FS, dir string) bool {
	for _, marker := range projectMarkers {
		if fs.IsFile(dir + "/" + marker) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, root string) bool {
	return len(path) > len(root) && path[:len(root)] == root && path[len(root)] == '/'
}
