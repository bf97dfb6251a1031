package collaborators

import "github.com/bmatcuk/doublestar/v4"

// FindHeaderRoots discovers candidate header search-root directories
// under root by globbing for directories named "include" at any depth,
// plus root itself. A real Preprocessor implementation needs exactly
// this kind of root list to resolve `#include <...>` against a kernel
// tree's scattered arch/<arch>/include, include/, and
// include/generated/uapi layout; modslice's own pipeline never calls
// this (escrow/cparse never resolve includes), but the interface above
// is useless without some concrete bookkeeping that exercises it.
func FindHeaderRoots(root string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(root + "/**/include")
	if err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(matches)+1)
	roots = append(roots, root)
	roots = append(roots, matches...)
	return roots, nil
}
