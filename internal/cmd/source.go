package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// readArea concatenates every .c/.h file under dir into one string, in
// sorted path order so a rerun over an unchanged tree produces the
// same bytes (the level-1 entity cache in internal/pipeline keys on
// this text, so a non-deterministic concatenation order would defeat
// every cache hit).
func readArea(dir string) (string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".c", ".h":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", &InputError{Reason: "reading source tree " + dir, Err: err}
	}
	sort.Strings(paths)

	var sb strings.Builder
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", &InputError{Reason: "reading " + p, Err: err}
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
