// Package filex resolves on-disk locations for client state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates base/name (base defaults to the working directory) and
// returns its absolute path. An absolute name ignores base.
func EnsureDir(base, name string) (string, error) {
	if filepath.IsAbs(name) {
		base = ""
	} else if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		base = cwd
	}

	dir := name
	if base != "" {
		dir = filepath.Join(base, name)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DataFile returns the path of file inside dir, creating dir if necessary.
// A path containing a separator is returned unchanged after its parent is
// created.
func DataFile(dir, file string) (string, error) {
	if file == ":memory:" || filepath.IsAbs(file) || filepath.Dir(file) != "." {
		if parent := filepath.Dir(file); file != ":memory:" && parent != "." {
			if err := os.MkdirAll(parent, 0o770); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", parent, err)
			}
		}
		return file, nil
	}

	d, err := EnsureDir("", dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(d, file), nil
}
