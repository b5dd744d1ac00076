package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/warptools/fwsetup/fsapi"
)

// RepositoryMarker is the entry whose presence marks the root of a git working tree.
// It is a directory in a normal clone and a file in worktrees and submodules.
const RepositoryMarker = ".git"

// FindWorkspaceRoot looks for the nearest enclosing git working tree,
// searching directories upward.
//
// It searches from `join(basisPath,searchPath)` up to `basisPath`
// (in other words, it won't search above basisPath).
// Invoking it with an empty string for `basisPath` and cwd (without its leading slash) for `searchPath` is typical.
//
// The result is the fsys path of the directory containing the marker.
// If no working tree is found, found is false and the error is nil.
//
// An fsys handle is required, but is typically `os.DirFS("/")` outside of tests.
//
// Errors:
//
//   - fwsetup-error-searching-filesystem -- when an unexpected error occurs traversing the search path
func FindWorkspaceRoot(fsys fs.FS, basisPath, searchPath string) (root string, found bool, err error) {
	searchAt := filepath.ToSlash(filepath.Clean(searchPath))
	for {
		dir := filepath.ToSlash(filepath.Join(basisPath, searchAt))
		_, err := fs.Stat(fsys, filepath.ToSlash(filepath.Join(dir, RepositoryMarker)))
		if err == nil {
			return dir, true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fsapi.ErrorSearchingFilesystem("workspace", err)
		}
		if searchAt == "." || searchAt == "/" || searchAt == "" {
			return "", false, nil
		}
		searchAt = filepath.ToSlash(filepath.Dir(searchAt))
	}
}

// ResolveWorkspaceRoot returns the absolute workspace root for a command.
// A non-empty given path must name an existing directory and is used as is.
// Otherwise the nearest git working tree at or above the state's working directory is used.
//
// Errors:
//
//   - fwsetup-error-workspace -- when the given path is not a directory or no working tree is found
//   - fwsetup-error-searching-filesystem -- when the upward search fails
func ResolveWorkspaceRoot(state State, given string) (string, error) {
	if given != "" {
		fi, err := os.Stat(given)
		if err != nil || !fi.IsDir() {
			return "", fsapi.ErrorWorkspace(given, "no such directory")
		}
		abs, err := filepath.Abs(given)
		if err != nil {
			return "", fsapi.ErrorWorkspace(given, err.Error())
		}
		return abs, nil
	}
	if !filepath.IsAbs(state.WorkingDirectory) {
		return "", fsapi.ErrorWorkspace(state.WorkingDirectory, "working directory is not absolute")
	}
	root, found, err := FindWorkspaceRoot(os.DirFS("/"), "", filepath.ToSlash(state.WorkingDirectory)[1:])
	if err != nil {
		return "", err
	}
	if !found {
		return "", fsapi.ErrorWorkspace(state.WorkingDirectory, "no git working tree at or above this directory")
	}
	return filepath.Join("/", root), nil
}
