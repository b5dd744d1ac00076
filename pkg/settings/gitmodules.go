package settings

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/config"

	"github.com/warptools/fwsetup/fsapi"
)

// Gitmodules requires every submodule declared in the workspace's .gitmodules file.
type Gitmodules struct {
	WorkspaceRoot string
}

// GetRequiredSubmodules returns the declared submodules sorted by path, all recursive.
// A workspace without a .gitmodules file requires nothing.
//
// Errors:
//
//   - fwsetup-error-io -- when .gitmodules exists but cannot be read
//   - fwsetup-error-serialization -- when .gitmodules cannot be parsed
//   - fwsetup-error-settings-invalid -- when a declared path is unusable
func (g Gitmodules) GetRequiredSubmodules() ([]fsapi.RequiredSubmodule, error) {
	filename := filepath.Join(g.WorkspaceRoot, ".gitmodules")
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return []fsapi.RequiredSubmodule{}, nil
		}
		return nil, fsapi.ErrorIo("cannot read .gitmodules", filename, err)
	}
	return ParseGitmodules(filename, data)
}

// ParseGitmodules decodes .gitmodules content.
//
// Errors:
//
//   - fwsetup-error-serialization -- when the data cannot be parsed
//   - fwsetup-error-settings-invalid -- when a declared path is unusable
func ParseGitmodules(name string, data []byte) ([]fsapi.RequiredSubmodule, error) {
	modules := config.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		return nil, fsapi.ErrorSerialization(name, err)
	}
	paths := make([]string, 0, len(modules.Submodules))
	for _, sm := range modules.Submodules {
		paths = append(paths, sm.Path)
	}
	sort.Strings(paths)
	result := make([]fsapi.RequiredSubmodule, 0, len(paths))
	for _, p := range paths {
		result = append(result, fsapi.NewRequiredSubmodule(p, true))
	}
	if err := Validate(name, result); err != nil {
		return nil, err
	}
	return result, nil
}
