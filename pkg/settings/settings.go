// Package settings provides the list of submodules a platform requires before it can build.
package settings

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"
	"gopkg.in/yaml.v3"

	"github.com/warptools/fwsetup/fsapi"
)

// Provider supplies the ordered list of required submodules.
type Provider interface {
	GetRequiredSubmodules() ([]fsapi.RequiredSubmodule, error)
}

// Default requires no submodules.
type Default struct{}

func (Default) GetRequiredSubmodules() ([]fsapi.RequiredSubmodule, error) {
	return []fsapi.RequiredSubmodule{}, nil
}

// Static returns a fixed list.
type Static []fsapi.RequiredSubmodule

func (s Static) GetRequiredSubmodules() ([]fsapi.RequiredSubmodule, error) {
	return append([]fsapi.RequiredSubmodule{}, s...), nil
}

// FileNames are the settings files searched for in a workspace root, in order.
var FileNames = []string{"fwsetup.json", "fwsetup.yaml", "fwsetup.yml"}

// FindFile returns the name of the first settings file present in root.
// The result is relative to fsys. An empty string means none was found.
//
// Errors:
//
//   - fwsetup-error-searching-filesystem -- when stat fails for a reason other than non-existence
func FindFile(fsys fs.FS, root string) (string, error) {
	for _, name := range FileNames {
		p := path.Join(root, name)
		fi, err := fs.Stat(fsys, p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fsapi.ErrorSearchingFilesystem("settings file", err)
		}
		if fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", nil
}

// File reads the settings file at Path each time it is asked.
type File struct {
	Path string
}

func (f File) GetRequiredSubmodules() ([]fsapi.RequiredSubmodule, error) {
	s, err := LoadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return s.RequiredSubmodules, nil
}

// WorkspaceRoot returns the workspace root named in the file.
// A relative root is taken relative to the directory holding the file.
// ok is false when the file names no root.
//
// Errors:
//
//   - fwsetup-error-io -- when the file cannot be read
//   - fwsetup-error-serialization -- when the file cannot be parsed
//   - fwsetup-error-settings-invalid -- when a submodule entry is unusable
func (f File) WorkspaceRoot() (root string, ok bool, err error) {
	s, err := LoadFile(f.Path)
	if err != nil {
		return "", false, err
	}
	if s.WorkspaceRoot == nil || strings.TrimSpace(*s.WorkspaceRoot) == "" {
		return "", false, nil
	}
	root = filepath.FromSlash(*s.WorkspaceRoot)
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(f.Path), root)
	}
	return filepath.Clean(root), true, nil
}

// LoadFile reads and validates a settings file.
// Files ending in .yaml or .yml are read as YAML, everything else as JSON.
//
// Errors:
//
//   - fwsetup-error-io -- when the file cannot be read
//   - fwsetup-error-serialization -- when the file cannot be parsed
//   - fwsetup-error-settings-invalid -- when a submodule entry is unusable
func LoadFile(filename string) (fsapi.SetupSettings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fsapi.SetupSettings{}, fsapi.ErrorIo("cannot read settings file", filename, err)
	}
	return Parse(filename, data)
}

// Parse decodes settings data. The name selects the format by extension and is used in errors.
//
// Errors:
//
//   - fwsetup-error-serialization -- when the data cannot be parsed
//   - fwsetup-error-settings-invalid -- when a submodule entry is unusable
func Parse(name string, data []byte) (fsapi.SetupSettings, error) {
	result := fsapi.SetupSettings{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		if err := yaml.Unmarshal(data, &result); err != nil {
			return fsapi.SetupSettings{}, fsapi.ErrorSerialization(name, err)
		}
	default:
		_, err := ipld.Unmarshal(data, json.Decode, &result, fsapi.TypeSystem.TypeByName("SetupSettings"))
		if err != nil {
			return fsapi.SetupSettings{}, fsapi.ErrorSerialization(name, err)
		}
	}
	if result.RequiredSubmodules == nil {
		result.RequiredSubmodules = []fsapi.RequiredSubmodule{}
	}
	if err := Validate(name, result.RequiredSubmodules); err != nil {
		return fsapi.SetupSettings{}, err
	}
	return result, nil
}

// Validate checks that every path is a non-empty relative path inside the workspace
// and that no path is listed twice.
//
// Errors:
//
//   - fwsetup-error-settings-invalid -- when a submodule entry is unusable
func Validate(source string, subs []fsapi.RequiredSubmodule) error {
	seen := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		p := strings.TrimSpace(s.Path)
		if p == "" {
			return fsapi.ErrorSettingsInvalid(source, "submodule path is empty")
		}
		slashed := filepath.ToSlash(p)
		if path.IsAbs(slashed) || filepath.IsAbs(p) {
			return fsapi.ErrorSettingsInvalid(source, "submodule path "+p+" is absolute")
		}
		clean := path.Clean(slashed)
		if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return fsapi.ErrorSettingsInvalid(source, "submodule path "+p+" is outside the workspace")
		}
		if _, dup := seen[clean]; dup {
			return fsapi.ErrorSettingsInvalid(source, "submodule path "+p+" is listed more than once")
		}
		seen[clean] = struct{}{}
	}
	return nil
}
