package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/warptools/fwsetup/fsapi"
)

// UserDefaultsFile is the path of the per-user defaults file, relative to the XDG config directories.
var UserDefaultsFile = filepath.Join("fwsetup", "config.yaml")

// UserDefaults holds per-user fallbacks for setup options.
// Flags and environment variables take precedence over these.
type UserDefaults struct {
	// Omnicache is used when neither --omnicache nor OMNICACHE_PATH is set.
	Omnicache string `yaml:"omnicache,omitempty"`
	// Settings is a settings file used when the workspace has none.
	Settings string `yaml:"settings,omitempty"`
	// Force makes --force the default.
	Force bool `yaml:"force,omitempty"`
}

// LoadUserDefaults reads the per-user defaults file from the XDG config directories.
// A missing file yields zero defaults.
//
// Errors:
//
//   - fwsetup-error-io -- when the file exists but cannot be read
//   - fwsetup-error-serialization -- when the file cannot be parsed
func LoadUserDefaults() (UserDefaults, error) {
	filename, err := xdg.SearchConfigFile(UserDefaultsFile)
	if err != nil {
		// SearchConfigFile reports a missing file as an error.
		return UserDefaults{}, nil
	}
	return ReadUserDefaults(filename)
}

// ReadUserDefaults reads a defaults file from a specific path.
// A missing file yields zero defaults.
//
// Errors:
//
//   - fwsetup-error-io -- when the file exists but cannot be read
//   - fwsetup-error-serialization -- when the file cannot be parsed
func ReadUserDefaults(filename string) (UserDefaults, error) {
	result := UserDefaults{}
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return result, fsapi.ErrorIo("cannot read user defaults", filename, err)
	}
	if err := yaml.Unmarshal(data, &result); err != nil {
		return UserDefaults{}, fsapi.ErrorSerialization(filename, err)
	}
	return result, nil
}
