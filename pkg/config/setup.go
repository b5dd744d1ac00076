package config

import (
	"os"
	"sync"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/fwsetup/fsapi"
)

/*
	Env vars and the working directory are process-wide and can change while we run.
	Everything that depends on them reads from a State snapshot instead,
	so a run sees one consistent view and tests can hand in their own.
	This doesn't prevent changes that might be passed down to sub-processes like git.
*/

type State struct {
	Env              map[string]string
	HomeDirectory    string
	WorkingDirectory string
	ExecutablePath   string
	TempDir          string
}

var (
	globalm sync.RWMutex
	global  State
)

// ReloadGlobalState will fetch all values for internal state
// ReloadGlobalState will halt on the first error.
//
// Errors:
//
//   - fwsetup-error-initialization -- loading the value failed
func ReloadGlobalState() error {
	globalm.Lock()
	defer globalm.Unlock()
	global.Env = make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			global.Env[key] = v
		}
	}
	loadFuncs := []func() error{
		loadExecutablePath,
		loadWd,
		loadUserHome,
		loadTempDir,
	}
	for _, loadFunc := range loadFuncs {
		if err := loadFunc(); err != nil {
			// Error Codes = fwsetup-error-initialization
			return err
		}
	}
	return nil
}

// NewState returns a copy of the global state.
// The returned state can be modified without affecting anything else,
// and later calls to ReloadGlobalState will not affect it.
// NewState is concurrent safe.
func NewState() State {
	globalm.RLock()
	defer globalm.RUnlock()
	return global.Clone()
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	result := s
	result.Env = make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		result.Env[k] = v
	}
	return result
}

// init will load all guarded values and will terminate execution if an error occurs.
func init() {
	if err := ReloadGlobalState(); err != nil {
		serr, ok := err.(serum.ErrorInterface)
		if !ok {
			serr = serum.Error(fsapi.ECodeUnknown,
				serum.WithMessageLiteral("config initialization failed"),
				serum.WithCause(err),
			).(serum.ErrorInterface)
		}
		fsapi.TerminalError(serr, 10)
	}
}

// loadExecutablePath stores the path to the executable into the stored state
// NOT concurrent safe
//
// Errors:
//
//   - fwsetup-error-initialization -- when the path to the fwsetup executable cannot be found
func loadExecutablePath() error {
	path, err := os.Executable()
	if err != nil {
		return serum.Error(fsapi.ECodeInitialization,
			serum.WithMessageLiteral("failed to locate binary path"),
			serum.WithCause(err),
		)
	}
	global.ExecutablePath = path
	return nil
}

// loadWd loads the working directory into the stored state
// NOT concurrent safe
//
// Errors:
//
//   - fwsetup-error-initialization -- when the working directory path cannot be found
func loadWd() error {
	cwd, err := os.Getwd()
	if err != nil {
		return serum.Error(fsapi.ECodeInitialization,
			serum.WithMessageLiteral("unable to get working directory"),
			serum.WithCause(err),
		)
	}
	global.WorkingDirectory = cwd
	return nil
}

// loadUserHome loads the user home directory into the stored state.
// A missing home is not fatal; only the user defaults file depends on it.
// NOT concurrent safe
func loadUserHome() error {
	dir, err := os.UserHomeDir()
	if err != nil {
		global.HomeDirectory = ""
		return nil
	}
	global.HomeDirectory = dir
	return nil
}

// loadTempDir loads the default temporary file directory into stored state
// NOT concurrent safe
func loadTempDir() error {
	global.TempDir = os.TempDir()
	return nil
}
