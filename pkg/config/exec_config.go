package config

import (
	"os"
	"strconv"
	"strings"
)

// GitPath returns the git binary to execute.
func GitPath(state State) string {
	if path, ok := state.Env[EnvFwsetupGit]; ok && path != "" {
		return path
	}
	return "git"
}

// Debug reports whether debug output was requested through the environment.
// Any value strconv.ParseBool accepts as true enables it, as does any other non-empty value.
func Debug(state State) bool {
	value, ok := state.Env[EnvFwsetupDebug]
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value != ""
}

// OmnicacheFromEnv returns the omnicache path set in the environment, or an empty string.
func OmnicacheFromEnv(state State) string {
	return state.Env[EnvOmnicachePath]
}

// ResolveOmnicache decides the effective omnicache for a run.
// An empty path means no omnicache.
// A path that does not exist, or is not a directory, is downgraded to no omnicache;
// valid is then false so the caller can warn about it.
func ResolveOmnicache(path string) (effective string, valid bool) {
	if path == "" {
		return "", true
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return "", false
	}
	return path, true
}
