package config

const (
	// EnvOmnicachePath is the default object cache passed to `git submodule update --reference`
	EnvOmnicachePath = "OMNICACHE_PATH"
	// EnvFwsetupDebug enables debug output on the console when set to a true value
	EnvFwsetupDebug = "FWSETUP_DEBUG"
	// EnvFwsetupGit overrides the git binary that is executed
	EnvFwsetupGit = "FWSETUP_GIT"
)

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvOmnicachePath,
	EnvFwsetupDebug,
	EnvFwsetupGit,
}
