package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by fwsetup
const (
	AttrKeyFwsetupErrorCode     = "fwsetup.error.code"
	AttrKeyFwsetupWorkspace     = "fwsetup.workspace"
	AttrKeyFwsetupSubmodulePath = "fwsetup.submodule.path"
	AttrKeyFwsetupForce         = "fwsetup.force"
	AttrKeyFwsetupExecName      = "fwsetup.exec.name"
	AttrKeyFwsetupExecArgs      = "fwsetup.exec.args"
	AttrKeyFwsetupExecExitCode  = "fwsetup.exec.exitcode"
)

// Attribute values
const (
	AttrValueExecNameGit = "git"
)

// Enumerated attributes
var (
	AttrFullExecNameGit = attribute.String(AttrKeyFwsetupExecName, AttrValueExecNameGit)
)
